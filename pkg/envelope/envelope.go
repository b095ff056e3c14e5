// Package envelope decodes the {code, message, data} wrapper that every
// koduck backend response uses.
package envelope

import (
	"errors"

	"koduck/pkg/value"
)

// Success codes. Both are in use by the backend and both must be accepted.
const (
	CodeOK     = 0
	CodeHTTPOK = 200
)

// NoCode is Error.Code when the envelope carried no usable code.
const NoCode = -1

// Messages used when the server does not supply one.
const (
	DefaultFailureMessage = "请求失败"
	MalformedMessage      = "响应格式错误"
)

// ErrMalformed matches, via errors.Is, any Error raised for a body that is
// not a well-formed envelope.
var ErrMalformed = errors.New("malformed response envelope")

// Envelope is one decoded server reply.
type Envelope struct {
	Code      int
	Message   string
	Data      value.Value // Absent when the reply had no data field
	Timestamp int64       // server time in Unix ms, zero if not sent
	TraceID   string
}

// OK reports whether the envelope signals success.
func (e Envelope) OK() bool {
	return IsSuccess(e.Code)
}

// IsSuccess reports whether code is one of the success codes.
func IsSuccess(code int) bool {
	return code == CodeOK || code == CodeHTTPOK
}

// Error is an application-level failure reported through the envelope.
type Error struct {
	Code      int
	Message   string
	Malformed bool
	TraceID   string
}

// Error returns the server-provided message unchanged so callers can show it
// directly.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is ErrMalformed and e came from a malformed body.
func (e *Error) Is(target error) bool {
	return target == ErrMalformed && e.Malformed
}

// Parse decodes body into an Envelope without judging success. A body that is
// not a JSON object, or whose code is missing or not an integer, yields a
// malformed Error.
func Parse(body []byte) (Envelope, error) {
	root, err := value.Parse(body)
	if err != nil || root.Kind() != value.KindObject {
		return Envelope{}, malformed()
	}

	codeV, ok := root.Get("code")
	if !ok {
		return Envelope{}, malformed()
	}
	code, ok := codeV.Int64()
	if !ok {
		return Envelope{}, malformed()
	}

	env := Envelope{Code: int(code)}
	if m, ok := root.Get("message"); ok {
		env.Message, _ = m.Str()
	}
	if d, ok := root.Get("data"); ok {
		env.Data = d
	}
	if ts, ok := root.Get("timestamp"); ok {
		env.Timestamp, _ = ts.Int64()
	}
	if tid, ok := root.Get("traceId"); ok {
		env.TraceID, _ = tid.Str()
	}
	return env, nil
}

// Classify returns the payload of a successful envelope, or an *Error
// carrying its message.
func Classify(env Envelope) (value.Value, error) {
	if env.OK() {
		return env.Data, nil
	}
	msg := env.Message
	if msg == "" {
		msg = DefaultFailureMessage
	}
	return value.Value{}, &Error{Code: env.Code, Message: msg, TraceID: env.TraceID}
}

// Decode parses body and classifies it. On success the data field is returned
// as is: Absent when missing, Null when explicitly null.
func Decode(body []byte) (value.Value, error) {
	env, err := Parse(body)
	if err != nil {
		return value.Value{}, err
	}
	return Classify(env)
}

func malformed() *Error {
	return &Error{Code: NoCode, Message: MalformedMessage, Malformed: true}
}
