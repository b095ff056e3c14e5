package koduck

import (
	"context"
	"errors"
	"net"
)

// Messages used when the server does not supply one.
const (
	NetworkMessage      = "网络连接失败，请检查网络"
	UnauthorizedMessage = "登录已过期，请重新登录"
)

var (
	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("network unreachable")

	// ErrUnauthorized matches the *HTTPError returned for a 401 response.
	ErrUnauthorized = errors.New("unauthorized")
)

// NetworkError reports that no HTTP response was received: the connection
// failed, the request timed out, or the body could not be read.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return NetworkMessage + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNetwork) hold for every NetworkError.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// Timeout reports whether the request gave up waiting for the server.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// HTTPError is a response with a non-2xx status. Message is the server's
// message when the body was an envelope carrying one.
type HTTPError struct {
	Status  int
	Message string
	Err     error // ErrUnauthorized for 401, nil otherwise
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err means the server could not be reached.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsUnauthorized reports whether err came from a 401 response, after which
// the session has already been cleared.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
