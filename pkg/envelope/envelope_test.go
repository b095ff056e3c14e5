package envelope

import (
	"errors"
	"testing"

	"koduck/pkg/value"
)

func TestDecodeSuccessCodes(t *testing.T) {
	for _, body := range []string{
		`{"code": 0, "message": "ok", "data": {"total_pnl": -4050}}`,
		`{"code": 200, "message": "success", "data": {"total_pnl": -4050}}`,
	} {
		got, err := Decode([]byte(body))
		if err != nil {
			t.Fatalf("Decode(%s) error: %v", body, err)
		}
		want, _ := value.Parse([]byte(`{"total_pnl": -4050}`))
		if !value.Equal(got, want) {
			t.Errorf("Decode(%s) = %s, want data unchanged", body, got)
		}
	}
}

func TestDecodeFailureCarriesMessage(t *testing.T) {
	tests := []struct {
		body string
		code int
		msg  string
	}{
		{`{"code": 500, "message": "服务器错误"}`, 500, "服务器错误"},
		{`{"code": 1, "message": "用户名已存在", "data": null}`, 1, "用户名已存在"},
		{`{"code": 201, "message": "created"}`, 201, "created"},
		{`{"code": 400, "message": ""}`, 400, DefaultFailureMessage},
		{`{"code": 403}`, 403, DefaultFailureMessage},
		{`{"code": 404, "message": 17}`, 404, DefaultFailureMessage},
	}
	for _, tt := range tests {
		_, err := Decode([]byte(tt.body))
		var envErr *Error
		if !errors.As(err, &envErr) {
			t.Fatalf("Decode(%s) error = %v, want *Error", tt.body, err)
		}
		if envErr.Code != tt.code || envErr.Error() != tt.msg {
			t.Errorf("Decode(%s) = (%d, %q), want (%d, %q)", tt.body, envErr.Code, envErr.Error(), tt.code, tt.msg)
		}
		if errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%s) should not be malformed", tt.body)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, body := range []string{
		``,
		`not json`,
		`[1, 2, 3]`,
		`"ok"`,
		`null`,
		`{"message": "no code", "data": {}}`,
		`{"code": "0", "data": {}}`,
		`{"code": null}`,
		`{"code": 0.5}`,
		`{"code": 9223372036854775808, "message": "x"}`,
		`{"code": 1e19, "message": "x"}`,
	} {
		_, err := Decode([]byte(body))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformed", body, err)
			continue
		}
		if err.Error() != MalformedMessage {
			t.Errorf("Decode(%q) message = %q, want %q", body, err.Error(), MalformedMessage)
		}
	}
}

func TestDecodeMissingDataIsAbsent(t *testing.T) {
	got, err := Decode([]byte(`{"code": 0, "message": "ok"}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !got.IsAbsent() {
		t.Errorf("missing data = %s (%s), want absent", got, got.Kind())
	}

	got, err = Decode([]byte(`{"code": 0, "data": null}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("null data = %s, want null", got.Kind())
	}

	got, err = Decode([]byte(`{"code": 0, "data": {}}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.Kind() != value.KindObject || got.Len() != 0 {
		t.Errorf("empty data = %s, want empty object", got)
	}
}

func TestParseExtras(t *testing.T) {
	env, err := Parse([]byte(`{"code": 200.0, "message": "success", "data": [1], "timestamp": 1735689600000, "traceId": "t-1"}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !env.OK() || env.Code != 200 {
		t.Errorf("Code = %d, OK = %v", env.Code, env.OK())
	}
	if env.Timestamp != 1735689600000 || env.TraceID != "t-1" {
		t.Errorf("Timestamp = %d, TraceID = %q", env.Timestamp, env.TraceID)
	}

	_, err = Classify(Envelope{Code: 500, Message: "boom", TraceID: "t-2"})
	var envErr *Error
	if !errors.As(err, &envErr) || envErr.TraceID != "t-2" {
		t.Errorf("Classify should carry the trace id, got %v", err)
	}
}
