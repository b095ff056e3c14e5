package util

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetryIfStopsOnPermanentError(t *testing.T) {
	errTransient := errors.New("transient")
	errPermanent := errors.New("permanent")
	attempts := 0

	err := RetryIf(context.Background(), 5, 0,
		func(err error) bool { return errors.Is(err, errTransient) },
		func() error {
			attempts++
			if attempts == 1 {
				return errTransient
			}
			return errPermanent
		})

	if !errors.Is(err, errPermanent) {
		t.Fatalf("RetryIf error = %v, want permanent", err)
	}
	if attempts != 2 {
		t.Errorf("RetryIf called fn %d times, want 2", attempts)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error { return errors.New("fail") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
}

func TestRateLimiterWait(t *testing.T) {
	rl := NewRateLimiter(60)
	if rl == nil {
		t.Fatal("NewRateLimiter returned nil")
	}
	// The first token is available immediately.
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	// The second is a second away; a short deadline must expire first.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait error = %v, want deadline exceeded", err)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
}

func TestTradingCalendar(t *testing.T) {
	cal := NewTradingCalendar()
	cst := time.FixedZone("CST", 8*3600)

	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"before open", time.Date(2025, 3, 3, 9, 29, 0, 0, cst), false},
		{"morning", time.Date(2025, 3, 3, 9, 30, 0, 0, cst), true},
		{"lunch", time.Date(2025, 3, 3, 12, 0, 0, 0, cst), false},
		{"afternoon", time.Date(2025, 3, 3, 14, 59, 0, 0, cst), true},
		{"after close", time.Date(2025, 3, 3, 15, 0, 0, 0, cst), false},
		{"saturday", time.Date(2025, 3, 1, 10, 0, 0, 0, cst), false},
		{"utc input", time.Date(2025, 3, 3, 2, 0, 0, 0, time.UTC), true}, // 10:00 CST
	}
	for _, tt := range tests {
		if got := cal.IsMarketOpen(tt.at); got != tt.open {
			t.Errorf("%s: IsMarketOpen = %v, want %v", tt.name, got, tt.open)
		}
	}
}

func TestTradingCalendarNextOpenClose(t *testing.T) {
	cal := NewTradingCalendar()
	cst := time.FixedZone("CST", 8*3600)

	// Friday after close: next open is Monday 09:30.
	fri := time.Date(2025, 2, 28, 16, 0, 0, 0, cst)
	wantOpen := time.Date(2025, 3, 3, 9, 30, 0, 0, cst)
	if got := cal.NextOpen(fri); !got.Equal(wantOpen) {
		t.Errorf("NextOpen(friday evening) = %v, want %v", got, wantOpen)
	}

	// Lunch break: next open is 13:00, closing at 15:00.
	lunch := time.Date(2025, 3, 3, 12, 0, 0, 0, cst)
	if got := cal.NextOpen(lunch); !got.Equal(time.Date(2025, 3, 3, 13, 0, 0, 0, cst)) {
		t.Errorf("NextOpen(lunch) = %v", got)
	}
	if got := cal.NextClose(lunch); !got.Equal(time.Date(2025, 3, 3, 15, 0, 0, 0, cst)) {
		t.Errorf("NextClose(lunch) = %v", got)
	}

	// During the morning session the close is 11:30.
	morning := time.Date(2025, 3, 3, 10, 0, 0, 0, cst)
	if got := cal.NextClose(morning); !got.Equal(time.Date(2025, 3, 3, 11, 30, 0, 0, cst)) {
		t.Errorf("NextClose(morning) = %v", got)
	}
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "warn", "text")
	log.Info("hidden")
	log.Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=v") {
		t.Errorf("unexpected text output: %s", out)
	}

	buf.Reset()
	NewLoggerTo(&buf, "debug", "json").Debug("d")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json handler output = %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
