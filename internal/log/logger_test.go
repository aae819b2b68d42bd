package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{
		Component: "test",
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level}),
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, slog.LevelDebug).WithComponent(ComponentProjection)
	logger.Info("hello", FieldHorizon, 12)

	out := buf.String()
	if !strings.Contains(out, "component=projection") || !strings.Contains(out, "horizon=12") {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, slog.LevelDebug))
	r := httptest.NewRequest(http.MethodGet, "/api/projection?months=3", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusBadRequest, 3, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected WARN for 4xx, got %s", buf.String())
	}
	buf.Reset()
	sl.LogHTTPEnd(context.Background(), r, http.StatusInternalServerError, 3, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected ERROR for 5xx, got %s", buf.String())
	}
}

func TestLogFailureLevels(t *testing.T) {
	var buf bytes.Buffer
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	ctx = context.WithValue(ctx, ctxKey{}, newBufferLogger(&buf, slog.LevelDebug))

	LogFailure(ctx, OpLoad, http.StatusInternalServerError, errors.New("bad"))
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "error=bad") || !strings.Contains(out, "operation=load") {
		t.Fatalf("unexpected error log: %s", out)
	}
	buf.Reset()
	LogFailure(ctx, OpProject, http.StatusBadRequest, errors.New("months"))
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "status_code=400") {
		t.Fatalf("expected WARN for 4xx, got %s", buf.String())
	}
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, slog.LevelInfo)

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request id in log, got %s", buf.String())
	}
}

func TestComponentAttachedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, slog.LevelInfo).
		WithComponent(ComponentWorker).
		With(FieldMessageID, "m-1").
		WithComponent(ComponentImport)
	logger.Info("done")

	out := buf.String()
	if n := strings.Count(out, "component="); n != 1 {
		t.Fatalf("expected one component attribute, got %d: %s", n, out)
	}
	if !strings.Contains(out, "component=import") || !strings.Contains(out, "message_id=m-1") {
		t.Fatalf("unexpected log line: %s", out)
	}
}
