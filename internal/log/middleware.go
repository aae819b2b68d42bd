package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

func withLogger(r *http.Request, logger *Logger) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, logger))
}

// Middleware makes logger available to handlers through FromContext.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withLogger(r, logger))
		})
	}
}

// FromContext returns the request logger, or the default logger tagged
// as http when none was installed.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return wrap(slog.Default(), ComponentHTTP)
}

// RequestIDMiddleware tags the request logger with the ID returned by
// requestID. It must run inside Middleware.
func RequestIDMiddleware(requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, requestID(r))
			next.ServeHTTP(w, withLogger(r, logger))
		})
	}
}

// StructuredLogger writes the access log and request failures.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// statusLevel maps a response status to a log level: 4xx warn, 5xx error.
func statusLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)
	sl.logger.DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < http.StatusBadRequest).
		WithClientIP(clientIP)
	sl.logger.Logger.Log(ctx, statusLevel(statusCode), "HTTP request completed", fields.ToSlice()...)
}

// LogFailure records a failed operation that answered with status.
// Server errors log at error level, rejected requests at warn.
func LogFailure(ctx context.Context, operation string, status int, err error) {
	msg := "Request rejected"
	if status >= http.StatusInternalServerError {
		msg = "Request failed"
	}
	fields := NewFields().
		WithOperation(operation).
		WithError(err)
	fields[FieldStatusCode] = status
	FromContext(ctx).Logger.Log(ctx, statusLevel(status), msg, fields.ToSlice()...)
}
