package trace

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"cashflow/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var seen string
	m := NewMiddleware(func(r *http.Request) string { return "192.0.2.1" }, quietLogger())
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/income", nil))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rr.Code)
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request ID %q is not a UUID: %v", seen, err)
	}
	if got := rr.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
}

func TestMiddleware_ReusesInboundID(t *testing.T) {
	inbound := uuid.NewString()
	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{name: "valid uuid", header: inbound, reuse: true},
		{name: "not a uuid", header: "<script>", reuse: false},
		{name: "absent", header: "", reuse: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			got := requestIDFrom(req)
			if (got == tt.header) != tt.reuse {
				t.Errorf("requestIDFrom() = %q, reuse want %v", got, tt.reuse)
			}
		})
	}
}

func TestMiddleware_Metrics(t *testing.T) {
	m := NewMiddleware(nil, quietLogger())
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if got := m.GetMetrics().TotalRequests; got != 3 {
		t.Errorf("TotalRequests = %d, want 3", got)
	}
}

func TestGetRequestID(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
	ctx := context.WithValue(context.Background(), RequestIDKey, "abc")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	if got := RequestID(req); got != "abc" {
		t.Errorf("RequestID() = %q, want abc", got)
	}
}
