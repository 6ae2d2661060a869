package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"villeto/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)})
	m := NewMiddleware(logger, func(*http.Request) string { return "192.0.2.1" })

	var seen string
	var ctxLogger *log.Logger
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		ctxLogger = log.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ui/users", nil))

	if seen == "" || rr.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("request id = %q, header = %q", seen, rr.Header().Get(HeaderRequestID))
	}
	if ctxLogger == nil || ctxLogger.Logger == slog.Default() {
		t.Error("handler did not get the request logger")
	}
	out := buf.String()
	for _, want := range []string{"HTTP request started", "HTTP request completed", "request_id=" + seen, "status_code=418"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
}

func TestMiddlewareReusesValidRequestID(t *testing.T) {
	m := NewMiddleware(log.New(log.Config{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil)}), nil)
	h := m.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	incoming := NewRequestID()
	for _, tt := range []struct {
		header string
		reuse  bool
	}{{incoming, true}, {"not-a-ulid", false}} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HeaderRequestID, tt.header)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		if got := rr.Header().Get(HeaderRequestID) == tt.header; got != tt.reuse {
			t.Errorf("header %q reused = %v, want %v", tt.header, got, tt.reuse)
		}
	}
}
