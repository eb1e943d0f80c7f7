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

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, Output: buf})
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentTransaction)

	logger.Info("Transaction created", FieldUserID, "u1")

	out := buf.String()
	if !strings.Contains(out, "component=transaction") {
		t.Errorf("missing component in %q", out)
	}
	if !strings.Contains(out, "user_id=u1") {
		t.Errorf("missing user_id in %q", out)
	}
}

func TestLoggerKeepsExplicitComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentApp)

	logger.Warn("Request throttled", FieldComponent, ComponentRateLimit)

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=rate_limit") {
		t.Errorf("want a single rate_limit component, got %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentApp).WithComponent(ComponentWorker)

	logger.Error("Sync failed", FieldError, "boom")

	if !strings.Contains(buf.String(), "component=worker") {
		t.Errorf("got %q", buf.String())
	}
	if logger.Component() != ComponentWorker {
		t.Errorf("Component() = %q", logger.Component())
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP)

	var got *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
		}),
	))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil {
		t.Fatal("no logger in context")
	}
	got.Info("Handled")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("missing request id in %q", buf.String())
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))
	r := httptest.NewRequest(http.MethodGet, "/api/reports?range=1M", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusInternalServerError, 12, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("5xx should log at error: %q", buf.String())
	}

	buf.Reset()
	sl.LogHTTPEnd(context.Background(), r, http.StatusNotFound, 3, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("4xx should log at warn: %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithUser("u1").
		WithTransaction("t1", "expense", "40", "2025-01-05").
		WithError(errors.New("boom")).
		WithError(nil)

	if f[FieldAmount] != "40" || f[FieldError] != "boom" || f[FieldUserID] != "u1" {
		t.Errorf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Errorf("ToSlice length mismatch")
	}
}
