package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Component: ComponentHTTP,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatal("FromContext did not return the stored logger")
	}

	fallback := FromContext(context.Background())
	if fallback == nil || fallback.Component() != "unknown" {
		t.Fatalf("fallback component = %v, want unknown", fallback)
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	newBufferLogger(&buf).WithComponent(ComponentTable).Info("Table page served", FieldTable, "expenses")

	out := buf.String()
	for _, want := range []string{"component=table", "table=expenses", `msg="Table page served"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	sl.LogError(context.Background(), "Export failed", errors.New("quota exceeded"),
		ComponentSheets, OpExport, NewFields().WithRequestID("01J9Z3K5V7"))

	out := buf.String()
	for _, want := range []string{
		"level=ERROR",
		`error="quota exceeded"`,
		"operation=export",
		"component=sheets",
		"request_id=01J9Z3K5V7",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}

func TestWithErrorSkipsNil(t *testing.T) {
	f := NewFields().WithError(nil)
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error added a field")
	}
}
