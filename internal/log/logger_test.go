package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Output: &buf, Level: level, Component: ComponentApp}), &buf
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	l.WithComponent(ComponentLedger).Info("hello", "k", "v")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component must appear once: %s", out)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelWarn)
	l.Info("dropped")
	l.Debug("dropped too")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn line missing")
	}
}

func TestFromContext(t *testing.T) {
	l, _ := newBufferLogger(slog.LevelInfo)
	ctx := IntoContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("expected logger from context")
	}
	if got := FromContext(context.Background()); got == nil || got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", got)
	}
}

func TestStructuredLoggerBudgetLines(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(l)

	sl.LogBudgetExceeded(context.Background(), "Food", 10000, 11000)
	out := buf.String()
	for _, want := range []string{"level=WARN", "component=tracker", "category=Food", "remaining_cents=-1000", "over_budget=true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}

	buf.Reset()
	sl.LogBudgetSet(context.Background(), "Food", 5000, true, 9000)
	if !strings.Contains(buf.String(), "discarded_spent_cents=9000") || !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("replacement with spend should warn: %s", buf.String())
	}

	buf.Reset()
	sl.LogBudgetSet(context.Background(), "Rent", 5000, false, 0)
	if !strings.Contains(buf.String(), "level=INFO") {
		t.Fatalf("fresh budget should be info: %s", buf.String())
	}
}

func TestStructuredLoggerHTTPLevels(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(l)
	r := httptest.NewRequest("POST", "/expenses", nil)

	sl.LogHTTPEnd(context.Background(), r, "req_1", "1.2.3.4", 422, 3)
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "status_code=422") {
		t.Fatalf("unexpected: %s", buf.String())
	}
	buf.Reset()
	sl.LogHTTPEnd(context.Background(), r, "req_2", "1.2.3.4", 500, 3)
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("unexpected: %s", buf.String())
	}
}

func TestLogError(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	NewStructuredLogger(l).LogError(context.Background(), "publish failed", errors.New("boom"), ComponentAMQP, OpAlert, nil)
	out := buf.String()
	if !strings.Contains(out, "error=boom") || !strings.Contains(out, "component=amqp") || !strings.Contains(out, "operation=alert") {
		t.Fatalf("unexpected: %s", out)
	}
}
