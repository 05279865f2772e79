package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for input, want := range tests {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %v got %v", input, want, got)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestContextValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithRequestID(ctx, "")

	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1 got %q", got)
	}
	if got := TraceIDFromContext(ctx); got != "trace-1" {
		t.Fatalf("expected trace-1 got %q", got)
	}
	if got := SpanIDFromContext(ctx); got != "" {
		t.Fatalf("expected empty span id got %q", got)
	}
	if FromContext(ctx) != slog.Default() {
		t.Fatal("expected default logger fallback")
	}
}

func TestSpanLogsParentAndFailure(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx, parent := StartSpan(ctx, "parent")
	parentID := SpanIDFromContext(ctx)
	_, child := StartSpan(ctx, "child")
	child.Fail(errors.New("boom"))
	child.End()
	parent.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines got %d: %s", len(lines), buf.String())
	}

	var childEntry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &childEntry); err != nil {
		t.Fatalf("decode child entry: %v", err)
	}
	if childEntry["msg"] != "span failed" || childEntry["error"] != "boom" {
		t.Fatalf("unexpected child entry: %v", childEntry)
	}
	if childEntry["parent_span_id"] != parentID {
		t.Fatalf("expected parent span id %s got %v", parentID, childEntry["parent_span_id"])
	}

	var parentEntry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &parentEntry); err != nil {
		t.Fatalf("decode parent entry: %v", err)
	}
	if parentEntry["msg"] != "span completed" || parentEntry["trace_id"] != childEntry["trace_id"] {
		t.Fatalf("unexpected parent entry: %v", parentEntry)
	}
}
