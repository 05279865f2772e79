package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/circles/backend/internal/apperr"
	"github.com/circles/backend/internal/logging"
)

func captureLogs(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logging.WithLogger(context.Background(), logger)
}

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		records = append(records, record)
	}
	return records
}

func TestRespondErrorLogsServerFailureOnce(t *testing.T) {
	var buf bytes.Buffer
	rec := httptest.NewRecorder()

	respondError(captureLogs(&buf), rec, apperr.Storage(errors.New("connection reset")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 got %d", rec.Code)
	}
	records := logRecords(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected a single log record got %d: %s", len(records), buf.String())
	}
	if records[0]["level"] != "ERROR" || records[0]["msg"] != "request failed" {
		t.Fatalf("unexpected log record %v", records[0])
	}
	if cause, _ := records[0]["error"].(string); !strings.Contains(cause, "connection reset") {
		t.Fatalf("expected the cause to be logged, got %v", records[0])
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatal("storage causes must not leak to callers")
	}
}

func TestRespondLogLevels(t *testing.T) {
	var buf bytes.Buffer
	ctx := captureLogs(&buf)

	respondJSON(ctx, httptest.NewRecorder(), http.StatusOK, messageResponse{Message: "ok"})
	respondFailure(ctx, httptest.NewRecorder(), apperr.KindValidation, "bad input")

	records := logRecords(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected only the client error to be logged got %d: %s", len(records), buf.String())
	}
	if records[0]["level"] != "WARN" {
		t.Fatalf("expected warn level got %v", records[0])
	}
	if _, ok := records[0]["error"]; ok {
		t.Fatalf("client errors without a cause must not carry one, got %v", records[0])
	}
}
