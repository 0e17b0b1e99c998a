package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad JSONL line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestLogger_WritesJSONL(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	logger.Info(CategoryChat, "message_submitted", "hello", map[string]any{"chars": 5})
	logger.Error(CategoryNetwork, "completion_failed", "boom", nil)

	events := readEvents(t, filepath.Join(dir, "sessions", "sess-1.jsonl"))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Level != LevelInfo || events[0].Category != CategoryChat {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[0].SessionID != "sess-1" {
		t.Errorf("session id not stamped: %+v", events[0])
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}

	// Errors are duplicated into the shared error log.
	errEvents := readEvents(t, filepath.Join(dir, "errors.jsonl"))
	if len(errEvents) != 1 || errEvents[0].EventType != "completion_failed" {
		t.Errorf("error log contents: %+v", errEvents)
	}
}

func TestLogger_MinLevelFilters(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "sess-2")
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	logger.SetMinLevel(LevelWarn)
	logger.Debug(CategoryChat, "noise", "", nil)
	logger.Info(CategoryChat, "noise", "", nil)
	logger.Warn(CategoryChat, "kept", "", nil)

	events := readEvents(t, filepath.Join(dir, "sessions", "sess-2.jsonl"))
	if len(events) != 1 || events[0].EventType != "kept" {
		t.Errorf("min level filter failed: %+v", events)
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger

	if err := logger.Info(CategoryChat, "x", "", nil); err != nil {
		t.Errorf("nil logger Info should be a no-op, got %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil logger Close should be a no-op, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != LevelDebug {
		t.Error("debug should parse")
	}
	if ParseLevel("verbose") != LevelInfo {
		t.Error("unknown levels should default to info")
	}
}
