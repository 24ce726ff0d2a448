package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewCreatesLogFiles(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "nested", "logs")
	logger, err := New(baseDir, "session-1")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	sessionFile := filepath.Join(baseDir, "sessions", "session-1.jsonl")
	if _, err := os.Stat(sessionFile); err != nil {
		t.Errorf("session log not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, "errors.jsonl")); err != nil {
		t.Errorf("error log not created: %v", err)
	}
}

func TestLogWritesJSONL(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := New(baseDir, "s")
	if err != nil {
		t.Fatal(err)
	}

	logger.SetFrame(42)
	if err := logger.Info(CategoryRender, "frame_presented", "presented", map[string]any{"cells": 120}); err != nil {
		t.Fatal(err)
	}
	logger.Close()

	events, err := ReadRecentEvents(filepath.Join(baseDir, "sessions", "s.jsonl"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Category != CategoryRender || ev.EventType != "frame_presented" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.SessionID != "s" || ev.Frame != 42 {
		t.Fatalf("event tags = session %q frame %d, want s/42", ev.SessionID, ev.Frame)
	}
	if ev.Timestamp.IsZero() || time.Since(ev.Timestamp) > time.Minute {
		t.Fatalf("timestamp not filled in: %v", ev.Timestamp)
	}
}

func TestMinLevelFiltersEvents(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := New(baseDir, "s")
	if err != nil {
		t.Fatal(err)
	}

	if err := logger.Debug(CategoryEngine, "tick", "dropped", nil); err != nil {
		t.Fatal(err)
	}
	logger.SetMinLevel(LevelDebug)
	if err := logger.Debug(CategoryEngine, "tick", "kept", nil); err != nil {
		t.Fatal(err)
	}
	logger.Close()

	events, err := ReadRecentEvents(filepath.Join(baseDir, "sessions", "s.jsonl"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Message != "kept" {
		t.Fatalf("events = %+v, want only the post-SetMinLevel debug event", events)
	}
}

func TestErrorsAlsoGoToErrorLog(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := New(baseDir, "s")
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Error(CategoryBackend, "init_failed", "no terminal", nil); err != nil {
		t.Fatal(err)
	}
	if err := logger.Info(CategoryBackend, "init_ok", "fine", nil); err != nil {
		t.Fatal(err)
	}
	logger.Close()

	data, err := os.ReadFile(filepath.Join(baseDir, "errors.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("error log not a single JSONL record: %v", err)
	}
	if ev.EventType != "init_failed" {
		t.Fatalf("error log event = %+v", ev)
	}
}

func TestNopLoggerDropsEverything(t *testing.T) {
	logger := Nop()
	if err := logger.Error(CategoryEngine, "boom", "ignored", nil); err != nil {
		t.Fatalf("Nop().Error() = %v, want nil", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Nop().Close() = %v, want nil", err)
	}
}

func TestNewSessionIDIsUnique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == "" || a == b {
		t.Fatalf("session ids = %q, %q, want distinct non-empty", a, b)
	}
}

func TestReadRecentEventsReturnsTail(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := New(baseDir, "s")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := logger.Info(CategoryEngine, "tick", "", map[string]any{"n": i}); err != nil {
			t.Fatal(err)
		}
	}
	logger.Close()

	events, err := ReadRecentEvents(filepath.Join(baseDir, "sessions", "s.jsonl"), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if n, ok := events[1].Details["n"].(float64); !ok || n != 4 {
		t.Fatalf("last event details = %+v, want n=4", events[1].Details)
	}
}
