// Package logging tests for structured JSON logging.
package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestNewAndLevels verifies level filtering on a standalone logger.
func TestNewAndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn)

	logger.Debug("dropped debug")
	logger.Info("dropped info")
	logger.Warn("kept warn")
	logger.Error("kept error", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %q", len(lines), buf.String())
	}

	var first LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}
	if first.Level != "WARN" || first.Message != "kept warn" {
		t.Errorf("Unexpected first entry: %+v", first)
	}
}

// TestContextFields verifies context maps land in the JSON output.
func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug)

	logger.Info("dispatched entry", map[string]interface{}{
		"platform_id": "p-2",
		"sync_type":   "attempt_result",
	})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}
	if entry.Context["platform_id"] != "p-2" {
		t.Errorf("Expected platform_id=p-2 in context, got %v", entry.Context)
	}
	if entry.Context["sync_type"] != "attempt_result" {
		t.Errorf("Expected sync_type in context, got %v", entry.Context)
	}
}

// TestContextMerge verifies multiple context maps are merged.
func TestContextMerge(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug)

	logger.Info("merged",
		map[string]interface{}{"a": 1.0},
		map[string]interface{}{"b": 2.0})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}
	if entry.Context["a"] != 1.0 || entry.Context["b"] != 2.0 {
		t.Errorf("Expected merged context, got %v", entry.Context)
	}
}

// TestErrorField verifies the error field is recorded.
func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug)

	logger.Error("delivery failed", errSentinel{})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}
	if entry.Error != "sentinel" {
		t.Errorf("Expected error field 'sentinel', got %q", entry.Error)
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "sentinel" }

// TestGetDefault verifies Get initializes a default global logger.
func TestGetDefault(t *testing.T) {
	if Get() == nil {
		t.Fatal("Get() returned nil")
	}
}
