package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerWritesJSONEntry(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter("board", &buf)

	lg.Error("poll_failed", errors.New("boom"), map[string]any{"cycle": 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if entry["service"] != "board" || entry["action"] != "poll_failed" || entry["level"] != "ERROR" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["cycle"] != float64(3) {
		t.Fatalf("missing field: %v", entry)
	}
	errObj, ok := entry["error"].(map[string]any)
	if !ok || errObj["msg"] != "boom" {
		t.Fatalf("missing error: %v", entry)
	}
	if _, renamed := errObj["message"]; renamed {
		t.Fatalf("error group key renamed: %v", errObj)
	}
	if entry["message"] != "poll_failed" {
		t.Fatalf("top-level message: %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", entry)
	}
}

func TestLoggerLevel(t *testing.T) {
	defer SetLevel("info")

	var buf bytes.Buffer
	lg := NewWithWriter("board", &buf)

	SetLevel("info")
	lg.Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %s", buf.String())
	}

	SetLevel("debug")
	lg.Debug("shown", nil)
	if !strings.Contains(buf.String(), `"action":"shown"`) {
		t.Fatalf("debug not written: %s", buf.String())
	}
}
