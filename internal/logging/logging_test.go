package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"off", LevelOff},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Output: &buf}).WithComponent("bus")

	log.Warn("handler failed", "topic", "editor.change", "count", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "bus" {
		t.Errorf("component = %v, want bus", entry["component"])
	}
	if entry["topic"] != "editor.change" {
		t.Errorf("topic = %v", entry["topic"])
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["message"] != "handler failed" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf})

	log.Debug("hidden")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	log.Error("shown", errors.New("boom"))
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("error entry missing err field: %q", buf.String())
	}
	if log.Enabled(LevelDebug) {
		t.Error("debug should not be enabled")
	}
	if !log.Enabled(LevelError) {
		t.Error("error should be enabled")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *Logger
	log.Info("nothing")
	log.Error("nothing", errors.New("x"))
	if log.WithComponent("x") != nil {
		t.Error("nil logger should stay nil")
	}
	Nop().Info("discarded", "odd")
}
