package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"invalid", LevelInfo}, // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelNone, "NONE"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
			}
		})
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "draftcast.log")

	l, err := New(LevelDebug, logPath, "channel")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer l.Close()

	l.Info("joined topic %s", "post:my-first-post")
	l.Debug("ref now %d", 3)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "[INFO] [channel] joined topic post:my-first-post") {
		t.Errorf("log file missing info line, got: %s", content)
	}
	if !strings.Contains(content, "[DEBUG] [channel] ref now 3") {
		t.Errorf("log file missing debug line, got: %s", content)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "draftcast.log")

	l, err := New(LevelWarn, logPath, "")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer l.Close()

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "dropped") {
		t.Errorf("log file contains lines below level: %s", content)
	}
	if !strings.Contains(content, "kept") {
		t.Errorf("log file missing warn line: %s", content)
	}
}

func TestDisabledLogger(t *testing.T) {
	l, err := New(LevelNone, "", "")
	if err != nil {
		t.Fatalf("failed to create no-op logger: %v", err)
	}
	// Must not panic or write anywhere.
	l.Error("ignored %v", os.ErrInvalid)
}

func TestWithPrefixChaining(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "draftcast.log")

	base, err := New(LevelInfo, logPath, "relay")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer base.Close()

	child := base.WithPrefix("save")
	child.Info("pushed")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "[relay:save] pushed") {
		t.Errorf("expected chained prefix, got: %s", string(data))
	}
}
