package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected LogLevel
		ok       bool
	}{
		{name: "debug", input: "debug", expected: LevelDebug, ok: true},
		{name: "info", input: "info", expected: LevelInfo, ok: true},
		{name: "warn", input: "warn", expected: LevelWarn, ok: true},
		{name: "warning alias", input: "warning", expected: LevelWarn, ok: true},
		{name: "error", input: "error", expected: LevelError, ok: true},
		{name: "case insensitive", input: "DEBUG", expected: LevelDebug, ok: true},
		{name: "surrounding space", input: "  error ", expected: LevelError, ok: true},
		{name: "unknown falls back to info", input: "verbose", expected: LevelInfo, ok: false},
		{name: "empty", input: "", expected: LevelInfo, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestSetLevelFiltersOutput(t *testing.T) {
	original := GetLevel()
	defer func() {
		_ = SetLevel(original.String())
		log.SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel(warn) returned error: %v", err)
	}

	Debug("debug line")
	Info("info line")
	Warn("warn line")
	Error("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("messages below warn should be suppressed, got %q", out)
	}
	if !strings.Contains(out, "[WARN] warn line") {
		t.Errorf("expected warn line in output, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error line") {
		t.Errorf("expected error line in output, got %q", out)
	}
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled should be false at warn level")
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	before := GetLevel()
	if err := SetLevel("loud"); err == nil {
		t.Error("SetLevel should reject unknown level names")
	}
	if GetLevel() != before {
		t.Errorf("level changed after rejected SetLevel: %v -> %v", before, GetLevel())
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
