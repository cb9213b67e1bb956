package tracing

import (
	"context"
	"testing"
)

func TestSanitizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"localhost:4317", "localhost:4317"},
		{"http://collector:4317", "collector:4317"},
		{"https://collector.example.com:4317/", "collector.example.com:4317"},
		{"collector:4317/", "collector:4317"},
		{"  otel:4317  ", "otel:4317"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeEndpoint(tt.in); got != tt.want {
				t.Errorf("SanitizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseBool(tt.in); got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSampleRatio(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"0.25", 0.25},
		{"1", 1},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseSampleRatio(tt.in); got != tt.want {
				t.Errorf("ParseSampleRatio(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() returned nil shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}
