package apm

import (
	"bytes"
	"testing"

	"github.com/fd1az/swap-settler/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		raw  string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"api-key=abc", map[string]string{"api-key": "abc"}},
		{"a=1, b=2", map[string]string{"a": "1", "b": "2"}},
		{"broken,x=y", map[string]string{"x": "y"}},
	}

	for _, tt := range tests {
		got := ParseHeaders(tt.raw)
		if len(got) != len(tt.want) {
			t.Errorf("ParseHeaders(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("ParseHeaders(%q)[%q] = %q, want %q", tt.raw, k, got[k], v)
			}
		}
	}
}

func TestNewTraceProvider_UnknownFallsBackToEmpty(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelWarn, "", nil)

	tp, err := NewTraceProvider(log, WithProvider(Provider("jaeger"), ExporterConfig{}, log))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tp.(emptyTraceProvider); !ok {
		t.Errorf("expected empty provider, got %T", tp)
	}
	if buf.Len() == 0 {
		t.Error("expected a warning to be logged")
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestNewTraceProvider_Console(t *testing.T) {
	var out bytes.Buffer
	tp, err := NewTraceProvider(logger.NewNop(),
		WithProvider(ConsoleProvider, ExporterConfig{ServiceName: "test", Writer: &out}, logger.NewNop()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tp.Stop()

	if _, ok := tp.(*traceProvider); !ok {
		t.Errorf("expected sdk provider, got %T", tp)
	}
}
