package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo)
	defer Init(slog.LevelInfo)

	Debugf("hidden %d", 1)
	Warnf("slow client %s", "abc")
	L().With("scenario", "both").Info("computed", "rows", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN: slow client abc") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "computed  scenario=both  rows=4") {
		t.Errorf("missing attrs: %q", out)
	}
}

func TestLatencyTracker(t *testing.T) {
	lt := NewLatencyTracker(3)
	if lt.P50() != 0 {
		t.Fatalf("empty tracker P50 = %v", lt.P50())
	}
	for _, ms := range []int{50, 10, 30, 20} {
		lt.Record(time.Duration(ms) * time.Millisecond)
	}
	// Oldest sample (50ms) is evicted.
	if got := lt.P50(); got != 20*time.Millisecond {
		t.Errorf("P50 = %v, want 20ms", got)
	}
	if got := lt.P99(); got != 20*time.Millisecond {
		t.Errorf("P99 = %v, want 20ms", got)
	}
}

func TestCounterAndGauge(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Errorf("counter = %d, want 5", c.Value())
	}
	var g Gauge
	g.Set(3)
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != 2 {
		t.Errorf("gauge = %d, want 2", g.Value())
	}
}

func TestSnapshotReportsRegistry(t *testing.T) {
	before := Snapshot()
	Metrics.ScenariosComputed.Inc()
	Metrics.ComputeLatency.Record(1500 * time.Microsecond)

	after := Snapshot()
	if after["scenarios_computed"] != before["scenarios_computed"]+1 {
		t.Errorf("scenarios_computed %d -> %d", before["scenarios_computed"], after["scenarios_computed"])
	}
	if _, ok := after["handler_failures"]; !ok {
		t.Error("snapshot missing handler_failures")
	}
	if after["compute_p99_us"] <= 0 {
		t.Errorf("compute_p99_us = %d", after["compute_p99_us"])
	}
}
