package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger(&buf, INFO)

	l.Debug("hidden %d", 1)
	l.InfoWithContext("config", "tracker config reloaded from configs.yaml", nil)
	l.ErrorWithContext("dashboard-poller", "refresh-all failed", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.HasSuffix(lines[0], "[INFO] [config] tracker config reloaded from configs.yaml") {
		t.Errorf("unexpected info line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "[ERROR] [dashboard-poller] refresh-all failed: boom") {
		t.Errorf("unexpected error line %q", lines[1])
	}

	buf.Reset()
	l.SetLevel(WARN)
	l.Info("hidden")
	l.Warn("shown")
	if got := strings.TrimSpace(buf.String()); !strings.HasSuffix(got, "[WARN] shown") || strings.Contains(got, "hidden") {
		t.Errorf("SetLevel(WARN) did not filter, got %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		" WARN ":  WARN,
		"warning": WARN,
		"error":   ERROR,
		"":        INFO,
		"verbose": INFO,
	}
	for raw, want := range tests {
		if got := ParseLogLevel(raw); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}
