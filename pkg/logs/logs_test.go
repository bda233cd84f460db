package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_NonTerminalUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})

	logger.Info("cycle complete", "adds", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if record["msg"] != "cycle complete" || record["adds"] != float64(3) {
		t.Errorf("record = %v", record)
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Format: FormatText})

	logger.Info("engine running")

	if !strings.Contains(buf.String(), "msg=\"engine running\"") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNew_SharedLevel(t *testing.T) {
	var primary, extra bytes.Buffer
	level := new(slog.LevelVar)
	logger := New(&primary, Options{
		Level: level,
		Extra: []slog.Handler{slog.NewTextHandler(&extra, &slog.HandlerOptions{Level: level})},
	})

	logger.Debug("hidden")
	if primary.Len() != 0 || extra.Len() != 0 {
		t.Fatal("debug record written at info level")
	}

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	if !strings.Contains(primary.String(), "shown") || !strings.Contains(extra.String(), "shown") {
		t.Errorf("fanout missing record: primary=%q extra=%q", primary.String(), extra.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLevelFromEnv(t *testing.T) {
	level := new(slog.LevelVar)

	t.Setenv(EnvLogLevel, "debug")
	if !LevelFromEnv(level) || level.Level() != slog.LevelDebug {
		t.Errorf("level = %v", level.Level())
	}

	t.Setenv(EnvLogLevel, "bogus")
	if LevelFromEnv(level) {
		t.Error("invalid level should be ignored")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
