package gkv

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConfigureLogging(t *testing.T) {
	var buf bytes.Buffer
	ConfigureLogging(&buf)

	slog.Info("environment opened", "location", "/tmp/db")
	if !strings.Contains(buf.String(), "environment opened") {
		t.Errorf("info record not written, output = %q", buf.String())
	}

	// Records below the configured level are dropped.
	SetLogLevel(slog.LevelError)
	buf.Reset()
	slog.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("info record written at error level: %q", buf.String())
	}
	slog.Error("engine: write failed")
	if !strings.Contains(buf.String(), "write failed") {
		t.Errorf("error record not written, output = %q", buf.String())
	}
}

func TestConfigureLogging_EnvLevel(t *testing.T) {
	t.Setenv("GKV_LOG_LEVEL", "ERROR")
	var buf bytes.Buffer
	ConfigureLogging(&buf)

	slog.Warn("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("warn record written at error level: %q", buf.String())
	}
}
