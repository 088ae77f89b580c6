package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureOutput redirects stdout to a buffer during f()
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()

	return buf.String()
}

func TestLogger_TextFormat(t *testing.T) {
	out := captureOutput(t, func() {
		Init(&Config{
			Level:     "debug",
			Format:    FormatText,
			Component: "test",
		})
		Info("discovery feed served", "viewer", "u1", "count", 3)
	})

	if !strings.Contains(out, "discovery feed served") {
		t.Errorf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "viewer=u1") {
		t.Errorf("expected structured field, got: %s", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	out := captureOutput(t, func() {
		Init(&Config{
			Level:  "info",
			Format: FormatJSON,
		})
		Warn("notification dispatch failed", "match", "m1")
	})

	if !strings.Contains(out, `"msg":"notification dispatch failed"`) {
		t.Errorf("expected JSON message, got: %s", out)
	}
	if !strings.Contains(out, `"match":"m1"`) {
		t.Errorf("expected structured field, got: %s", out)
	}
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	out := captureOutput(t, func() {
		Init(&Config{Level: "warn", Format: FormatText})
		Debug("should be dropped")
		Info("should also be dropped")
		Warn("kept")
	})

	if strings.Contains(out, "dropped") {
		t.Errorf("expected debug/info suppressed, got: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("expected warn message, got: %s", out)
	}
}

func TestLogger_BuildTargetsWriter(t *testing.T) {
	var buf bytes.Buffer
	l := build(&buf, &Config{Level: "info", Format: FormatJSON, Component: "worker"})
	l.Info("queued")

	if !strings.Contains(buf.String(), `"component":"worker"`) {
		t.Errorf("expected component attribute, got: %s", buf.String())
	}
}

func TestLogger_LazyDefault(t *testing.T) {
	mu.Lock()
	logger = nil
	mu.Unlock()

	if L() == nil {
		t.Fatal("expected lazily initialized logger")
	}
}
