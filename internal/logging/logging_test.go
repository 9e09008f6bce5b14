// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewAddsComponentField(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", "text", &buf)

	New("scheduler").Info("run complete")

	out := buf.String()
	if !strings.Contains(out, "component=scheduler") {
		t.Errorf("output %q should carry the component field", out)
	}
	if !strings.Contains(out, "run complete") {
		t.Errorf("output %q should carry the message", out)
	}
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", "text", &buf)

	log := New("test")
	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info line should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn line should pass at warn level, got %q", out)
	}
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init("shouting", "text", &buf)

	log := New("test")
	log.Debug("hidden")
	log.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at fallback info level, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info line should pass at fallback info level, got %q", out)
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("info", "json", &buf)

	New("server").Info("listening")

	out := buf.String()
	if !strings.Contains(out, `"component":"server"`) {
		t.Errorf("json output %q should carry the component field", out)
	}
}
