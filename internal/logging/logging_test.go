package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestLogger_Levels(t *testing.T) {
	color.NoColor = true

	var out, errOut bytes.Buffer
	log := Logger{Out: &out, Err: &errOut}

	log.Infof("hidden %d", 1)
	log.Debugf("hidden %d", 2)
	log.Warnf("shown %d", 3)

	if out.Len() != 0 {
		t.Errorf("expected no stdout output without verbose, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[warn] shown 3") {
		t.Errorf("expected warning on stderr, got %q", errOut.String())
	}

	log.Verbose = true
	log.Infof("info line")
	log.Debugf("debug line")
	if !strings.Contains(out.String(), "[info] info line") {
		t.Errorf("expected info with verbose, got %q", out.String())
	}
	if strings.Contains(out.String(), "debug line") {
		t.Error("debug output must require --debug")
	}
}

func TestLogger_Warnings(t *testing.T) {
	color.NoColor = true

	var errOut bytes.Buffer
	log := Logger{Err: &errOut}
	log.Warnings([]error{errors.New("first"), errors.New("second")})

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 warning lines, got %d", len(lines))
	}
}
