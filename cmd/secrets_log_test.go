package cmd

import (
	"strings"
	"testing"

	"github.com/PolarWolf314/envseal/internal/audit"
)

func TestFilterLogEntries(t *testing.T) {
	entries := []audit.Entry{
		{Operation: "keygen"},
		{Operation: "encrypt"},
		{Operation: "sync"},
		{Operation: "encrypt"},
		{Operation: "decrypt"},
	}

	got := filterLogEntries(entries, "encrypt, sync", 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}

	got = filterLogEntries(entries, "", 2)
	if len(got) != 2 || got[0].Operation != "encrypt" || got[1].Operation != "decrypt" {
		t.Errorf("limit should keep the most recent entries, got %+v", got)
	}

	if got := filterLogEntries(entries, "rotate", 0); len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
	if len(entries) != 5 {
		t.Error("filtering must not modify the input")
	}
}

func TestFormatLogEntry(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	line := formatLogEntry(audit.Entry{
		Timestamp: "2026-01-02T03:04:05.000000Z",
		Operation: "sync",
		User:      "ci",
		Entries:   4,
		Provider:  "aws",
		Regions:   []string{"us-east-1", "eu-west-1"},
		Failed:    true,
	})

	for _, want := range []string{"sync", "ci", "4 entries", "aws us-east-1,eu-west-1", "failed"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
}
