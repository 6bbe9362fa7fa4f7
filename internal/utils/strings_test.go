package utils

import (
	"strings"
	"testing"
)

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"PORT=9090", "URL=http://x?a=b", "EMPTY=", "PORT=1"})
	if err != nil {
		t.Fatalf("ParseAssignments returned error: %v", err)
	}

	want := map[string]string{"PORT": "1", "URL": "http://x?a=b", "EMPTY": ""}
	if len(got) != len(want) {
		t.Fatalf("expected %d assignments, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseAssignmentsRejectsMalformed(t *testing.T) {
	for _, pair := range []string{"NOEQUALS", "=value", "  =x"} {
		if _, err := ParseAssignments([]string{pair}); err == nil {
			t.Errorf("expected error for %q", pair)
		}
	}
}

func TestIsValidKeyName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"app", true},
		{"prod-key_2.v1", true},
		{"", false},
		{"-leading", false},
		{"has/slash", false},
		{"has space", false},
	}

	for _, tt := range tests {
		if got := IsValidKeyName(tt.name); got != tt.want {
			t.Errorf("IsValidKeyName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFormatPaths(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := FormatPaths([]string{"keys/app.key", "keys/app.pub"})
	if !strings.Contains(got, "    - keys/app.key\n") || !strings.Contains(got, "    - keys/app.pub\n") {
		t.Errorf("unexpected formatting: %q", got)
	}
}

func TestReadLineTrimsInput(t *testing.T) {
	got, err := readLine(strings.NewReader("  my-key \n"))
	if err != nil {
		t.Fatalf("readLine returned error: %v", err)
	}
	if got != "my-key" {
		t.Errorf("readLine = %q, want %q", got, "my-key")
	}

	got, err = readLine(strings.NewReader("no-newline"))
	if err != nil || got != "no-newline" {
		t.Errorf("readLine without newline = %q, %v", got, err)
	}

	if _, err := readLine(strings.NewReader("")); err == nil {
		t.Error("expected error on empty input")
	}
}

func TestReadAllRejectsEmpty(t *testing.T) {
	if _, err := readAll(strings.NewReader("")); err == nil {
		t.Error("expected error for empty stdin")
	}
	data, err := readAll(strings.NewReader("key"))
	if err != nil || string(data) != "key" {
		t.Errorf("readAll = %q, %v", data, err)
	}
}
