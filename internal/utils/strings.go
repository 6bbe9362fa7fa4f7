package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PolarWolf314/envseal/internal/ui"
)

var keyNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidKeyName checks that a key name is usable as a file stem.
func IsValidKeyName(name string) bool {
	return keyNamePattern.MatchString(name)
}

// ParseAssignments turns KEY=VALUE pairs into a map. Later pairs win.
// The value may be empty and may contain '='.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected KEY=VALUE", pair)
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}
