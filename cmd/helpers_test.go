package cmd

import (
	"bytes"
)

// runCLI executes args against a fresh root command with clean global state
// and returns what was written to stdout and stderr.
func runCLI(args ...string) (string, string, error) {
	ResetGlobalState()
	ResetConfigState()

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
