// Package utils provides shared helpers for the envseal command line.
//
// # Terminal Utilities
//
// Functions for prompting the user:
//   - ReadPassphrase: reads a passphrase without echo, via /dev/tty when stdin is piped
//   - ReadLine: reads one line of visible input
//   - IsTerminal: checks whether stdin is a terminal
//
// # I/O Utilities
//
//   - ReadStdin: reads piped key material from standard input
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - ParseAssignments: parses repeated KEY=VALUE flags
//   - IsValidKeyName: validates key file stems
package utils
