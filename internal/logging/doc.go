// Package logger provides leveled logging for envseal commands.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always written to stderr.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Processing %d entries", count)
//
// Commands create a logger in their PersistentPreRun and pass it to
// workflows through their options.
package logger
