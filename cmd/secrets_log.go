package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/envseal/internal/audit"
	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logOperation string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logOperation = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log [file]",
	Short: "View the audit log next to a secrets document",
	Long: `Displays the audit log kept next to the secrets document.

Examples:
  envseal secrets log secrets.yaml
  envseal secrets log -n 10 --operation sync
  envseal secrets log --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")

		path, err := documentPath(args)
		if err != nil {
			return err
		}

		entries, err := audit.ReadEntries(filepath.Dir(path))
		if err != nil {
			return fmt.Errorf("failed to read audit log: %w", err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No audit log entries found.")
			return nil
		}

		entries = filterLogEntries(entries, logOperation, logLimit)
		Logger.Debugf("Showing %d audit entries", len(entries))

		if logJSON {
			if entries == nil {
				entries = []audit.Entry{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No audit log entries found matching the filters.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), formatLogEntry(e))
		}
		return nil
	},
}

// filterLogEntries keeps entries matching any of the comma-separated
// operations, then the last limit of them.
func filterLogEntries(entries []audit.Entry, operations string, limit int) []audit.Entry {
	if operations != "" {
		wanted := map[string]bool{}
		for _, op := range strings.Split(operations, ",") {
			wanted[strings.TrimSpace(op)] = true
		}
		filtered := entries[:0:0]
		for _, e := range entries {
			if wanted[e.Operation] {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

func formatLogEntry(e audit.Entry) string {
	line := fmt.Sprintf("%s  %-8s %s", ui.Muted.Sprint(e.Timestamp), e.Operation, e.User)

	var details []string
	if e.KeyName != "" {
		details = append(details, "key "+ui.Highlight.Sprint(e.KeyName))
	}
	if e.Entries > 0 {
		details = append(details, fmt.Sprintf("%d entries", e.Entries))
	}
	if len(e.Regions) > 0 {
		details = append(details, e.Provider+" "+strings.Join(e.Regions, ","))
	}
	if e.Failed {
		details = append(details, ui.Error.Sprint("failed"))
	}
	if len(details) > 0 {
		line += "  " + strings.Join(details, ", ")
	}
	return line
}
