package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envseal/internal/regionsync"
	"github.com/PolarWolf314/envseal/internal/store"
	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/PolarWolf314/envseal/internal/utils"
	"github.com/PolarWolf314/envseal/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	syncProvider      string
	syncCollectErrors bool
	syncSet           []string

	// syncClientFactory replaces the provider client in tests.
	syncClientFactory regionsync.ClientFactory
)

func init() {
	syncCmd.Flags().StringVar(&syncProvider, "provider", string(store.ProviderAWS), "remote store to sync to")
	syncCmd.Flags().BoolVar(&syncCollectErrors, "collect-errors", false, "report every failing region instead of the first")
	syncCmd.Flags().StringArrayVar(&syncSet, "set", nil, "override a placeholder, KEY=VALUE (repeatable)")
}

// resetSyncCommandState resets the sync command's global state for testing.
func resetSyncCommandState() {
	syncProvider = string(store.ProviderAWS)
	syncCollectErrors = false
	syncSet = nil
}

var syncCmd = &cobra.Command{
	Use:   "sync [file]",
	Short: "Push resolved entries to every region of a provider",
	Long: `Decrypts the document and writes every entry that has a name, a type and
overwrite set to true to the provider's parameter store, in all configured
regions at once. Parameter names are prefixed with the document's variables.

A failing region fails the command; the other regions still finish.

Examples:
  envseal secrets sync secrets.yaml
  envseal secrets sync --set PORT=443 --collect-errors`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting sync command")

		overrides, err := utils.ParseAssignments(syncSet)
		if err != nil {
			return err
		}
		path, err := documentPath(args)
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		mode := regionsync.FailFast
		if syncCollectErrors {
			mode = regionsync.CollectAll
		}

		spinner, cleanup := startSpinner(cmd, "Syncing secrets...")
		defer cleanup()

		result, err := workflows.Sync(context.Background(), workflows.SyncOptions{
			FileName:   path,
			Passphrase: passphrase,
			Overrides:  overrides,
			Provider:   syncProvider,
			Mode:       mode,
			NewClient:  syncClientFactory,
			Keys:       keyOptions(),
			AuditLog:   auditEnabled(),
			Log:        Logger,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		Logger.Infof("Sync command completed successfully")
		spinner.FinalMSG = formatWarnings(result.Warnings) +
			ui.Success.Sprint("✓") + fmt.Sprintf(" Synced %d entries to %s in ", result.Entries, result.Provider) +
			fmt.Sprintf("%d regions:", len(result.Regions)) + formatRegions(result.Regions)
		return nil
	},
}

func formatRegions(regions []string) string {
	out := "\n"
	for _, r := range regions {
		out += "    - " + ui.Highlight.Sprint(r) + "\n"
	}
	return out
}
