package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/PolarWolf314/envseal/internal/workflows"
	"github.com/spf13/cobra"
)

var encryptDryRun bool

func init() {
	encryptCmd.Flags().BoolVar(&encryptDryRun, "dry-run", false, "report what would be encrypted without writing")
}

// resetEncryptCommandState resets the encrypt command's global state for testing.
func resetEncryptCommandState() {
	encryptDryRun = false
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt [file]",
	Short: "Encrypt the SecureString entries of a secrets document in place",
	Long: `Encrypts every SecureString value that is not yet encrypted and writes the
document back. Encrypted values carry the $enc: marker, so running encrypt
twice is harmless. Only the public key is needed.

Examples:
  envseal secrets encrypt secrets.yaml
  envseal secrets encrypt --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")

		path, err := documentPath(args)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner(cmd, "Encrypting secrets...")
		defer cleanup()

		result, err := workflows.Encrypt(context.Background(), workflows.EncryptOptions{
			FileName: path,
			Keys:     keyOptions(),
			DryRun:   encryptDryRun,
			AuditLog: auditEnabled(),
			Log:      Logger,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		Logger.Infof("Encrypt command completed, %d entries encrypted", result.Encrypted)
		spinner.FinalMSG = formatWarnings(result.Warnings) + formatEncryptResult(result)
		return nil
	},
}

func formatEncryptResult(result *workflows.EncryptResult) string {
	switch {
	case result.Encrypted == 0 && len(result.Warnings) > 0:
		return ui.Warning.Sprint("⚠") + " Nothing was encrypted in " + ui.Path.Sprint(result.Document)
	case result.Encrypted == 0:
		return ui.Success.Sprint("✓") + " All secure entries in " + ui.Path.Sprint(result.Document) + " are already encrypted"
	case result.DryRun:
		return ui.Warning.Sprint("[dry-run]") + fmt.Sprintf(" Would encrypt %d entries in ", result.Encrypted) + ui.Path.Sprint(result.Document)
	default:
		return ui.Success.Sprint("✓") + fmt.Sprintf(" Encrypted %d entries in ", result.Encrypted) + ui.Path.Sprint(result.Document) + "\n" +
			ui.Info.Sprint("→") + " The document is now safe to commit"
	}
}
