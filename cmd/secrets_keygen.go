package cmd

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"github.com/PolarWolf314/envseal/internal/secrets"
	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/PolarWolf314/envseal/internal/utils"
	"github.com/PolarWolf314/envseal/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	keygenOutDir string
	keygenBits   int
	keygenForce  bool
)

func init() {
	keygenCmd.Flags().StringVarP(&keygenOutDir, "out", "o", "", "directory for the key files (default: keys_dir setting, then the working directory)")
	keygenCmd.Flags().IntVar(&keygenBits, "bits", secrets.DefaultKeyBits, "RSA key size")
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "overwrite existing key files")
}

// resetKeygenCommandState resets the keygen command's global state for testing.
func resetKeygenCommandState() {
	keygenOutDir = ""
	keygenBits = secrets.DefaultKeyBits
	keygenForce = false
}

var keygenCmd = &cobra.Command{
	Use:   "keygen [name]",
	Short: "Generate a passphrase-protected key pair",
	Long: `Generates an RSA key pair and writes <name>.key and <name>.pub.

The name comes from the argument or KEYNAME, the passphrase from PASSPHRASE
or an interactive prompt. An empty passphrase leaves the private key
unprotected and is reported as a warning.

Examples:
  envseal secrets keygen app
  envseal secrets keygen app --out keys --bits 3072`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keygen command")

		keyName, err := keygenName(args)
		if err != nil {
			return err
		}
		if keyName != "" && !utils.IsValidKeyName(keyName) {
			return fmt.Errorf("invalid key name %q: use letters, digits, '.', '-' and '_'", keyName)
		}

		passphrase, err := keygenPassphrase()
		if err != nil {
			return err
		}

		outDir := keygenOutDir
		if outDir == "" && Settings != nil {
			outDir = Settings.KeysDir
		}

		spinner, cleanup := startSpinner(cmd, "Generating key pair...")
		defer cleanup()

		result, err := workflows.Keygen(context.Background(), workflows.KeygenOptions{
			KeyName:    keyName,
			Passphrase: passphrase,
			OutDir:     outDir,
			Bits:       keygenBits,
			Force:      keygenForce,
			AuditLog:   auditEnabled(),
		})
		if err != nil {
			return reportError(spinner, err)
		}

		Logger.Infof("Keygen command completed successfully")
		spinner.FinalMSG = formatWarnings(result.Warnings) +
			ui.Success.Sprint("✓") + " Key pair generated:" +
			utils.FormatPaths([]string{result.PrivateKeyPath, result.PublicKeyPath}) +
			ui.Info.Sprint("→") + " Reference them with " + ui.Code.Sprint("privateKeyPath") + " and " +
			ui.Code.Sprint("publicKeyPath") + " in the document, and keep the " + ui.Path.Sprint(".key") + " file out of version control"
		return nil
	},
}

func keygenName(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if Settings != nil && Settings.KeyName != "" {
		return Settings.KeyName, nil
	}
	if utils.IsTerminal() {
		return utils.ReadLine("Key name: ")
	}
	return "", nil
}

// keygenPassphrase asks twice when prompting so a typo cannot lock the key.
func keygenPassphrase() (string, error) {
	if Settings != nil && Settings.Passphrase != "" {
		return Settings.Passphrase, nil
	}
	if !utils.IsTerminal() {
		return "", nil
	}

	first, err := utils.ReadPassphrase("Passphrase for the new key (empty for none): ")
	if err != nil {
		return "", err
	}
	if len(first) == 0 {
		return "", nil
	}
	second, err := utils.ReadPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("%w: passphrases do not match", kerrors.ErrMissingInput)
	}
	return string(first), nil
}
