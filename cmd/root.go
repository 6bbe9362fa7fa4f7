package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the envseal root command with every command group attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "envseal",
		Short: "envseal - encrypted secrets documents synced to remote parameter stores",
		Long: `envseal keeps secrets in a YAML document that is safe to commit: SecureString
values are encrypted with a public key and decrypted with a passphrase
protected private key. Resolved values can be printed or pushed to a remote
parameter store in several regions at once.

Usage:
  envseal <command> [flags]

Available Commands:
  secrets    Generate keys, encrypt, decrypt and sync a secrets document
  config     Manage envseal settings

Run 'envseal help <command>' for more details on a specific command.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(SecretsCmd)
	root.AddCommand(ConfigCmd)
	return root
}
