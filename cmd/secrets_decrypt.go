package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PolarWolf314/envseal/internal/store"
	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/PolarWolf314/envseal/internal/utils"
	"github.com/PolarWolf314/envseal/internal/workflows"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	decryptFormat   string
	decryptSet      []string
	decryptRedact   bool
	decryptKeyStdin bool
)

func init() {
	decryptCmd.Flags().StringVar(&decryptFormat, "format", "env", "output format: env, json or yaml")
	decryptCmd.Flags().StringArrayVar(&decryptSet, "set", nil, "override a placeholder, KEY=VALUE (repeatable)")
	decryptCmd.Flags().BoolVar(&decryptRedact, "redact", false, "hide SecureString values in the output")
	decryptCmd.Flags().BoolVar(&decryptKeyStdin, "private-key-stdin", false, "read the private key from stdin; it overrides the document's key sources")
}

// resetDecryptCommandState resets the decrypt command's global state for testing.
func resetDecryptCommandState() {
	decryptFormat = "env"
	decryptSet = nil
	decryptRedact = false
	decryptKeyStdin = false
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [file]",
	Short: "Print the resolved entries of a secrets document",
	Long: `Decrypts every SecureString value, substitutes ${NAME} and ${NAME:-default}
placeholders, and prints the result. The document itself is never modified.

Examples:
  envseal secrets decrypt secrets.yaml > .env
  envseal secrets decrypt --format json --set PORT=9090
  cat app.key | envseal secrets decrypt --private-key-stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")

		if err := validateFormat(decryptFormat); err != nil {
			return err
		}
		overrides, err := utils.ParseAssignments(decryptSet)
		if err != nil {
			return err
		}
		path, err := documentPath(args)
		if err != nil {
			return err
		}

		keys := keyOptions()
		passphrasePrompt := readPassphrase
		if decryptKeyStdin {
			data, err := utils.ReadStdin()
			if err != nil {
				return err
			}
			keys.StdinPrivateKey = string(data)
			passphrasePrompt = readPassphraseFromTTY
		}

		passphrase, err := passphrasePrompt("Passphrase: ")
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner(cmd, "Decrypting secrets...")
		result, err := workflows.Decrypt(context.Background(), workflows.DecryptOptions{
			FileName:   path,
			Passphrase: passphrase,
			Overrides:  overrides,
			Keys:       keys,
			AuditLog:   auditEnabled(),
			Log:        Logger,
		})
		if err != nil {
			err = reportError(spinner, err)
			cleanup()
			return err
		}
		cleanup()

		fmt.Fprint(cmd.ErrOrStderr(), formatWarnings(result.Warnings))
		Logger.Infof("Decrypt command completed, %d entries resolved", len(result.Entries))

		entries := result.Entries
		if decryptRedact {
			entries = redactEntries(entries)
		}
		return writeEntries(cmd.OutOrStdout(), decryptFormat, entries)
	},
}

func readPassphraseFromTTY(prompt string) (string, error) {
	if Settings != nil && Settings.Passphrase != "" {
		return Settings.Passphrase, nil
	}
	if !utils.IsTTYAvailable() {
		return "", nil
	}
	passphrase, err := utils.ReadPassphraseFromTTY(prompt)
	if err != nil {
		return "", err
	}
	return string(passphrase), nil
}

func validateFormat(format string) error {
	switch format {
	case "env", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected env, json or yaml", format)
	}
}

func redactEntries(entries []store.Entry) []store.Entry {
	out := make([]store.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
		if e.Type.Secure() {
			out[i].Value = ui.Redact(e.Value)
		}
	}
	return out
}

type entryView struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
	Overwrite *bool  `json:"overwrite,omitempty"`
}

// writeEntries renders entries in format. The env format is sorted by name;
// json and yaml keep document order.
func writeEntries(w io.Writer, format string, entries []store.Entry) error {
	switch format {
	case "json":
		views := make([]entryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, entryView{Name: e.Name, Value: e.Value, Type: string(e.Type), Overwrite: e.Overwrite})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)

	case "yaml":
		data, err := store.Encode(&store.Document{Entries: entries})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	default:
		content, err := godotenv.Marshal(store.KeyValues(entries))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, content)
		return err
	}
}
