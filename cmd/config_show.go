package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/envseal/internal/configs"
	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

// settingsView never exposes secret values, only whether they are set.
type settingsView struct {
	SettingsFile string `json:"settings_file"`
	FileName     string `json:"file_name"`
	KeyName      string `json:"key_name"`
	KeysDir      string `json:"keys_dir"`
	AWSProfile   string `json:"aws_profile"`
	AuditLog     bool   `json:"audit_log"`
	Passphrase   bool   `json:"passphrase_set"`
	PrivateKey   bool   `json:"private_key_set"`
	PublicKey    bool   `json:"public_key_set"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective settings",
	Long: `Displays the settings as envseal sees them after merging the settings file,
the dotenv file and the environment. Secrets are reported as set or unset.

Examples:
  envseal config show
  envseal config show --env-file .env --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config show command")

		path, err := resolvedSettingsPath()
		if err != nil {
			return err
		}
		settings, err := configs.Load(configs.LoadOptions{SettingsPath: path, EnvFile: envFile})
		if err != nil {
			return err
		}

		view := settingsView{
			SettingsFile: path,
			FileName:     settings.FileName,
			KeyName:      settings.KeyName,
			KeysDir:      settings.KeysDir,
			AWSProfile:   settings.AWSProfile,
			AuditLog:     settings.AuditLog,
			Passphrase:   settings.Passphrase != "",
			PrivateKey:   settings.PrivateKey != "",
			PublicKey:    settings.PublicKey != "",
		}

		out := cmd.OutOrStdout()
		if configShowJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}

		fmt.Fprintln(out, "Settings file: "+ui.Path.Sprint(view.SettingsFile))
		fmt.Fprintln(out, "  file_name:   "+orUnset(view.FileName))
		fmt.Fprintln(out, "  key_name:    "+orUnset(view.KeyName))
		fmt.Fprintln(out, "  keys_dir:    "+orUnset(view.KeysDir))
		fmt.Fprintln(out, "  aws_profile: "+orUnset(view.AWSProfile))
		fmt.Fprintf(out, "  audit_log:   %t\n", view.AuditLog)
		fmt.Fprintln(out, "  passphrase:  "+setOrUnset(view.Passphrase))
		fmt.Fprintln(out, "  private_key: "+setOrUnset(view.PrivateKey))
		fmt.Fprintln(out, "  public_key:  "+setOrUnset(view.PublicKey))
		return nil
	},
}

func orUnset(v string) string {
	if v == "" {
		return ui.Muted.Sprint("unset")
	}
	return ui.Highlight.Sprint(v)
}

func setOrUnset(set bool) string {
	if set {
		return ui.Secret.Sprint("set")
	}
	return ui.Muted.Sprint("unset")
}
