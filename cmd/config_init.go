package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/PolarWolf314/envseal/internal/configs"
	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/PolarWolf314/envseal/internal/utils"
	"github.com/spf13/cobra"
)

var (
	configInitFileName   string
	configInitKeyName    string
	configInitKeysDir    string
	configInitAWSProfile string
	configInitAuditLog   bool
)

func init() {
	configInitCmd.Flags().StringVar(&configInitFileName, "file-name", "", "default secrets document")
	configInitCmd.Flags().StringVar(&configInitKeyName, "key-name", "", "default key name for keygen")
	configInitCmd.Flags().StringVar(&configInitKeysDir, "keys-dir", "", "directory keygen writes to")
	configInitCmd.Flags().StringVar(&configInitAWSProfile, "aws-profile", "", "shared AWS profile for the parameter store")
	configInitCmd.Flags().BoolVar(&configInitAuditLog, "audit-log", true, "record operations in an audit log next to the document")
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitFileName = ""
	configInitKeyName = ""
	configInitKeysDir = ""
	configInitAWSProfile = ""
	configInitAuditLog = true
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or update the settings file",
	Long: `Writes the settings file, by default $XDG_CONFIG_HOME/envseal/config.toml.

Existing values are kept unless a flag replaces them. When run in a terminal
without flags, the command prompts for each value.

Examples:
  envseal config init
  envseal config init --file-name secrets.yaml --key-name app --aws-profile prod`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config init command")

		path, err := resolvedSettingsPath()
		if err != nil {
			return err
		}

		settings := &configs.Settings{AuditLog: true}
		if err := configs.LoadTOML(path, settings); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read settings from %s: %w", path, err)
			}
			ConfigLogger.Debugf("No existing settings at %s", path)
		}

		interactive := cmd.Flags().NFlag() == 0 && utils.IsTerminal()
		fields := []struct {
			flag   string
			prompt string
			value  string
			dst    *string
		}{
			{"file-name", "Default secrets document", configInitFileName, &settings.FileName},
			{"key-name", "Default key name", configInitKeyName, &settings.KeyName},
			{"keys-dir", "Keys directory", configInitKeysDir, &settings.KeysDir},
			{"aws-profile", "AWS profile", configInitAWSProfile, &settings.AWSProfile},
		}
		for _, f := range fields {
			switch {
			case cmd.Flags().Changed(f.flag):
				*f.dst = f.value
			case interactive:
				value, err := promptWithDefault(f.prompt, *f.dst)
				if err != nil {
					return err
				}
				*f.dst = value
			}
		}
		if cmd.Flags().Changed("audit-log") {
			settings.AuditLog = configInitAuditLog
		}

		if err := configs.SaveTOML(path, settings); err != nil {
			return fmt.Errorf("failed to save settings to %s: %w", path, err)
		}

		ConfigLogger.Infof("Config init command completed successfully")
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Settings saved to "+ui.Path.Sprint(path))
		return nil
	},
}

func promptWithDefault(prompt, defaultValue string) (string, error) {
	if defaultValue != "" {
		prompt = fmt.Sprintf("%s [%s]: ", prompt, defaultValue)
	} else {
		prompt += ": "
	}
	value, err := utils.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	if value == "" {
		return defaultValue, nil
	}
	return value, nil
}

func resolvedSettingsPath() (string, error) {
	if settingsPath != "" {
		return settingsPath, nil
	}
	return configs.DefaultSettingsPath()
}
