package cmd

import (
	"github.com/PolarWolf314/envseal/internal/configs"
	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose      bool
	debug        bool
	fileName     string
	envFile      string
	settingsPath string
	Logger       logger.Logger
	Settings     *configs.Settings

	SecretsCmd = &cobra.Command{
		Use:   "secrets",
		Short: "Manage an encrypted secrets document",
		Long: `Generates key pairs, encrypts and decrypts SecureString entries of a
secrets document, and syncs resolved entries to a remote parameter store.

The document is taken from the first argument, --file, or ENVSEAL_FILENAME.
Keys are looked up in the provider's parameter store, then in the files named
by the document, then in PRIVATE_KEY and PUBLIC_KEY.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
				Out:     cmd.OutOrStdout(),
				Err:     cmd.ErrOrStderr(),
			}
			Logger.Debugf("Initializing secrets command with verbose=%t, debug=%t", verbose, debug)

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			Settings = settings
			return nil
		},
	}
)

func init() {
	SecretsCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	SecretsCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	SecretsCmd.PersistentFlags().StringVarP(&fileName, "file", "f", "", "secrets document to operate on")
	addSettingsFlags(SecretsCmd.PersistentFlags())

	SecretsCmd.AddCommand(keygenCmd)
	SecretsCmd.AddCommand(encryptCmd)
	SecretsCmd.AddCommand(decryptCmd)
	SecretsCmd.AddCommand(syncCmd)
	SecretsCmd.AddCommand(logCmd)
}

func addSettingsFlags(flags *pflag.FlagSet) {
	flags.StringVar(&envFile, "env-file", "", "read settings from a dotenv file")
	flags.StringVar(&settingsPath, "config", "", "settings file (default $XDG_CONFIG_HOME/envseal/config.toml)")
}

// loadSettings merges the settings file, the env file, the environment and the
// command line, in increasing precedence.
func loadSettings() (*configs.Settings, error) {
	settings, err := configs.Load(configs.LoadOptions{
		SettingsPath: settingsPath,
		EnvFile:      envFile,
	})
	if err != nil {
		return nil, err
	}
	if fileName != "" {
		settings.FileName = fileName
	}
	return settings, nil
}

// Helper functions for testing

// GetSecretsCmd returns the SecretsCmd for testing.
func GetSecretsCmd() *cobra.Command {
	return SecretsCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	fileName = ""
	envFile = ""
	settingsPath = ""
	Settings = nil

	resetKeygenCommandState()
	resetEncryptCommandState()
	resetDecryptCommandState()
	resetSyncCommandState()
	resetLogCommandState()
	resetCobraFlagState(SecretsCmd)
}

// resetCobraFlagState clears the Changed state of every flag under root.
func resetCobraFlagState(root *cobra.Command) {
	reset := func(flag *pflag.Flag) { flag.Changed = false }
	root.PersistentFlags().VisitAll(reset)
	root.Flags().VisitAll(reset)
	for _, c := range root.Commands() {
		resetCobraFlagState(c)
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
