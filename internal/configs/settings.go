package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvFileName   = "ENVSEAL_FILENAME"
	EnvFileNameV1 = "FILENAME"
	EnvKeyName    = "KEYNAME"
	EnvPassphrase = "PASSPHRASE"
	EnvPrivateKey = "PRIVATE_KEY"
	EnvPublicKey  = "PUBLIC_KEY"
	EnvAWSProfile = "AWS_PROFILE"
	EnvAuditLog   = "ENVSEAL_AUDIT_LOG"
)

// Settings is built once at process start and handed to every workflow.
// Secrets never come from the settings file.
type Settings struct {
	FileName   string `toml:"file_name,omitempty"`
	KeyName    string `toml:"key_name,omitempty"`
	KeysDir    string `toml:"keys_dir,omitempty"`
	AWSProfile string `toml:"aws_profile,omitempty"`
	AuditLog   bool   `toml:"audit_log"`

	Passphrase string `toml:"-"`
	PrivateKey string `toml:"-"`
	PublicKey  string `toml:"-"`
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// SettingsPath defaults to DefaultSettingsPath. A missing file is not an error.
	SettingsPath string

	// EnvFile is an optional dotenv file. Its values never reach the process environment.
	EnvFile string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// DefaultSettingsPath returns the per-user settings file location.
func DefaultSettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(configDir, "envseal", "config.toml"), nil
}

// Load merges, lowest precedence first: the settings file, the dotenv file,
// the process environment. Command line flags are applied by the caller.
func Load(opts LoadOptions) (*Settings, error) {
	settings := &Settings{AuditLog: true}

	path := opts.SettingsPath
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := LoadTOML(path, settings); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
		dotenv = values
	}

	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	lookup := func(name string) (string, bool) {
		if v, ok := lookupEnv(name); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok && v != ""
	}

	apply := func(dst *string, names ...string) {
		for _, name := range names {
			if v, ok := lookup(name); ok {
				*dst = v
				return
			}
		}
	}
	apply(&settings.FileName, EnvFileName, EnvFileNameV1)
	apply(&settings.KeyName, EnvKeyName)
	apply(&settings.Passphrase, EnvPassphrase)
	apply(&settings.PrivateKey, EnvPrivateKey)
	apply(&settings.PublicKey, EnvPublicKey)
	apply(&settings.AWSProfile, EnvAWSProfile)

	if v, ok := lookup(EnvAuditLog); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", EnvAuditLog, v, err)
		}
		settings.AuditLog = enabled
	}

	return settings, nil
}
