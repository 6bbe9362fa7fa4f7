// Package configs builds the runtime settings for envseal.
//
// Settings are assembled once per process from, lowest precedence first:
//
//   - the per-user settings file ($XDG_CONFIG_HOME/envseal/config.toml)
//   - an optional dotenv file passed with --env-file
//   - the process environment (ENVSEAL_FILENAME or FILENAME, KEYNAME,
//     PASSPHRASE, PRIVATE_KEY, PUBLIC_KEY, AWS_PROFILE, ENVSEAL_AUDIT_LOG)
//
// Command line flags override all of these in the cmd package. The settings
// file never stores the passphrase or key material.
package configs
