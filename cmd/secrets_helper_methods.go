package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/envseal/internal/configs"
	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"github.com/PolarWolf314/envseal/internal/secrets"
	"github.com/PolarWolf314/envseal/internal/store"
	"github.com/PolarWolf314/envseal/internal/ui"
	"github.com/PolarWolf314/envseal/internal/utils"
	"github.com/PolarWolf314/envseal/internal/workflows"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// ReportedError marks an error whose message was already shown to the user.
// The process still exits non-zero.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(cmd *cobra.Command, message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	done := false
	cleanup := func() {
		if done {
			return
		}
		done = true

		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(cmd.OutOrStdout(), finalMsg)
		}
	}

	return s, cleanup
}

// documentPath picks the secrets document: argument, then settings, then a prompt.
func documentPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if Settings != nil && Settings.FileName != "" {
		return Settings.FileName, nil
	}
	if utils.IsTerminal() {
		path, err := utils.ReadLine("Secrets document: ")
		if err != nil {
			return "", err
		}
		if path != "" {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: secrets document (pass it as an argument, with --file or via %s)",
		kerrors.ErrMissingInput, configs.EnvFileName)
}

// readPassphrase returns the configured passphrase or prompts for one.
// An empty passphrase is valid for unprotected keys.
func readPassphrase(prompt string) (string, error) {
	if Settings != nil && Settings.Passphrase != "" {
		return Settings.Passphrase, nil
	}
	if !utils.IsTerminal() && !utils.IsTTYAvailable() {
		Logger.Debugf("No terminal available, continuing without a passphrase")
		return "", nil
	}
	passphrase, err := utils.ReadPassphrase(prompt)
	if err != nil {
		return "", err
	}
	return string(passphrase), nil
}

// keyOptions carries environment key material and the AWS profile to workflows.
func keyOptions() workflows.KeyOptions {
	if Settings == nil {
		return workflows.KeyOptions{}
	}
	return workflows.KeyOptions{
		PrivateKey: Settings.PrivateKey,
		PublicKey:  Settings.PublicKey,
		AWSProfile: Settings.AWSProfile,
	}
}

func auditEnabled() bool {
	return Settings != nil && Settings.AuditLog
}

// formatWarnings renders non-fatal problems, one per line.
func formatWarnings(warnings []error) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(ui.Warning.Sprint("⚠") + " " + w.Error() + "\n")
	}
	return b.String()
}

// formatError formats a workflow error for display to the user.
func formatError(err error) string {
	var syncErr *kerrors.SyncError

	switch {
	case errors.Is(err, kerrors.ErrMissingInput):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envseal secrets --help") + " for the accepted inputs"

	case errors.Is(err, kerrors.ErrCorruptDocument):
		return ui.Error.Sprint("✗") + " The secrets document could not be parsed\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, secrets.ErrIncorrectPassphrase), errors.Is(err, secrets.ErrPassphraseRequired):
		return ui.Error.Sprint("✗") + " Failed to unlock the private key\n" +
			ui.Info.Sprint("→") + " Check the passphrase, or set it in " + ui.Code.Sprint(configs.EnvPassphrase)

	case errors.Is(err, kerrors.ErrDecryption):
		return ui.Error.Sprint("✗") + " Failed to decrypt the secrets document\n" +
			ui.Error.Sprint("Error: ") + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Make sure the private key matches the key the values were encrypted with"

	case errors.Is(err, kerrors.ErrUnknownProvider):
		names := make([]string, 0, len(store.Providers()))
		for _, p := range store.Providers() {
			names = append(names, string(p))
		}
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Supported providers: " + ui.Highlight.Sprint(strings.Join(names, ", "))

	case errors.As(err, &syncErr):
		return ui.Error.Sprint("✗") + " Sync failed in region " + ui.Highlight.Sprint(syncErr.Region) + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrSync):
		return ui.Error.Sprint("✗") + " Sync failed\n" + ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrKeyFileExists):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Use " + ui.Flag.Sprint("--force") + " to replace it"

	default:
		return ui.Error.Sprint("✗") + " " + err.Error()
	}
}

// reportError puts the formatted error on the spinner and marks it reported.
func reportError(s *spinner.Spinner, err error) error {
	if !kerrors.IsFatal(err) {
		s.FinalMSG = formatWarnings([]error{err})
		return nil
	}
	s.FinalMSG = formatError(err)
	return &ReportedError{Err: err}
}
