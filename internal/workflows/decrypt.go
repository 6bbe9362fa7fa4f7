package workflows

import (
	"context"

	"github.com/PolarWolf314/envseal/internal/audit"
	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/PolarWolf314/envseal/internal/store"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	FileName   string
	Passphrase string

	// Overrides replace ${NAME} and ${NAME:-default} placeholders by name.
	Overrides map[string]string

	Keys     KeyOptions
	AuditLog bool
	Log      logger.Logger
}

// DecryptResult contains the resolved entries. The document on disk is not modified.
type DecryptResult struct {
	Document string
	Entries  []store.Entry
	Warnings []error
}

// Decrypt loads a document, decrypts its secure entries and applies overrides and defaults.
//
// Returns ErrDecryption if any marked value cannot be decrypted; no entries
// are returned in that case.
func Decrypt(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	s, err := openStore(opts.FileName, opts.Log)
	if err != nil {
		return nil, err
	}

	cipher, warnings := loadCipher(ctx, s, opts.Keys, opts.Log)
	s.SetCipher(cipher)

	entries, err := s.DecryptValues(opts.Passphrase, opts.Overrides)
	if err != nil {
		return nil, err
	}

	if opts.AuditLog {
		entry := audit.New("decrypt")
		entry.Document = s.Path()
		entry.Entries = len(entries)
		audit.Log(s.Dir(), entry)
	}

	return &DecryptResult{
		Document: s.Path(),
		Entries:  entries,
		Warnings: warnings,
	}, nil
}
