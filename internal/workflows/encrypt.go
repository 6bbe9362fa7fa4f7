package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envseal/internal/audit"
	logger "github.com/PolarWolf314/envseal/internal/logging"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	FileName string
	Keys     KeyOptions

	// DryRun reports how many entries would be encrypted without saving.
	DryRun bool

	AuditLog bool
	Log      logger.Logger
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	Document  string
	Encrypted int
	DryRun    bool
	Warnings  []error
}

// Encrypt encrypts every plaintext SecureString entry of a document in place.
//
// Without a usable public key the document is left as it is and a warning
// explains why. Returns ErrCorruptDocument if the document cannot be parsed.
func Encrypt(ctx context.Context, opts EncryptOptions) (*EncryptResult, error) {
	s, err := openStore(opts.FileName, opts.Log)
	if err != nil {
		return nil, err
	}

	cipher, warnings := loadCipher(ctx, s, opts.Keys, opts.Log)
	s.SetCipher(cipher)

	count, err := s.EncryptValues()
	if err != nil {
		return nil, err
	}

	result := &EncryptResult{
		Document:  s.Path(),
		Encrypted: count,
		DryRun:    opts.DryRun,
		Warnings:  warnings,
	}
	if opts.DryRun || count == 0 {
		return result, nil
	}

	if err := s.Save(); err != nil {
		return nil, fmt.Errorf("saving %s: %w", s.Path(), err)
	}

	if opts.AuditLog {
		entry := audit.New("encrypt")
		entry.Document = s.Path()
		entry.Entries = count
		audit.Log(s.Dir(), entry)
	}

	return result, nil
}
