package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/envseal/internal/audit"
	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"github.com/PolarWolf314/envseal/internal/secrets"
)

// KeygenOptions configures the keygen workflow.
type KeygenOptions struct {
	// KeyName is the file stem: <KeyName>.key and <KeyName>.pub.
	KeyName string

	// Passphrase protects the private key. Empty is allowed but reported as a warning.
	Passphrase string

	// OutDir defaults to the working directory.
	OutDir string

	// Bits defaults to secrets.DefaultKeyBits.
	Bits int

	// Force overwrites existing key files.
	Force bool

	AuditLog bool
}

// KeygenResult contains the outcome of key generation.
type KeygenResult struct {
	PrivateKeyPath string
	PublicKeyPath  string
	Warnings       []error
}

// Keygen generates a key pair and writes both halves to disk.
//
// Returns ErrMissingInput if no key name is given.
// Returns ErrKeyFileExists if a key file exists and Force is off.
func Keygen(ctx context.Context, opts KeygenOptions) (*KeygenResult, error) {
	if opts.KeyName == "" {
		return nil, fmt.Errorf("%w: key name", kerrors.ErrMissingInput)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = "."
	}

	result := &KeygenResult{
		PrivateKeyPath: filepath.Join(outDir, opts.KeyName+".key"),
		PublicKeyPath:  filepath.Join(outDir, opts.KeyName+".pub"),
	}

	if !opts.Force {
		for _, path := range []string{result.PrivateKeyPath, result.PublicKeyPath} {
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyFileExists, path)
			}
		}
	}

	if opts.Passphrase == "" {
		result.Warnings = append(result.Warnings,
			kerrors.Warning{Err: fmt.Errorf("no passphrase provided, the private key is stored unprotected")})
	}

	var keyOpts []secrets.KeyOption
	if opts.Bits > 0 {
		keyOpts = append(keyOpts, secrets.WithKeyBits(opts.Bits))
	}
	pair, err := secrets.GenerateKeyPair(opts.Passphrase, keyOpts...)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", outDir, err)
	}
	if err := os.WriteFile(result.PublicKeyPath, []byte(pair.PublicKey), 0644); err != nil {
		return nil, fmt.Errorf("failed to write public key to %s: %w", result.PublicKeyPath, err)
	}
	if err := os.WriteFile(result.PrivateKeyPath, []byte(pair.PrivateKey), 0600); err != nil {
		return nil, fmt.Errorf("failed to write private key to %s: %w", result.PrivateKeyPath, err)
	}

	if opts.AuditLog {
		entry := audit.New("keygen")
		entry.KeyName = opts.KeyName
		audit.Log(outDir, entry)
	}

	return result, nil
}
