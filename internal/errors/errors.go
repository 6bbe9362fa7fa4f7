package errors

import (
	"errors"
	"fmt"
)

// Input errors indicate a required value could not be obtained from any source.
var (
	// ErrMissingInput indicates a required file or key name was not provided by
	// flags, environment, settings or an interactive prompt.
	ErrMissingInput = errors.New("missing required input")
)

// Key errors describe the state of the key material for a run.
var (
	// ErrKeyNotResolved indicates no source yielded key material. It is only
	// ever reported as a warning; crypto-dependent operations become no-ops.
	ErrKeyNotResolved = errors.New("key material not resolved")

	// ErrKeyPairMismatch indicates the private and public keys do not belong together.
	ErrKeyPairMismatch = errors.New("private and public keys do not form a pair")

	// ErrNoPublicKey indicates an encryption was attempted without a public key.
	ErrNoPublicKey = errors.New("no public key available")

	// ErrNoPrivateKey indicates a decryption was attempted without a private key.
	ErrNoPrivateKey = errors.New("no private key available")

	// ErrInvalidPrivateKey indicates the private key is malformed or unsupported.
	ErrInvalidPrivateKey = errors.New("invalid or unsupported private key format")

	// ErrInvalidPublicKey indicates the public key is malformed or unsupported.
	ErrInvalidPublicKey = errors.New("invalid or unsupported public key format")

	// ErrKeyFileExists indicates key generation would overwrite existing key files.
	ErrKeyFileExists = errors.New("key file already exists")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrEncryption indicates a value could not be encrypted.
	ErrEncryption = errors.New("failed to encrypt value")

	// ErrDecryption indicates a wrong passphrase or a malformed ciphertext.
	ErrDecryption = errors.New("failed to decrypt value")
)

// Document errors indicate issues with the secrets document.
var (
	// ErrCorruptDocument indicates the document cannot be parsed into the expected shape.
	ErrCorruptDocument = errors.New("secrets document is corrupt")

	// ErrResolvedDocument indicates a save was attempted while entries hold
	// decrypted values that have not been encrypted again.
	ErrResolvedDocument = errors.New("secrets document holds decrypted values")

	// ErrUnknownProvider indicates a provider is absent from the configuration.
	ErrUnknownProvider = errors.New("provider configuration not found")
)

// Remote errors indicate failures talking to the remote parameter store.
var (
	// ErrSync indicates a region's remote call failed.
	ErrSync = errors.New("sync failed")
)

// SyncError records which region failed during a sync fan-out.
type SyncError struct {
	Region string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: region %s: %v", ErrSync, e.Region, e.Err)
}

// Unwrap exposes both ErrSync and the underlying cause to errors.Is.
func (e *SyncError) Unwrap() []error {
	return []error{ErrSync, e.Err}
}

// Warning is a non-fatal outcome. Operations return warnings alongside their
// results so the caller decides how to surface them.
type Warning struct {
	Err error
}

func (w Warning) Error() string {
	return w.Err.Error()
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Warnf creates a Warning wrapping kind with a formatted detail message.
func Warnf(kind error, format string, args ...any) Warning {
	return Warning{Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))}
}

// IsFatal reports whether err should terminate the running command.
// Warnings are never fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var w Warning
	return !errors.As(err, &w)
}
