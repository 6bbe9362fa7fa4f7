// Package workflows provides high-level orchestration for envseal commands.
//
// Workflows coordinate the store, key resolution, the cipher and the region
// sync to implement complete user-facing features. Each workflow handles a
// single command's business logic, independent of CLI concerns like flag
// parsing, spinners, and output formatting.
//
// # Available Workflows
//
//   - Keygen: Generates a passphrase-protected key pair on disk
//   - Encrypt: Encrypts plaintext SecureString entries in place
//   - Decrypt: Resolves every entry to plaintext without touching the document
//   - Sync: Decrypts and pushes sync-ready entries to every configured region
//
// # Key Material
//
// Keys are looked up per half: the provider's remote store first, then the
// files named in the document, then the environment. A half that cannot be
// found, or a private and public key that do not belong together, is reported
// as a warning in the result and crypto is skipped. Only decryption failures,
// corrupt documents and sync failures are fatal.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package:
//
//	result, err := workflows.Sync(ctx, opts)
//	if errors.Is(err, kerrors.ErrUnknownProvider) {
//	    // No such provider configured, nothing was sent.
//	}
package workflows
