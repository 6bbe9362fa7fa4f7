// Package store owns the secrets document: a YAML file with a
// _configurations block and an ordered _values list of entries.
//
// # Entry Lifecycle
//
// A SecureString value moves through these states:
//
//	plaintext (author) -> [EncryptValues] -> "$enc:" ciphertext (at rest)
//	ciphertext -> [DecryptValues] -> plaintext -> placeholders applied (in use)
//
// A store that has been decrypted refuses to Save until EncryptValues runs
// again, so resolved values never reach disk by accident. Neither operation
// reorders entries.
//
// # Providers
//
// Remote parameter stores form a closed set (see Provider). Each carries its
// own block in the configuration; GetProviderConfig fails with
// ErrUnknownProvider when the block is absent.
package store
