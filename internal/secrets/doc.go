// Package secrets provides the cryptographic operations for envseal.
//
// # Key Pairs
//
// GenerateKeyPair creates an RSA key pair. The private key is written as an
// OpenSSH private key block, encrypted with the passphrase (bcrypt KDF and
// AES-256-CTR); the public key is a PKIX PEM block. OpenSSH keys keep their
// public half in clear, which lets HasKeyPair check a pair without the
// passphrase.
//
// # Encryption Architecture
//
// Values are sealed with a hybrid scheme:
//
//  1. A random 256-bit symmetric key seals the value with NaCl secretbox
//  2. The RSA public key wraps the symmetric key with OAEP (SHA-256)
//  3. The ciphertext is wrapped key || 24-byte nonce || sealed box
//
// Encryption is non-deterministic: sealing the same value twice produces
// different ciphertext.
//
// # Stored Values
//
// A value in a secrets document is stored as Marker ("$enc:") followed by the
// standard base64 encoding of the ciphertext. EncryptValue is a no-op for
// values that already carry the marker.
package secrets
