package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	symKeySize = 32
	nonceSize  = 24
)

// Cipher encrypts with a public key and decrypts with a passphrase protected private key.
// Either half may be absent, in which case the matching operation fails.
type Cipher struct {
	privateKey []byte
	publicKey  *rsa.PublicKey

	mu           sync.Mutex
	unlocked     *rsa.PrivateKey
	unlockedWith string
}

// NewCipher builds a cipher from key material. The private key is only
// parsed on first decrypt, since unlocking it needs the passphrase.
func NewCipher(privateKey, publicKey string) (*Cipher, error) {
	c := &Cipher{privateKey: []byte(privateKey)}
	if publicKey != "" {
		pub, err := ParsePublicKey([]byte(publicKey))
		if err != nil {
			return nil, err
		}
		c.publicKey = pub
	}
	return c, nil
}

// CanEncrypt reports whether a public key is held.
func (c *Cipher) CanEncrypt() bool {
	return c != nil && c.publicKey != nil
}

// CanDecrypt reports whether a private key is held.
func (c *Cipher) CanDecrypt() bool {
	return c != nil && len(c.privateKey) > 0
}

// EncryptData seals plaintext with a fresh symmetric key wrapped by the public key.
// Layout: RSA-OAEP(key) || nonce || secretbox(plaintext).
func (c *Cipher) EncryptData(plaintext []byte) ([]byte, error) {
	if !c.CanEncrypt() {
		return nil, kerrors.ErrNoPublicKey
	}

	var key [symKeySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("%w: generating symmetric key: %v", kerrors.ErrEncryption, err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: generating nonce: %v", kerrors.ErrEncryption, err)
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, c.publicKey, key[:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryption, err)
	}

	out := make([]byte, 0, len(wrapped)+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, wrapped...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, &key), nil
}

// DecryptData unlocks the private key with passphrase and opens ciphertext.
// Every failure, including a wrong passphrase, wraps ErrDecryption.
func (c *Cipher) DecryptData(ciphertext []byte, passphrase string) ([]byte, error) {
	if !c.CanDecrypt() {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryption, kerrors.ErrNoPrivateKey)
	}

	privateKey, err := c.unlock(passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrDecryption, err)
	}

	size := privateKey.Size()
	if len(ciphertext) < size+nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: ciphertext is truncated", kerrors.ErrDecryption)
	}

	symKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, privateKey, ciphertext[:size], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrapping symmetric key: %v", kerrors.ErrDecryption, err)
	}
	if len(symKey) != symKeySize {
		return nil, fmt.Errorf("%w: invalid symmetric key length %d", kerrors.ErrDecryption, len(symKey))
	}

	var key [symKeySize]byte
	copy(key[:], symKey)
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[size:size+nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[size+nonceSize:], &nonce, &key)
	if !ok {
		return nil, fmt.Errorf("%w: ciphertext failed authentication", kerrors.ErrDecryption)
	}
	return plaintext, nil
}

// unlock parses the private key once per passphrase; bcrypt-derived unlocking is slow.
func (c *Cipher) unlock(passphrase string) (*rsa.PrivateKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unlocked != nil && c.unlockedWith == passphrase {
		return c.unlocked, nil
	}

	key, err := ParsePrivateKey(c.privateKey, passphrase)
	if err != nil {
		return nil, err
	}
	if c.publicKey != nil && !c.publicKey.Equal(&key.PublicKey) {
		return nil, kerrors.ErrKeyPairMismatch
	}

	c.unlocked = key
	c.unlockedWith = passphrase
	return key, nil
}
