package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"golang.org/x/crypto/ssh"
)

// DefaultKeyBits is the RSA modulus size for generated key pairs.
const DefaultKeyBits = 4096

const keyComment = "envseal"

var (
	// ErrPassphraseRequired is returned when a protected private key is parsed without a passphrase.
	ErrPassphraseRequired = errors.New("private key is passphrase protected")

	// ErrIncorrectPassphrase is returned when the passphrase does not unlock the private key.
	ErrIncorrectPassphrase = errors.New("incorrect passphrase for private key")
)

// KeyPair holds PEM encoded key material.
type KeyPair struct {
	// PrivateKey is an OpenSSH private key block, encrypted when a passphrase was given.
	PrivateKey string

	// PublicKey is a PKIX "PUBLIC KEY" block.
	PublicKey string
}

type keyOptions struct {
	bits int
}

// KeyOption customizes key pair generation.
type KeyOption func(*keyOptions)

// WithKeyBits overrides DefaultKeyBits.
func WithKeyBits(bits int) KeyOption {
	return func(o *keyOptions) {
		o.bits = bits
	}
}

// GenerateKeyPair creates a new RSA key pair whose private half is protected by passphrase.
// An empty passphrase produces an unprotected private key; callers are expected to warn.
func GenerateKeyPair(passphrase string, opts ...KeyOption) (KeyPair, error) {
	o := keyOptions{bits: DefaultKeyBits}
	for _, opt := range opts {
		opt(&o)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, o.bits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	var privPem *pem.Block
	if passphrase == "" {
		privPem, err = ssh.MarshalPrivateKey(privateKey, keyComment)
	} else {
		privPem, err = ssh.MarshalPrivateKeyWithPassphrase(privateKey, keyComment, []byte(passphrase))
	}
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to marshal private key: %w", err)
	}

	pubASN1, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to marshal public key: %w", err)
	}
	pubPem := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubASN1,
	}

	return KeyPair{
		PrivateKey: string(pem.EncodeToMemory(privPem)),
		PublicKey:  string(pem.EncodeToMemory(pubPem)),
	}, nil
}

// HasKeyPair reports whether privateKey and publicKey belong to the same RSA key.
// It never needs the passphrase: OpenSSH keys carry their public half in clear.
func HasKeyPair(privateKey, publicKey string) bool {
	pub, err := ParsePublicKey([]byte(publicKey))
	if err != nil {
		return false
	}
	derived, err := publicHalf([]byte(privateKey))
	if err != nil {
		return false
	}
	return pub.Equal(derived)
}

// ParsePrivateKey parses an OpenSSH, PKCS#1 or PKCS#8 RSA private key,
// unlocking it with passphrase when it is protected.
func ParsePrivateKey(data []byte, passphrase string) (*rsa.PrivateKey, error) {
	raw, err := ssh.ParseRawPrivateKey(data)

	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		if passphrase == "" {
			return nil, ErrPassphraseRequired
		}
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(data, []byte(passphrase))
		if errors.Is(err, x509.IncorrectPasswordError) {
			return nil, ErrIncorrectPassphrase
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPrivateKey, err)
	}

	switch key := raw.(type) {
	case *rsa.PrivateKey:
		return key, nil
	default:
		return nil, fmt.Errorf("%w: not an RSA private key (%T)", kerrors.ErrInvalidPrivateKey, raw)
	}
}

// ParsePublicKey parses a PKIX or PKCS#1 PEM block, or an authorized_keys line.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return parseAuthorizedKey(data)
	}

	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPublicKey, err)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA public key", kerrors.ErrInvalidPublicKey)
		}
		return rsaPub, nil
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPublicKey, err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", kerrors.ErrInvalidPublicKey, block.Type)
	}
}

func parseAuthorizedKey(data []byte) (*rsa.PublicKey, error) {
	sshPub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPublicKey, err)
	}
	return rsaFromSSH(sshPub)
}

func rsaFromSSH(sshPub ssh.PublicKey) (*rsa.PublicKey, error) {
	cryptoPub, ok := sshPub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type %s", kerrors.ErrInvalidPublicKey, sshPub.Type())
	}
	rsaPub, ok := cryptoPub.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", kerrors.ErrInvalidPublicKey)
	}
	return rsaPub, nil
}

// publicHalf recovers the public key from a private key without unlocking it when possible.
func publicHalf(data []byte) (*rsa.PublicKey, error) {
	raw, err := ssh.ParseRawPrivateKey(data)
	if err == nil {
		key, ok := raw.(*rsa.PrivateKey)
		if !ok {
			return nil, kerrors.ErrInvalidPrivateKey
		}
		return &key.PublicKey, nil
	}

	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && missing.PublicKey != nil {
		return rsaFromSSH(missing.PublicKey)
	}
	return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPrivateKey, err)
}
