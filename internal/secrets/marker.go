package secrets

import (
	"encoding/base64"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
)

// Marker prefixes every encrypted value stored in a secrets document.
const Marker = "$enc:"

// IsEncrypted reports whether value carries the ciphertext marker.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Marker)
}

// EncryptValue returns Marker followed by the base64 ciphertext of value.
// Values that already carry the marker are returned unchanged.
func (c *Cipher) EncryptValue(value string) (string, error) {
	if IsEncrypted(value) {
		return value, nil
	}
	ciphertext, err := c.EncryptData([]byte(value))
	if err != nil {
		return "", err
	}
	return Marker + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptValue strips the marker from value and decrypts the remainder.
// Values without the marker are plaintext and are returned unchanged.
func (c *Cipher) DecryptValue(value, passphrase string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Marker))
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not valid base64: %v", kerrors.ErrDecryption, err)
	}
	plaintext, err := c.DecryptData(ciphertext, passphrase)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
