package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/PolarWolf314/envseal/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassphrase = "s3cret"

var (
	pairOnce sync.Once
	pair     secrets.KeyPair
	pairErr  error
)

func testCipher(t *testing.T) *secrets.Cipher {
	t.Helper()
	pairOnce.Do(func() {
		pair, pairErr = secrets.GenerateKeyPair(testPassphrase, secrets.WithKeyBits(2048))
	})
	require.NoError(t, pairErr)

	c, err := secrets.NewCipher(pair.PrivateKey, pair.PublicKey)
	require.NoError(t, err)
	return c
}

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func openStore(t *testing.T, content string) *Store {
	t.Helper()
	s, err := Open(writeDocument(t, content), logger.Logger{Err: &strings.Builder{}})
	require.NoError(t, err)
	return s
}

const sampleDocument = `_configurations:
  variables: [myapp, 2]
  privateKeyPath: keys/app.key
  aws:
    regions: [us-east-1, eu-west-1]
    awsRegion: us-east-1
    privateKeyPath: /myapp/private
_values:
  - name: DB_PASS
    value: hunter2
    type: SecureString
    overwrite: true
  - name: PORT
    value: ${PORT:-8080}
    type: String
    overwrite: true
  - name: DRAFT
    value: x
    type: String
`

func TestLoad_ParsesDocument(t *testing.T) {
	s := openStore(t, sampleDocument)

	cfg := s.Configuration()
	assert.Equal(t, []string{"myapp", "2"}, s.Variables())
	assert.Equal(t, "keys/app.key", cfg.PrivateKeyPath)
	require.NotNil(t, cfg.AWS)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.AWS.Regions)
	assert.Equal(t, "us-east-1", cfg.AWS.RemoteKeyRegion)

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "DB_PASS", entries[0].Name)
	assert.Equal(t, TypeSecureString, entries[0].Type)
	require.NotNil(t, entries[0].Overwrite)
	assert.True(t, *entries[0].Overwrite)
	assert.Nil(t, entries[2].Overwrite)
	assert.True(t, s.HasSecureEntries())
}

func TestLoad_NumericValue(t *testing.T) {
	s := openStore(t, "_values:\n  - name: PORT\n    value: 8080\n    type: String\n")
	assert.Equal(t, "8080", s.Entries()[0].Value)
}

func TestLoad_CorruptDocument(t *testing.T) {
	docs := map[string]string{
		"invalid yaml":   "_values: [\n",
		"wrong shape":    "_values: just a string\n",
		"unknown type":   "_values:\n  - name: A\n    value: b\n    type: Bogus\n",
		"empty document": "   \n",
		"map variable":   "_configurations:\n  variables: [{a: b}]\n",
	}

	for name, content := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := Open(writeDocument(t, content), logger.Logger{})
			assert.ErrorIs(t, err, kerrors.ErrCorruptDocument)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.yml"), logger.Logger{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHasSecureEntries(t *testing.T) {
	s := openStore(t, "_values:\n  - name: A\n    value: b\n    type: String\n")
	assert.False(t, s.HasSecureEntries())

	empty := openStore(t, "_configurations:\n  variables: [a]\n")
	assert.False(t, empty.HasSecureEntries())
}

func TestGetProviderConfig(t *testing.T) {
	s := openStore(t, sampleDocument)

	cfg, err := s.GetProviderConfig(ProviderAWS)
	require.NoError(t, err)
	assert.Equal(t, "/myapp/private", cfg.PrivateKeyPath)

	bare := openStore(t, "_values: []\n")
	_, err = bare.GetProviderConfig(ProviderAWS)
	assert.ErrorIs(t, err, kerrors.ErrUnknownProvider)

	_, err = ParseProvider("gcp")
	assert.ErrorIs(t, err, kerrors.ErrUnknownProvider)

	p, err := ParseProvider(" AWS ")
	require.NoError(t, err)
	assert.Equal(t, ProviderAWS, p)
}

func TestEncryptValues_Idempotent(t *testing.T) {
	s := openStore(t, sampleDocument)
	s.SetCipher(testCipher(t))

	n, err := s.EncryptValues()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	first := s.Entries()
	assert.True(t, strings.HasPrefix(first[0].Value, secrets.Marker))
	assert.Equal(t, "${PORT:-8080}", first[1].Value, "non-secure entries are stored literally")

	n, err = s.EncryptValues()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, first, s.Entries())
}

func TestEncryptValues_NoCipher(t *testing.T) {
	s := openStore(t, sampleDocument)

	n, err := s.EncryptValues()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "hunter2", s.Entries()[0].Value)
}

func TestSaveAndDecrypt_EndToEnd(t *testing.T) {
	s := openStore(t, sampleDocument)
	s.SetCipher(testCipher(t))

	_, err := s.EncryptValues()
	require.NoError(t, err)
	require.NoError(t, s.Save())

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.Contains(t, string(raw), secrets.Marker)
	assert.Contains(t, string(raw), "- 2\n", "numeric variables stay numeric")

	reopened, err := Open(s.Path(), logger.Logger{})
	require.NoError(t, err)
	reopened.SetCipher(testCipher(t))

	entries, err := reopened.DecryptValues(testPassphrase, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "DB_PASS", entries[0].Name)
	assert.Equal(t, "hunter2", entries[0].Value)
	assert.Equal(t, "8080", entries[1].Value)
	assert.Equal(t, "DRAFT", entries[2].Name, "order is preserved")
}

func TestSave_KeepsUnknownKeys(t *testing.T) {
	s := openStore(t, `_configurations:
  variables: [myapp]
  aws:
    regions: [us-east-1]
    kmsKeyId: alias/app
  gcp:
    project: demo
_values:
  - name: DB_PASS
    value: hunter2
    type: SecureString
    overwrite: true
    description: primary db password
owner: platform
`)
	s.SetCipher(testCipher(t))

	_, err := s.EncryptValues()
	require.NoError(t, err)
	require.NoError(t, s.Save())

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	reopened, err := Open(s.Path(), logger.Logger{})
	require.NoError(t, err)

	cfg := reopened.Configuration()
	assert.Equal(t, map[string]any{"project": "demo"}, cfg.Extra["gcp"])
	require.NotNil(t, cfg.AWS)
	assert.Equal(t, "alias/app", cfg.AWS.Extra["kmsKeyId"])

	entries := reopened.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "primary db password", entries[0].Extra["description"])
	assert.True(t, secrets.IsEncrypted(entries[0].Value))

	data, err := Encode(&Document{Entries: entries})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "description:"), "extra keys are not duplicated")
}

func TestDecryptValues_Overrides(t *testing.T) {
	s := openStore(t, sampleDocument)

	entries, err := s.DecryptValues("", map[string]string{"PORT": "9090"})
	require.NoError(t, err)
	assert.Equal(t, "9090", entries[1].Value)
	assert.Equal(t, "hunter2", entries[0].Value, "unmarked secure values pass through")
}

func TestDecryptValues_WrongPassphraseAborts(t *testing.T) {
	s := openStore(t, sampleDocument)
	s.SetCipher(testCipher(t))
	_, err := s.EncryptValues()
	require.NoError(t, err)
	before := s.Entries()

	entries, err := s.DecryptValues("wrong", nil)
	assert.ErrorIs(t, err, kerrors.ErrDecryption)
	assert.Nil(t, entries)
	assert.Equal(t, before, s.Entries(), "a failed decrypt leaves the document untouched")
	assert.NoError(t, s.Save())
}

func TestDecryptValues_NoCipherKeepsCiphertext(t *testing.T) {
	s := openStore(t, sampleDocument)
	s.SetCipher(testCipher(t))
	_, err := s.EncryptValues()
	require.NoError(t, err)

	s.SetCipher(nil)
	entries, err := s.DecryptValues(testPassphrase, nil)
	require.NoError(t, err)
	assert.True(t, secrets.IsEncrypted(entries[0].Value))
	assert.Equal(t, "8080", entries[1].Value)
}

func TestSave_RefusesResolvedDocument(t *testing.T) {
	s := openStore(t, sampleDocument)
	s.SetCipher(testCipher(t))

	_, err := s.DecryptValues(testPassphrase, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Save(), kerrors.ErrResolvedDocument)

	_, err = s.EncryptValues()
	require.NoError(t, err)
	assert.NoError(t, s.Save())
}

func TestGetSyncReady(t *testing.T) {
	s := openStore(t, `_values:
  - name: A
    value: "1"
    type: String
  - name: B
    value: "2"
    type: String
    overwrite: true
  - name: C
    value: "3"
    type: String
    overwrite: false
  - value: "4"
    type: String
    overwrite: true
  - name: E
    value: "5"
    overwrite: true
`)

	ready := s.GetSyncReady()
	require.Len(t, ready, 1)
	assert.Equal(t, "B", ready[0].Name)

	*ready[0].Overwrite = false
	assert.True(t, *s.Entries()[1].Overwrite, "sync-ready entries are copies")
}

func TestGetSyncReady_OverwriteFalseIsNotSynced(t *testing.T) {
	s := openStore(t, `_values:
  - name: A
    value: "1"
    type: String
    overwrite: false
`)
	assert.Empty(t, s.GetSyncReady())
}

func TestKeyValues(t *testing.T) {
	s := openStore(t, sampleDocument)
	kv := KeyValues(append(s.Entries(), Entry{Value: "orphan"}))
	assert.Equal(t, "hunter2", kv["DB_PASS"])
	assert.Len(t, kv, 3)
}
