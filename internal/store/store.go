package store

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/PolarWolf314/envseal/internal/placeholders"
	"github.com/PolarWolf314/envseal/internal/secrets"
)

// Store owns a secrets document for the lifetime of a command.
// The in-memory document changes only through EncryptValues and DecryptValues
// and reaches disk only through Save.
type Store struct {
	path   string
	doc    *Document
	cipher *secrets.Cipher
	log    logger.Logger

	// resolved is set once entries hold decrypted values.
	resolved bool
}

// Open loads the document at path.
func Open(path string, log logger.Logger) (*Store, error) {
	s := &Store{path: filepath.Clean(path), log: log}
	if _, err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Dir returns the directory holding the document. Relative key paths resolve against it.
func (s *Store) Dir() string {
	return filepath.Dir(s.path)
}

// Load reads and parses the document, replacing the in-memory copy.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets document %s: %w", s.path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.path, err)
	}

	s.doc = doc
	s.resolved = false
	s.log.Debugf("Loaded %d entries from %s", len(doc.Entries), s.path)
	return doc, nil
}

// Save writes the document back to its path, replacing the file atomically.
// It fails with ErrResolvedDocument after DecryptValues until EncryptValues runs again.
func (s *Store) Save() error {
	if s.resolved {
		return kerrors.ErrResolvedDocument
	}

	data, err := Encode(s.doc)
	if err != nil {
		return fmt.Errorf("failed to encode secrets document: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir(), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	s.log.Debugf("Saved %d entries to %s", len(s.doc.Entries), s.path)
	return nil
}

// Configuration returns the document's configuration block.
func (s *Store) Configuration() Configuration {
	return s.doc.Configuration
}

// Entries returns a copy of the current entries.
func (s *Store) Entries() []Entry {
	return cloneEntries(s.doc.Entries)
}

// Variables returns the shared variables used to name remote parameters.
func (s *Store) Variables() []string {
	return s.doc.Configuration.VariableNames()
}

// KeyValues maps entry names to their values. Unnamed entries are skipped.
func KeyValues(entries []Entry) map[string]string {
	kv := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			kv[e.Name] = e.Value
		}
	}
	return kv
}

// HasSecureEntries reports whether any entry is a SecureString.
func (s *Store) HasSecureEntries() bool {
	for _, e := range s.doc.Entries {
		if e.Type.Secure() {
			return true
		}
	}
	return false
}

// GetProviderConfig returns the configuration for p or ErrUnknownProvider.
func (s *Store) GetProviderConfig(p Provider) (ProviderConfig, error) {
	cfg, ok := s.doc.Configuration.Provider(p)
	if !ok {
		return ProviderConfig{}, fmt.Errorf("%w: %q is not configured in %s", kerrors.ErrUnknownProvider, p, s.path)
	}
	return *cfg, nil
}

// SetCipher sets the cipher used by EncryptValues and DecryptValues. A nil
// cipher disables both, leaving values as they are.
func (s *Store) SetCipher(c *secrets.Cipher) {
	s.cipher = c
}

// EncryptValues encrypts every SecureString entry that lacks the marker.
// It returns how many entries were encrypted. Without a public key it does nothing.
func (s *Store) EncryptValues() (int, error) {
	if !s.cipher.CanEncrypt() {
		if s.hasPlaintextSecrets() {
			s.log.Warnf("No public key available, secure entries in %s stay unencrypted", s.path)
		}
		return 0, nil
	}

	entries := cloneEntries(s.doc.Entries)
	count := 0
	for i, e := range entries {
		if !e.Type.Secure() || secrets.IsEncrypted(e.Value) {
			continue
		}
		sealed, err := s.cipher.EncryptValue(e.Value)
		if err != nil {
			return 0, fmt.Errorf("encrypting %s: %w", e.Name, err)
		}
		entries[i].Value = sealed
		count++
	}

	s.doc.Entries = entries
	s.resolved = false
	s.log.Debugf("Encrypted %d entries", count)
	return count, nil
}

// DecryptValues decrypts every marked SecureString entry, then applies
// overrides and defaults to every entry. Any decrypt failure aborts the
// call and leaves the document untouched.
func (s *Store) DecryptValues(passphrase string, overrides map[string]string) ([]Entry, error) {
	entries := cloneEntries(s.doc.Entries)

	if s.cipher.CanDecrypt() {
		for i, e := range entries {
			if !e.Type.Secure() || !secrets.IsEncrypted(e.Value) {
				continue
			}
			plain, err := s.cipher.DecryptValue(e.Value, passphrase)
			if err != nil {
				return nil, fmt.Errorf("decrypting %s: %w", e.Name, err)
			}
			entries[i].Value = plain
		}
	} else if s.hasMarkedSecrets() {
		s.log.Warnf("No private key available, secure entries in %s stay encrypted", s.path)
	}

	for i, e := range entries {
		tmpl := placeholders.Parse(e.Value)
		if missing := tmpl.Unresolved(overrides); len(missing) > 0 {
			s.log.Debugf("Entry %s has unresolved placeholders: %v", e.Name, missing)
		}
		entries[i].Value = tmpl.Render(overrides)
	}

	s.doc.Entries = entries
	s.resolved = true
	return cloneEntries(entries), nil
}

// GetSyncReady returns copies of the entries the remote store can accept.
func (s *Store) GetSyncReady() []Entry {
	return SyncReady(s.doc.Entries)
}

// SyncReady keeps entries with a name, a type and overwrite set to true.
// Other entries are dropped silently.
func SyncReady(entries []Entry) []Entry {
	ready := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.SyncReady() {
			ready = append(ready, e.Clone())
		}
	}
	return ready
}

func (s *Store) hasPlaintextSecrets() bool {
	for _, e := range s.doc.Entries {
		if e.Type.Secure() && !secrets.IsEncrypted(e.Value) {
			return true
		}
	}
	return false
}

func (s *Store) hasMarkedSecrets() bool {
	for _, e := range s.doc.Entries {
		if e.Type.Secure() && secrets.IsEncrypted(e.Value) {
			return true
		}
	}
	return false
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
