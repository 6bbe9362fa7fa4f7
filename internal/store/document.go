package store

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"gopkg.in/yaml.v3"
)

// EntryType is the parameter type of an entry.
type EntryType string

const (
	TypeString       EntryType = "String"
	TypeSecureString EntryType = "SecureString"

	// TypeStringList is stored and synced like TypeString; it is never encrypted.
	TypeStringList EntryType = "StringList"
)

// Secure reports whether values of this type are encrypted at rest.
func (t EntryType) Secure() bool {
	return t == TypeSecureString
}

func (t *EntryType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch EntryType(s) {
	case "", TypeString, TypeSecureString, TypeStringList:
		*t = EntryType(s)
		return nil
	default:
		return fmt.Errorf("line %d: unknown entry type %q", node.Line, s)
	}
}

// Entry is a single named value.
type Entry struct {
	Name  string    `yaml:"name"`
	Value string    `yaml:"value"`
	Type  EntryType `yaml:"type,omitempty"`

	// Overwrite is nil when the document does not set it.
	Overwrite *bool `yaml:"overwrite,omitempty"`

	// Extra keeps keys envseal does not interpret so a save writes them back.
	Extra map[string]any `yaml:",inline"`
}

// Clone returns a copy of e that shares no memory with it.
func (e Entry) Clone() Entry {
	if e.Overwrite != nil {
		v := *e.Overwrite
		e.Overwrite = &v
	}
	e.Extra = maps.Clone(e.Extra)
	return e
}

// SyncReady reports whether the entry is pushed to the remote store: it needs
// a name, a type and overwrite set to true.
func (e Entry) SyncReady() bool {
	return e.Name != "" && e.Type != "" && e.Overwrite != nil && *e.Overwrite
}

// Variable is a shared variable name; documents may write it as a string or a number.
type Variable string

func (v *Variable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: variable must be a string or a number", node.Line)
	}
	*v = Variable(node.Value)
	return nil
}

func (v Variable) MarshalYAML() (any, error) {
	if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
		return n, nil
	}
	return string(v), nil
}

// ProviderConfig configures a remote parameter store.
type ProviderConfig struct {
	Regions []string `yaml:"regions"`

	// RemoteKeyRegion is where key material is fetched from.
	RemoteKeyRegion string `yaml:"awsRegion,omitempty"`
	PrivateKeyPath  string `yaml:"privateKeyPath,omitempty"`
	PublicKeyPath   string `yaml:"publicKeyPath,omitempty"`

	Extra map[string]any `yaml:",inline"`
}

// HasKeyPaths reports whether the provider declares remote key material.
func (p *ProviderConfig) HasKeyPaths() bool {
	return p != nil && (p.PrivateKeyPath != "" || p.PublicKeyPath != "")
}

// Configuration is the _configurations block of a document.
type Configuration struct {
	Variables      []Variable `yaml:"variables,omitempty"`
	PrivateKeyPath string     `yaml:"privateKeyPath,omitempty"`
	PublicKeyPath  string     `yaml:"publicKeyPath,omitempty"`

	AWS *ProviderConfig `yaml:"aws,omitempty"`

	// Extra holds blocks of providers envseal cannot sync to and any other
	// unknown keys. They are written back unchanged.
	Extra map[string]any `yaml:",inline"`
}

// Provider returns the configuration block for p, if present.
func (c Configuration) Provider(p Provider) (*ProviderConfig, bool) {
	switch p {
	case ProviderAWS:
		return c.AWS, c.AWS != nil
	default:
		return nil, false
	}
}

// KeyProvider returns the first provider that declares remote key paths.
func (c Configuration) KeyProvider() (Provider, *ProviderConfig, bool) {
	for _, p := range Providers() {
		if cfg, ok := c.Provider(p); ok && cfg.HasKeyPaths() {
			return p, cfg, true
		}
	}
	return "", nil, false
}

// VariableNames returns the shared variables as strings.
func (c Configuration) VariableNames() []string {
	names := make([]string, len(c.Variables))
	for i, v := range c.Variables {
		names[i] = string(v)
	}
	return names
}

// Document is the persisted aggregate.
type Document struct {
	Configuration Configuration `yaml:"_configurations,omitempty"`
	Entries       []Entry       `yaml:"_values"`

	Extra map[string]any `yaml:",inline"`
}

// Decode parses a YAML document.
func Decode(data []byte) (*Document, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: document is empty", kerrors.ErrCorruptDocument)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrCorruptDocument, err)
	}
	return &doc, nil
}

// Encode serializes doc as YAML with two space indentation.
func Encode(doc *Document) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
