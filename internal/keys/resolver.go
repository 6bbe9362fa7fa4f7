// Package keys locates private and public key material.
//
// Each half is resolved on its own through a fixed chain, first success wins:
//
//  1. the remote store, when a provider declares a key path
//  2. a local file named in the document's configuration
//  3. environment text (base64 is detected and decoded)
//
// A failing step is reported as a warning and the chain moves on. When
// nothing yields key material the resolution is empty, which is a warning,
// not an error: documents without secure entries need no keys.
package keys

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	logger "github.com/PolarWolf314/envseal/internal/logging"
)

// Kind selects the private or public half.
type Kind int

const (
	Private Kind = iota
	Public
)

func (k Kind) String() string {
	if k == Private {
		return "private"
	}
	return "public"
}

// RemoteLoader fetches key material by path from a remote key service.
type RemoteLoader interface {
	LoadKey(ctx context.Context, path string) (string, error)
}

// Paths holds one value per Kind.
type Paths struct {
	Private string
	Public  string
}

// For returns the value for k.
func (p Paths) For(k Kind) string {
	if k == Private {
		return p.Private
	}
	return p.Public
}

// Resolver tries each configured source in order.
type Resolver struct {
	// Explicit holds key text handed to the command directly, such as a key
	// piped on stdin. It is tried before every other source.
	Explicit Paths

	// Remote and RemotePaths are used together; either may be empty.
	Remote      RemoteLoader
	RemotePaths Paths

	// Local paths are relative to BaseDir unless absolute.
	Local   Paths
	BaseDir string

	// Env holds key text taken from the environment.
	Env Paths

	Log logger.Logger
}

// Resolution is the outcome of resolving one half.
type Resolution struct {
	Kind     Kind
	Material string

	// Source names where the material came from, empty when not found.
	Source   string
	Warnings []error
}

// Found reports whether any source produced key material.
func (r Resolution) Found() bool {
	return r.Material != ""
}

// Material is the outcome for both halves.
type Material struct {
	Private Resolution
	Public  Resolution
}

// Warnings returns the warnings of both halves.
func (m Material) Warnings() []error {
	return append(append([]error{}, m.Private.Warnings...), m.Public.Warnings...)
}

var errNotConfigured = errors.New("source not configured")

type source struct {
	name string
	load func(ctx context.Context, kind Kind) (string, error)
}

// Resolve walks the chain for kind. Sources are tried one at a time.
func (r *Resolver) Resolve(ctx context.Context, kind Kind) Resolution {
	res := Resolution{Kind: kind}

	for _, src := range r.sources() {
		material, err := src.load(ctx, kind)
		if errors.Is(err, errNotConfigured) {
			continue
		}
		if err != nil {
			w := kerrors.Warning{Err: fmt.Errorf("%s: %s key: %w", src.name, kind, err)}
			r.Log.Debugf("Key source %s failed: %v", src.name, err)
			res.Warnings = append(res.Warnings, w)
			continue
		}
		r.Log.Debugf("Resolved %s key from %s", kind, src.name)
		res.Material = material
		res.Source = src.name
		return res
	}

	res.Warnings = append(res.Warnings, kerrors.Warnf(kerrors.ErrKeyNotResolved, "no %s key defined", kind))
	return res
}

// ResolveAll resolves the private and public halves.
func (r *Resolver) ResolveAll(ctx context.Context) Material {
	return Material{
		Private: r.Resolve(ctx, Private),
		Public:  r.Resolve(ctx, Public),
	}
}

func (r *Resolver) sources() []source {
	return []source{
		{name: "explicit", load: r.loadExplicit},
		{name: "remote", load: r.loadRemote},
		{name: "file", load: r.loadFile},
		{name: "environment", load: r.loadEnv},
	}
}

func (r *Resolver) loadExplicit(_ context.Context, kind Kind) (string, error) {
	value := r.Explicit.For(kind)
	if strings.TrimSpace(value) == "" {
		return "", errNotConfigured
	}
	return value, nil
}

func (r *Resolver) loadRemote(ctx context.Context, kind Kind) (string, error) {
	path := r.RemotePaths.For(kind)
	if path == "" || r.Remote == nil {
		return "", errNotConfigured
	}
	material, err := r.Remote.LoadKey(ctx, path)
	if err != nil {
		return "", fmt.Errorf("path defined but fetching %s failed: %w", path, err)
	}
	if strings.TrimSpace(material) == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return material, nil
}

func (r *Resolver) loadFile(_ context.Context, kind Kind) (string, error) {
	path := r.Local.For(kind)
	if path == "" {
		return "", errNotConfigured
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not UTF-8 text", path)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return string(data), nil
}

func (r *Resolver) loadEnv(_ context.Context, kind Kind) (string, error) {
	value := r.Env.For(kind)
	if strings.TrimSpace(value) == "" {
		return "", errNotConfigured
	}
	return DecodeEnvValue(value), nil
}

// DecodeEnvValue returns the decoded text when value is base64 encoded UTF-8,
// and value unchanged otherwise.
func DecodeEnvValue(value string) string {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil || len(decoded) == 0 || !utf8.Valid(decoded) {
		return value
	}
	return string(decoded)
}
