package workflows

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	"github.com/PolarWolf314/envseal/internal/keys"
	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/PolarWolf314/envseal/internal/secrets"
	"github.com/PolarWolf314/envseal/internal/ssm"
	"github.com/PolarWolf314/envseal/internal/store"
)

// KeyOptions describes where key material may come from besides the document.
type KeyOptions struct {
	// PrivateKey and PublicKey hold key text from the environment, raw or base64.
	PrivateKey string
	PublicKey  string

	// StdinPrivateKey is a private key piped to the command. It takes
	// precedence over the document's key sources.
	StdinPrivateKey string

	// AWSProfile selects the shared AWS profile used for remote key loading.
	AWSProfile string

	// RemoteAPI builds the parameter store client for remote key loading.
	// Defaults to ssm.LoadAPI.
	RemoteAPI func(ctx context.Context, region string) (ssm.API, error)
}

func openStore(fileName string, log logger.Logger) (*store.Store, error) {
	if fileName == "" {
		return nil, fmt.Errorf("%w: secrets file name", kerrors.ErrMissingInput)
	}
	return store.Open(fileName, log)
}

// loadCipher resolves key material for s and builds a cipher. Problems are
// returned as warnings and leave the cipher nil, which turns crypto into a no-op.
func loadCipher(ctx context.Context, s *store.Store, opts KeyOptions, log logger.Logger) (*secrets.Cipher, []error) {
	if !s.HasSecureEntries() {
		log.Debugf("No secure entries in %s, skipping key resolution", s.Path())
		return nil, nil
	}

	cfg := s.Configuration()
	resolver := &keys.Resolver{
		Explicit: keys.Paths{Private: opts.StdinPrivateKey},
		Local:    keys.Paths{Private: cfg.PrivateKeyPath, Public: cfg.PublicKeyPath},
		BaseDir:  s.Dir(),
		Env:      keys.Paths{Private: opts.PrivateKey, Public: opts.PublicKey},
		Log:      log,
	}

	var warnings []error
	if provider, pc, ok := cfg.KeyProvider(); ok {
		switch provider {
		case store.ProviderAWS:
			loader, err := awsKeyLoader(ctx, pc, opts)
			if err != nil {
				warnings = append(warnings, kerrors.Warning{Err: fmt.Errorf("aws.ssm: %w", err)})
				break
			}
			resolver.Remote = loader
			resolver.RemotePaths = keys.Paths{Private: pc.PrivateKeyPath, Public: pc.PublicKeyPath}
		}
	}

	material := resolver.ResolveAll(ctx)
	warnings = append(warnings, material.Warnings()...)

	privateKey, publicKey := material.Private.Material, material.Public.Material
	if privateKey == "" && publicKey == "" {
		return nil, warnings
	}
	if privateKey != "" && publicKey != "" && !secrets.HasKeyPair(privateKey, publicKey) {
		warnings = append(warnings, kerrors.Warnf(kerrors.ErrKeyPairMismatch,
			"private key from %s and public key from %s", material.Private.Source, material.Public.Source))
		return nil, warnings
	}

	cipher, err := secrets.NewCipher(privateKey, publicKey)
	if err != nil {
		warnings = append(warnings, kerrors.Warning{Err: err})
		return nil, warnings
	}
	return cipher, warnings
}

func awsKeyLoader(ctx context.Context, pc *store.ProviderConfig, opts KeyOptions) (*ssm.KeyLoader, error) {
	region := pc.RemoteKeyRegion
	if region == "" && len(pc.Regions) > 0 {
		region = pc.Regions[0]
	}
	if region == "" {
		return nil, fmt.Errorf("key paths defined but no region to load them from")
	}

	newAPI := opts.RemoteAPI
	if newAPI == nil {
		newAPI = func(ctx context.Context, region string) (ssm.API, error) {
			return ssm.LoadAPI(ctx, ssm.Options{Profile: opts.AWSProfile}, region)
		}
	}

	api, err := newAPI(ctx, region)
	if err != nil {
		return nil, err
	}
	return ssm.NewKeyLoader(api), nil
}
