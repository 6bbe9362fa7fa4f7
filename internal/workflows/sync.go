package workflows

import (
	"context"

	"github.com/PolarWolf314/envseal/internal/audit"
	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/PolarWolf314/envseal/internal/regionsync"
	"github.com/PolarWolf314/envseal/internal/ssm"
	"github.com/PolarWolf314/envseal/internal/store"
)

// SyncOptions configures the sync workflow.
type SyncOptions struct {
	FileName   string
	Passphrase string
	Overrides  map[string]string

	// Provider names the remote store, "aws" by default.
	Provider string

	// Mode selects fail-fast (default) or collect-all error reporting.
	Mode regionsync.JoinMode

	// NewClient builds region clients. Defaults to the SSM client.
	NewClient regionsync.ClientFactory

	Keys     KeyOptions
	AuditLog bool
	Log      logger.Logger
}

// SyncResult contains the outcome of a sync.
type SyncResult struct {
	Document string
	Provider store.Provider
	Regions  []string
	Entries  int
	Warnings []error
}

// Sync decrypts a document and pushes its sync-ready entries to every
// region of the provider, one concurrent call per region.
//
// Returns ErrUnknownProvider before anything is decrypted or sent when the
// provider is not configured. Returns a *SyncError (matching ErrSync) when a
// region fails.
func Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	name := opts.Provider
	if name == "" {
		name = string(store.ProviderAWS)
	}
	provider, err := store.ParseProvider(name)
	if err != nil {
		return nil, err
	}

	s, err := openStore(opts.FileName, opts.Log)
	if err != nil {
		return nil, err
	}

	cfg, err := s.GetProviderConfig(provider)
	if err != nil {
		return nil, err
	}

	cipher, warnings := loadCipher(ctx, s, opts.Keys, opts.Log)
	s.SetCipher(cipher)

	if _, err := s.DecryptValues(opts.Passphrase, opts.Overrides); err != nil {
		return nil, err
	}
	entries := s.GetSyncReady()

	newClient := opts.NewClient
	if newClient == nil {
		newClient = defaultClientFactory(provider, opts)
	}

	orchestrator := &regionsync.Orchestrator{
		NewClient: newClient,
		Mode:      opts.Mode,
		Log:       opts.Log,
	}
	opts.Log.Infof("%s: starting sync of %d entries to %d regions", provider, len(entries), len(cfg.Regions))
	res, err := orchestrator.Run(ctx, cfg, s.Variables(), entries)

	if opts.AuditLog {
		entry := audit.New("sync")
		entry.Document = s.Path()
		entry.Provider = string(provider)
		entry.Regions = cfg.Regions
		entry.Entries = len(entries)
		entry.Failed = err != nil
		audit.Log(s.Dir(), entry)
	}

	if err != nil {
		return nil, err
	}

	return &SyncResult{
		Document: s.Path(),
		Provider: provider,
		Regions:  res.Regions,
		Entries:  res.Entries,
		Warnings: warnings,
	}, nil
}

func defaultClientFactory(provider store.Provider, opts SyncOptions) regionsync.ClientFactory {
	switch provider {
	case store.ProviderAWS:
		return func(ctx context.Context, region string, variables []string) (regionsync.Client, error) {
			client, err := ssm.New(ctx, ssm.Options{Profile: opts.Keys.AWSProfile, Log: opts.Log}, region, variables)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	default:
		return nil
	}
}
