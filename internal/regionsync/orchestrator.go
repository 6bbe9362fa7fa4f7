// Package regionsync fans sync-ready entries out to every configured region.
package regionsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/PolarWolf314/envseal/internal/store"
	"golang.org/x/sync/errgroup"
)

// Client pushes entries to one region of a remote store.
type Client interface {
	Sync(ctx context.Context, entries []store.Entry) error
}

// ClientFactory builds a client bound to a region and the shared variables.
type ClientFactory func(ctx context.Context, region string, variables []string) (Client, error)

// JoinMode decides how region outcomes are combined.
type JoinMode int

const (
	// FailFast reports the first region failure. Every region still runs to
	// completion; the other outcomes are discarded.
	FailFast JoinMode = iota

	// CollectAll reports every region failure joined together.
	CollectAll
)

// Orchestrator runs one client per region concurrently.
type Orchestrator struct {
	NewClient ClientFactory
	Mode      JoinMode
	Log       logger.Logger
}

// Result describes a completed fan-out.
type Result struct {
	Regions []string
	Entries int
}

// Run syncs entries to every region in cfg. Each region receives its own copy
// of entries. Run returns only when every region call has returned.
func (o *Orchestrator) Run(ctx context.Context, cfg store.ProviderConfig, variables []string, entries []store.Entry) (*Result, error) {
	result := &Result{Regions: append([]string(nil), cfg.Regions...), Entries: len(entries)}
	if len(cfg.Regions) == 0 {
		o.Log.Warnf("No regions configured, nothing to sync")
		return result, nil
	}

	if o.Mode == CollectAll {
		return result, o.collectAll(ctx, cfg.Regions, variables, entries)
	}

	// No derived context: a failing region must not cancel its siblings.
	var g errgroup.Group
	for _, region := range cfg.Regions {
		region := region
		batch := copyEntries(entries)
		g.Go(func() error {
			return o.syncRegion(ctx, region, variables, batch)
		})
	}
	return result, g.Wait()
}

func (o *Orchestrator) collectAll(ctx context.Context, regions, variables []string, entries []store.Entry) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, region := range regions {
		region := region
		batch := copyEntries(entries)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := o.syncRegion(ctx, region, variables, batch); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (o *Orchestrator) syncRegion(ctx context.Context, region string, variables []string, entries []store.Entry) error {
	o.Log.Debugf("Syncing %d entries to %s", len(entries), region)

	client, err := o.NewClient(ctx, region, append([]string(nil), variables...))
	if err != nil {
		return &kerrors.SyncError{Region: region, Err: fmt.Errorf("creating client: %w", err)}
	}
	if err := client.Sync(ctx, entries); err != nil {
		return &kerrors.SyncError{Region: region, Err: err}
	}

	o.Log.Infof("Synced %d entries to %s", len(entries), region)
	return nil
}

func copyEntries(entries []store.Entry) []store.Entry {
	out := make([]store.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
