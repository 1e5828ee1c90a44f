// Package fwmap maintains a catalog of firmware releases for networked
// camera and recorder devices.
//
// The catalog is fed by a site crawl export, manual entries, a local
// directory of downloaded archives and a GitHub releases feed. A Client
// loads the persisted catalog, reconciles it against those sources and
// writes it back.
package fwmap

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agentstation/fwmap/internal/sources/directory"
	"github.com/agentstation/fwmap/internal/sources/releases"
	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/reconciler"
	"github.com/agentstation/fwmap/pkg/report"
	"github.com/agentstation/fwmap/pkg/sources"
)

// Client manages one persisted firmware catalog.
type Client interface {
	// State returns the in-memory catalog.
	State() *catalogs.State

	// Sync runs release ingest, directory ingest and cleanup, then saves.
	Sync(ctx context.Context, opts ...SyncOption) (*reconciler.Result, error)

	// Import ingests a crawl export file, then saves.
	Import(ctx context.Context, path string) (*reconciler.Result, error)

	// Add stores one manual record, then saves.
	Add(ctx context.Context, entry reconciler.ManualEntry) (catalogs.Firmware, bool, error)

	// Save writes the catalog documents.
	Save(ctx context.Context) error

	// Status returns the last persisted run status.
	Status(ctx context.Context) catalogs.Status

	// Report renders the Markdown README to w.
	Report(w io.Writer, opts ...report.Option) error

	// WriteReport renders the README into the data directory.
	WriteReport(opts ...report.Option) error

	// OnFirmwareAdded registers a callback for records created by a run.
	OnFirmwareAdded(FirmwareAddedHook)

	// OnFirmwareRemoved registers a callback for records pruned by a run.
	OnFirmwareRemoved(FirmwareRemovedHook)
}

var _ Client = (*client)(nil)

type client struct {
	mu     sync.Mutex
	config *config
	store  *catalogs.Store
	state  *catalogs.State
	hooks  *hooks

	releases  sources.ReleaseHost
	directory sources.ArtifactDir
}

// New loads the catalog from the data directory and wires the configured
// sources.
func New(ctx context.Context, opts ...Option) (Client, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	c := &client{
		config: cfg,
		store:  catalogs.NewStore(cfg.fs, cfg.dataDir),
		hooks:  newHooks(),
	}

	switch {
	case cfg.releaseHost != nil:
		c.releases = cfg.releaseHost
	case cfg.releaseRepo != "":
		rc, err := releases.New(cfg.releaseRepo, cfg.releaseOptions()...)
		if err != nil {
			return nil, err
		}
		c.releases = rc
	}

	if cfg.firmwareDir != "" {
		c.directory = directory.New(cfg.fs, cfg.firmwareDir)
	}

	c.state = c.store.Load(c.scope(ctx))
	return c, nil
}

func (c *client) State() *catalogs.State {
	return c.state
}

func (c *client) Status(ctx context.Context) catalogs.Status {
	return c.store.LoadStatus(c.scope(ctx))
}
