package fwmap

import (
	"context"
	"time"

	"github.com/agentstation/fwmap/internal/sources/crawl"
	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/reconciler"
	"github.com/agentstation/fwmap/pkg/sources"
)

// SyncOptions controls a Sync call.
type SyncOptions struct {
	Timeout      time.Duration
	SkipReleases bool
}

// SyncOption configures a Sync call.
type SyncOption func(*SyncOptions)

// WithTimeout bounds the whole run.
func WithTimeout(d time.Duration) SyncOption {
	return func(o *SyncOptions) {
		o.Timeout = d
	}
}

// WithSkipReleases leaves the release host out of the run.
func WithSkipReleases(skip bool) SyncOption {
	return func(o *SyncOptions) {
		o.SkipReleases = skip
	}
}

// Sync reconciles the catalog against the release host and the firmware
// directory. Collaborator failures are recorded in the result and in
// status.json; only a failed save is returned as an error.
func (c *client) Sync(ctx context.Context, opts ...SyncOption) (*reconciler.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := &SyncOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ctx = c.scope(ctx)

	var releases sources.ReleaseHost
	if !options.SkipReleases {
		releases = c.releases
	}
	r, err := c.reconciler(releases, c.directory)
	if err != nil {
		return nil, err
	}

	before := snapshot(c.state)
	result := r.Run(ctx)
	return result, c.finish(ctx, before, result)
}

// Import ingests a crawl export. A missing or unreadable export is
// returned as an error and leaves the catalog untouched.
func (c *client) Import(ctx context.Context, path string) (*reconciler.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx = logging.WithSource(c.scope(ctx), catalogs.SourceLive.String())

	var export sources.FragmentSource = crawl.NewExport(c.config.fs, path)
	fragments, err := export.Fragments(ctx)
	if err != nil {
		return nil, errors.WrapCollaborator(sources.CrawlID.String(), "read export", err)
	}

	r, err := c.reconciler(nil, c.directory)
	if err != nil {
		return nil, err
	}

	before := snapshot(c.state)
	result := reconciler.NewResult()
	result.Record(r.IngestLive(logging.WithRunID(ctx, result.RunID), fragments))
	result.Finalize()
	return result, c.finish(ctx, before, result)
}

// Add stores a manual record and saves when it was new.
func (c *client) Add(ctx context.Context, entry reconciler.ManualEntry) (catalogs.Firmware, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx = c.scope(ctx)

	r, err := c.reconciler(nil, nil)
	if err != nil {
		return catalogs.Firmware{}, false, err
	}
	before := snapshot(c.state)
	f, added, err := r.AddManual(ctx, entry)
	if err != nil || !added {
		return f, added, err
	}
	if err := c.store.Save(ctx, c.state); err != nil {
		return f, true, err
	}
	c.hooks.trigger(before, c.state)
	return f, true, nil
}

func (c *client) reconciler(releases sources.ReleaseHost, dir sources.ArtifactDir) (reconciler.Reconciler, error) {
	opts := []reconciler.Option{
		reconciler.WithBaseURL(c.config.crawlBaseURL),
		reconciler.WithCheckpoint(func(ctx context.Context) error {
			return c.store.Save(ctx, c.state)
		}, c.config.checkpointEvery),
	}
	if releases != nil {
		opts = append(opts, reconciler.WithReleases(releases))
	}
	if dir != nil {
		opts = append(opts, reconciler.WithDirectory(dir))
	}
	if c.config.logger != nil {
		opts = append(opts, reconciler.WithLogger(c.config.logger))
	}
	return reconciler.New(c.state, opts...)
}

// finish saves the catalog and the run status, then fires hooks.
func (c *client) finish(ctx context.Context, before map[string]catalogs.Firmware, result *reconciler.Result) error {
	logger := logging.FromContext(ctx)

	if err := c.store.Save(ctx, c.state); err != nil {
		logger.Error().Err(err).Msg("Failed to save catalog")
		return err
	}
	status := result.Status(c.state.Firmwares.Len())
	if err := c.store.SaveStatus(status); err != nil {
		logger.Warn().Err(err).Msg("Failed to save run status")
	}

	c.hooks.trigger(before, c.state)

	logger.Info().
		Str("status", string(status.Status)).
		Int("firmwares", status.FirmwaresFound).
		Int("new", status.NewFirmwares).
		Msg(result.Summary())
	return nil
}
