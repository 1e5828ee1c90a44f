// Package reconciler merges firmware candidates from every source into the
// catalog and prunes records whose evidence has disappeared.
//
// A run is ordered: ingest from releases, ingest from the artifact
// directory, then three cleanup passes (placeholders, missing evidence,
// orphan devices). Additive passes always precede subtractive ones, and each
// pass depends only on the catalog and the directory contents, so re-running
// after a crash converges on the same catalog.
package reconciler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/sources"
)

// Reconciler owns a catalog state for the duration of a run.
type Reconciler interface {
	// Run executes the ordered ingest and cleanup passes.
	Run(ctx context.Context) *Result

	// IngestReleases admits release assets not yet in the catalog.
	IngestReleases(ctx context.Context) PassResult

	// IngestDirectory admits on-disk artifacts not yet in the catalog.
	IngestDirectory(ctx context.Context) PassResult

	// IngestLive admits crawl fragments that carry evidence.
	IngestLive(ctx context.Context, fragments []extract.Fragment) PassResult

	// AddManual stores one trusted record.
	AddManual(ctx context.Context, entry ManualEntry) (catalogs.Firmware, bool, error)

	// CleanupPlaceholders removes inert directory-sync placeholders.
	CleanupPlaceholders(ctx context.Context) PassResult

	// CleanupMissingEvidence removes unidentified records without evidence.
	CleanupMissingEvidence(ctx context.Context) PassResult

	// CleanupOrphanDevices removes unreferenced UNKNOWN-model devices.
	CleanupOrphanDevices(ctx context.Context) PassResult

	// State returns the catalog being reconciled.
	State() *catalogs.State
}

type reconciler struct {
	state     *catalogs.State
	releases  sources.ReleaseHost
	directory sources.ArtifactDir
	baseURL   string

	checkpoint      CheckpointFunc
	checkpointEvery int
	sinceCheckpoint int

	logger *zerolog.Logger
}

// New creates a Reconciler over state.
func New(state *catalogs.State, opts ...Option) (Reconciler, error) {
	if state == nil {
		return nil, errors.NewValidationError("state", nil, "cannot be nil")
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		state:           state,
		releases:        options.releases,
		directory:       options.directory,
		baseURL:         options.baseURL,
		checkpoint:      options.checkpoint,
		checkpointEvery: options.checkpointEvery,
		logger:          options.logger,
	}, nil
}

func (r *reconciler) State() *catalogs.State {
	return r.state
}

// Run executes passes 1 through 5. A release failure aborts only the
// release pass. A directory failure skips every pass that needs to know
// which files exist.
func (r *reconciler) Run(ctx context.Context) *Result {
	result := NewResult()
	ctx = logging.WithRunID(r.scope(ctx), result.RunID)
	logger := logging.FromContext(ctx)

	logger.Info().
		Int("firmwares", r.state.Firmwares.Len()).
		Int("devices", r.state.Devices.Len()).
		Msg("Starting reconciliation")

	if r.releases != nil {
		result.Record(r.IngestReleases(ctx))
	}

	if r.directory == nil {
		logger.Info().Msg("No artifact directory configured, skipping directory ingest and cleanup")
		result.Finalize()
		return result
	}

	files, err := r.listFiles(ctx)
	if err != nil {
		for _, p := range []Pass{PassDirectory, PassPlaceholders, PassMissingEvidence, PassOrphanDevices} {
			pr := PassResult{Pass: p, Aborted: true}
			if p == PassDirectory {
				pr.Err = err
			}
			result.Record(pr)
		}
		logger.Error().Err(err).Msg("Artifact directory unavailable, skipped directory ingest and cleanup")
		result.Finalize()
		return result
	}

	result.Artifacts = len(files.names)
	result.Record(r.ingestDirectory(ctx, files))
	result.Record(r.cleanupPlaceholders(ctx, files))
	result.Record(r.cleanupMissingEvidence(ctx, files))
	result.Record(r.cleanupOrphanDevices(ctx, files))

	result.Finalize()
	logger.Info().
		Int("added", result.Added()).
		Int("backfilled", result.Backfilled()).
		Int("removed", result.Removed()).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")
	return result
}

// scope attaches the configured logger unless ctx already has one.
func (r *reconciler) scope(ctx context.Context) context.Context {
	if r.logger == nil || logging.HasLogger(ctx) {
		return ctx
	}
	return logging.WithLogger(ctx, r.logger)
}

// fileSet is the set of artifact names present on disk.
type fileSet struct {
	names []string
	index map[string]bool
}

func newFileSet(names []string) fileSet {
	index := make(map[string]bool, len(names))
	for _, n := range names {
		index[n] = true
	}
	return fileSet{names: names, index: index}
}

func (s fileSet) has(name string) bool {
	return name != "" && s.index[name]
}

func (r *reconciler) listFiles(ctx context.Context) (fileSet, error) {
	if r.directory == nil {
		return newFileSet(nil), nil
	}
	names, err := r.directory.Artifacts(ctx)
	if err != nil {
		return fileSet{}, errors.WrapCollaborator(sources.DirectoryID.String(), "list", err)
	}
	return newFileSet(names), nil
}

// tick counts one processed candidate and checkpoints when due.
func (r *reconciler) tick(ctx context.Context) {
	if r.checkpoint == nil {
		return
	}
	r.sinceCheckpoint++
	if r.sinceCheckpoint < r.checkpointEvery {
		return
	}
	r.sinceCheckpoint = 0
	if err := r.checkpoint(ctx); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Checkpoint failed")
		return
	}
	logging.FromContext(ctx).Debug().Msg("Checkpoint saved")
}
