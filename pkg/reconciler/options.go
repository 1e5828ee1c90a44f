package reconciler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/sources"
)

// CheckpointFunc persists the catalog mid-run.
type CheckpointFunc func(ctx context.Context) error

type options struct {
	releases        sources.ReleaseHost
	directory       sources.ArtifactDir
	baseURL         string
	checkpoint      CheckpointFunc
	checkpointEvery int
	logger          *zerolog.Logger
}

func defaultOptions() *options {
	return &options{checkpointEvery: constants.DefaultCheckpointEvery}
}

// Option configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithReleases enables release ingest from host.
func WithReleases(host sources.ReleaseHost) Option {
	return func(o *options) error {
		if host == nil {
			return errors.NewValidationError("releases", nil, "cannot be nil")
		}
		o.releases = host
		return nil
	}
}

// WithDirectory enables directory ingest and the file-dependent cleanup
// passes.
func WithDirectory(dir sources.ArtifactDir) Option {
	return func(o *options) error {
		if dir == nil {
			return errors.NewValidationError("directory", nil, "cannot be nil")
		}
		o.directory = dir
		return nil
	}
}

// WithBaseURL sets the URL relative crawl links are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(o *options) error {
		o.baseURL = baseURL
		return nil
	}
}

// WithCheckpoint calls fn after every `every` processed candidates during
// ingest.
func WithCheckpoint(fn CheckpointFunc, every int) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.NewValidationError("checkpoint", nil, "cannot be nil")
		}
		if every <= 0 {
			return errors.NewValidationError("checkpoint_every", every, "must be positive")
		}
		o.checkpoint = fn
		o.checkpointEvery = every
		return nil
	}
}

// WithLogger sets the logger used when the caller's context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
