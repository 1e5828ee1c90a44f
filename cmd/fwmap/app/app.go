// Package app wires configuration, logging and the catalog client for the
// fwmap CLI.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/fwmap"
	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/pkg/logging"
)

// App holds the CLI's dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger
	fs     afero.Fs

	mu     sync.Mutex
	client fwmap.Client
}

var _ appcontext.Interface = (*App)(nil)

// New creates an App with configuration loaded from the environment.
func New(version, commit, date string, opts ...Option) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(config)
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
		logger:  &logger,
		fs:      afero.NewOsFs(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Version returns the version string.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// Config returns the configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// Client returns the catalog client, loading the catalog on first use.
func (a *App) Client() (fwmap.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}
	ctx := logging.WithLogger(context.Background(), a.logger)
	client, err := fwmap.New(ctx, a.clientOptions()...)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *App) clientOptions() []fwmap.Option {
	c := a.config
	opts := []fwmap.Option{
		fwmap.WithFs(a.fs),
		fwmap.WithLogger(a.logger),
		fwmap.WithFirmwareDir(c.FirmwareDir),
		fwmap.WithReleaseRepo(c.ReleaseRepo),
		fwmap.WithGitHubToken(c.GitHubToken),
		fwmap.WithAPIBase(c.APIBase),
		fwmap.WithDownloadHost(c.ReleaseHost),
		fwmap.WithCrawlBaseURL(c.CrawlBaseURL),
	}
	if c.DataDir != "" {
		opts = append(opts, fwmap.WithDataDir(c.DataDir))
	}
	if c.CheckpointEvery > 0 {
		opts = append(opts, fwmap.WithCheckpointEvery(c.CheckpointEvery))
	}
	return opts
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger replaces the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFs sets the filesystem the client reads and writes.
func WithFs(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

// WithClient injects a ready client.
func WithClient(client fwmap.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
