package fwmap

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/fwmap/internal/sources/releases"
	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/sources"
)

// Option configures a Client.
type Option func(*config) error

type config struct {
	fs          afero.Fs
	dataDir     string
	firmwareDir string

	releaseRepo  string
	releaseHost  sources.ReleaseHost
	githubToken  string
	apiBase      string
	downloadHost string
	httpClient   *http.Client

	crawlBaseURL    string
	checkpointEvery int
	logger          *zerolog.Logger
}

func newConfig(opts ...Option) (*config, error) {
	c := &config{
		fs:              afero.NewOsFs(),
		dataDir:         ".",
		checkpointEvery: constants.DefaultCheckpointEvery,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *config) releaseOptions() []releases.Option {
	return []releases.Option{
		releases.WithToken(c.githubToken),
		releases.WithAPIBase(c.apiBase),
		releases.WithHost(c.downloadHost),
		releases.WithHTTPClient(c.httpClient),
	}
}

// scope attaches the configured logger unless ctx already carries one.
func (c *client) scope(ctx context.Context) context.Context {
	if c.config.logger == nil || logging.HasLogger(ctx) {
		return ctx
	}
	return logging.WithLogger(ctx, c.config.logger)
}

// WithFs sets the filesystem for the data and firmware directories.
func WithFs(fs afero.Fs) Option {
	return func(c *config) error {
		if fs == nil {
			return errors.NewValidationError("fs", nil, "cannot be nil")
		}
		c.fs = fs
		return nil
	}
}

// WithDataDir sets where the catalog documents live.
func WithDataDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return errors.NewValidationError("data_dir", dir, "cannot be empty")
		}
		c.dataDir = dir
		return nil
	}
}

// WithFirmwareDir enables directory ingest and cleanup over dir.
func WithFirmwareDir(dir string) Option {
	return func(c *config) error {
		c.firmwareDir = dir
		return nil
	}
}

// WithReleaseRepo enables release ingest from the GitHub repository
// "owner/name".
func WithReleaseRepo(repo string) Option {
	return func(c *config) error {
		c.releaseRepo = repo
		return nil
	}
}

// WithReleaseHost uses host for release ingest instead of the GitHub client.
func WithReleaseHost(host sources.ReleaseHost) Option {
	return func(c *config) error {
		c.releaseHost = host
		return nil
	}
}

// WithGitHubToken authenticates release listing.
func WithGitHubToken(token string) Option {
	return func(c *config) error {
		c.githubToken = token
		return nil
	}
}

// WithAPIBase overrides the GitHub REST endpoint.
func WithAPIBase(apiBase string) Option {
	return func(c *config) error {
		c.apiBase = apiBase
		return nil
	}
}

// WithDownloadHost overrides the host used in synthesized download links.
func WithDownloadHost(host string) Option {
	return func(c *config) error {
		c.downloadHost = host
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for the release host.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithCrawlBaseURL sets the URL relative crawl links resolve against.
func WithCrawlBaseURL(baseURL string) Option {
	return func(c *config) error {
		c.crawlBaseURL = baseURL
		return nil
	}
}

// WithCheckpointEvery saves the catalog after every n ingested candidates.
func WithCheckpointEvery(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.NewValidationError("checkpoint_every", n, "must be positive")
		}
		c.checkpointEvery = n
		return nil
	}
}

// WithLogger sets the logger used when a call's context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
