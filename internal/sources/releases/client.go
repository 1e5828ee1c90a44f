// Package releases lists firmware releases published on GitHub and builds
// the stable "latest release" download links for their assets.
package releases

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/fwmap/internal/cache"
	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/sources"
)

const (
	// DefaultAPIBase is the public GitHub REST endpoint.
	DefaultAPIBase = "https://api.github.com"

	// DefaultHost serves release downloads.
	DefaultHost = "https://github.com"

	hostName = "github"
)

type release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Body       string  `json:"body"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Client talks to the GitHub releases API for one repository.
type Client struct {
	repo    string
	token   string
	apiBase string
	host    string
	http    *http.Client
	cache   *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithAPIBase overrides the REST endpoint, e.g. for GitHub Enterprise or tests.
func WithAPIBase(apiBase string) Option {
	return func(c *Client) {
		if apiBase != "" {
			c.apiBase = strings.TrimRight(apiBase, "/")
		}
	}
}

// WithHost overrides the download host.
func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = strings.TrimRight(host, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache shares a listing cache. A nil cache disables caching.
func WithCache(ch *cache.Cache) Option {
	return func(c *Client) { c.cache = ch }
}

// New creates a client for repo, given as "owner/name".
func New(repo string, opts ...Option) (*Client, error) {
	repo = strings.Trim(strings.TrimSpace(repo), "/")
	if owner, name, ok := strings.Cut(repo, "/"); !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, errors.NewValidationError("release_repo", repo, "must be owner/name")
	}

	c := &Client{
		repo:    repo,
		apiBase: DefaultAPIBase,
		host:    DefaultHost,
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		cache:   cache.NewDefault(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Repo returns "owner/name".
func (c *Client) Repo() string {
	return c.repo
}

// DownloadURL returns {host}/{repo}/releases/latest/download/{filename}.
func (c *Client) DownloadURL(filename string) string {
	return fmt.Sprintf("%s/%s/releases/latest/download/%s", c.host, c.repo, url.PathEscape(filename))
}

// ListReleases returns every published release, following pagination.
// Drafts are skipped.
func (c *Client) ListReleases(ctx context.Context) ([]sources.Release, error) {
	cacheKey := "releases:" + c.repo
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if list, ok := cached.([]sources.Release); ok {
				return list, nil
			}
		}
	}

	logger := logging.FromContext(ctx)
	var out []sources.Release
	for page := 1; page <= constants.MaxReleasePages; page++ {
		batch, err := c.listPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, r := range batch {
			if r.Draft {
				continue
			}
			out = append(out, convert(r))
		}
		if len(batch) < constants.ReleasePageSize {
			break
		}
	}

	logger.Debug().Str("repo", c.repo).Int("releases", len(out)).Msg("Listed releases")
	if c.cache != nil {
		c.cache.Set(cacheKey, out)
	}
	return out, nil
}

func (c *Client) listPage(ctx context.Context, page int) ([]release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases?per_page=%d&page=%d",
		c.apiBase, c.repo, constants.ReleasePageSize, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &errors.APIError{Host: hostName, Endpoint: endpoint, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{Host: hostName, Endpoint: endpoint, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, endpoint); err != nil {
		return nil, err
	}

	var batch []release
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, errors.WrapParse("json", endpoint, err)
	}
	return batch, nil
}

// checkStatus maps non-2xx responses to an APIError carrying the
// response message.
func checkStatus(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := resp.Status
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		message = payload.Message
	}
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		message = "rate limit exceeded"
	}

	return &errors.APIError{
		Host:       hostName,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

func convert(r release) sources.Release {
	out := sources.Release{Tag: r.TagName, Name: r.Name, Body: r.Body}
	for _, a := range r.Assets {
		out.Assets = append(out.Assets, sources.Asset{Name: a.Name, Size: a.Size, URL: a.BrowserDownloadURL})
	}
	return out
}
