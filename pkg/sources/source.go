// Package sources defines the collaborators the reconciler reads from: a
// release host, a directory of downloaded artifacts, and a crawl export.
// Implementations live under internal/sources.
package sources

import (
	"context"

	"github.com/agentstation/fwmap/pkg/extract"
)

// ID names a collaborator in logs and run errors.
type ID string

// Collaborator ids
const (
	ReleasesID  ID = "releases"
	DirectoryID ID = "directory"
	CrawlID     ID = "crawl"
)

// String returns the id.
func (id ID) String() string {
	return string(id)
}

// Asset is one binary attached to a release.
type Asset struct {
	Name string
	Size int64
	URL  string
}

// Release is one published release: free-text notes plus named assets.
type Release struct {
	Tag    string
	Name   string
	Body   string
	Assets []Asset
}

// ReleaseHost lists releases and builds stable download links.
type ReleaseHost interface {
	ListReleases(ctx context.Context) ([]Release, error)

	// DownloadURL returns the "latest release" download link for filename.
	DownloadURL(filename string) string
}

// ArtifactDir is the local directory of downloaded firmware archives.
type ArtifactDir interface {
	// Artifacts lists allow-listed archive names. A directory that does
	// not exist yields an empty list, not an error.
	Artifacts(ctx context.Context) ([]string, error)

	// Exists reports whether name is an archive in the directory.
	Exists(name string) bool
}

// FragmentSource yields link fragments captured by the site crawl.
type FragmentSource interface {
	Fragments(ctx context.Context) ([]extract.Fragment, error)
}
