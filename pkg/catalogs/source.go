package catalogs

// Source identifies where a firmware record was first learned from.
type Source string

// Sources
const (
	SourceLive           Source = "live"
	SourceManual         Source = "manual"
	SourceDirectorySync  Source = "directory_sync"
	SourceGitHubReleases Source = "github_releases_sync"
)

// String returns the source name.
func (s Source) String() string {
	return string(s)
}

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	switch s {
	case SourceLive, SourceManual, SourceDirectorySync, SourceGitHubReleases:
		return true
	}
	return false
}

// RequiresEvidence reports whether records from s must be backed by an
// artifact or a usable download URL. Manual entries are trusted.
func (s Source) RequiresEvidence() bool {
	return s != SourceManual
}
