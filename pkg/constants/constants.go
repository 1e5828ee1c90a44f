// Package constants holds values shared across fwmap: timeouts, file
// permissions, persisted document names and catalog sentinels.
package constants

import "time"

// Timeouts
const (
	// DefaultHTTPTimeout bounds every request to the release host.
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default deadline for a CLI command.
	CommandTimeout = 10 * time.Minute
)

// File permissions
const (
	// DirPermissions is used for created directories (rwxr-xr-x).
	DirPermissions = 0755

	// FilePermissions is used for written documents (rw-r--r--).
	FilePermissions = 0644
)

// Cache
const (
	// ReleaseCacheTTL is how long a release listing is reused within a process.
	ReleaseCacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often expired cache entries are purged.
	CacheCleanupInterval = 5 * time.Minute
)

// Catalog identity
const (
	// Unknown marks a model or hardware version that could not be determined.
	Unknown = "UNKNOWN"

	// FirstDeviceID is the lowest id ever allocated to a device.
	FirstDeviceID = 100000
)

// Reconciliation
const (
	// DefaultCheckpointEvery is the number of ingested candidates between saves.
	DefaultCheckpointEvery = 50

	// MaxStatusErrors is how many recent errors status.json retains.
	MaxStatusErrors = 10

	// ReleasePageSize is the per_page value used when listing releases.
	ReleasePageSize = 100

	// MaxReleasePages stops pagination against a misbehaving host.
	MaxReleasePages = 50
)

// Persisted document names, relative to the data directory.
const (
	DevicesFile         = "devices.json"
	LiveFirmwaresFile   = "firmwares_live.json"
	ManualFirmwaresFile = "firmwares_manual.json"
	FirmwareInfoFile    = "firmware_info.json"
	StatusFile          = "status.json"
	ReadmeFile          = "README.md"
)

// ArtifactExtensions is the allow-list of firmware archive extensions.
var ArtifactExtensions = []string{".zip", ".dav", ".pak", ".bin"}

// PlaceholderURLMarkers identify licensing pages that stand in for a download.
var PlaceholderURLMarkers = []string{"materials-license-agreement", "download-agreement"}
