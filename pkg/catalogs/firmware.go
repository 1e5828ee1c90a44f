package catalogs

import (
	"strings"

	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/normalize"
)

// Firmware is one catalog record.
type Firmware struct {
	DeviceID        int      `json:"device_id"`
	Model           string   `json:"model"`
	HardwareVersion string   `json:"hardware_version"`
	Version         string   `json:"version"`
	Date            string   `json:"date"`
	DownloadURL     string   `json:"download_url"`
	Filename        string   `json:"filename,omitempty"`
	SupportedModels []string `json:"supported_models,omitempty"`
	AppliedTo       string   `json:"applied_to,omitempty"`
	Changes         string   `json:"changes"`
	Notes           string   `json:"notes"`
	IsBeta          bool     `json:"is_beta"`
	Source          Source   `json:"source"`
}

// Key builds the identity key. Inputs must already be normalized.
func Key(model, hardwareVersion, version string) string {
	return model + "_" + hardwareVersion + "_" + version
}

// Key returns the record's identity key.
func (f Firmware) Key() string {
	return Key(f.Model, f.HardwareVersion, f.Version)
}

// HasUnknownModel reports whether the model is the UNKNOWN sentinel.
func (f Firmware) HasUnknownModel() bool {
	return f.Model == constants.Unknown
}

// ParsedVersion returns the version as a comparable tuple.
func (f Firmware) ParsedVersion() normalize.Version {
	return normalize.ParseVersion(f.Version)
}

// sortDate is the date used for ordering; non-canonical dates sort oldest.
func (f Firmware) sortDate() string {
	if normalize.IsCanonicalDate(f.Date) {
		return f.Date
	}
	return ""
}

// HasURLEvidence reports whether DownloadURL points at something other
// than a licensing placeholder.
func (f Firmware) HasURLEvidence() bool {
	u := strings.TrimSpace(f.DownloadURL)
	if u == "" || strings.HasPrefix(u, "#") {
		return false
	}
	return !extract.IsPlaceholderURL(u)
}
