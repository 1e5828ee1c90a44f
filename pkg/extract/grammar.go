// Package extract turns unstructured text into candidate firmware records.
//
// Extraction is best-effort: a field that cannot be found is left empty.
// Only the builders (FromFragment, FromFilename, FromRelease) fail, and only
// when model or version is missing.
package extract

import (
	"regexp"
	"strings"

	"github.com/agentstation/fwmap/pkg/constants"
)

// ModelRule describes one device category of the model grammar.
type ModelRule struct {
	Prefix  string
	Pattern string
}

// ModelGrammar lists the recognized device categories. Longer prefixes come
// first so IDS- is not read as DS-.
var ModelGrammar = []ModelRule{
	{Prefix: "IDS", Pattern: `IDS-[0-9A-Z-]+`},
	{Prefix: "DS", Pattern: `DS-[0-9A-Z-]+`},
	{Prefix: "AE", Pattern: `AE-[0-9A-Z-]+`},
}

// HardwareDefault maps a model prefix to the hardware family assumed when
// the text names none.
type HardwareDefault struct {
	ModelPrefix string
	Hardware    string
}

// HardwareDefaults is consulted in order; the first matching prefix wins.
var HardwareDefaults = []HardwareDefault{
	{ModelPrefix: "DS-2CD", Hardware: "IPC_G0"},
	{ModelPrefix: "DS-2DE", Hardware: "IPC_G0"},
	{ModelPrefix: "DS-76", Hardware: "NVR_G0"},
	{ModelPrefix: "DS-77", Hardware: "NVR_G0"},
}

var (
	modelPattern    = compileGrammar(ModelGrammar)
	versionPattern  = regexp.MustCompile(`[Vv]?(\d+\.\d+\.\d+(?:\.\d+)?)`)
	hardwarePattern = regexp.MustCompile(`(?i)(?:IPC|NVR|DVR)_[A-Z0-9]+`)
	digitRun        = regexp.MustCompile(`\d+`)
	parenthetical   = regexp.MustCompile(`\s*\([^)]*\)`)
	appliedTo       = regexp.MustCompile(`(?is)applied\s+to\s*:\s*(.*?)(?:\n[ \t]*\n|\n[ \t]*#|\n[ \t]*[A-Z][A-Za-z ]{0,40}:|\z)`)
)

func compileGrammar(rules []ModelRule) *regexp.Regexp {
	alternatives := make([]string, len(rules))
	for i, r := range rules {
		alternatives[i] = r.Pattern
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alternatives, "|") + `)`)
}

// Model returns the first device model named in text, upper-cased.
func Model(text string) (string, bool) {
	for _, m := range modelPattern.FindAllString(text, -1) {
		if model := cleanModel(m); model != "" {
			return model, true
		}
	}
	return "", false
}

func cleanModel(match string) string {
	model := strings.ToUpper(strings.TrimRight(match, "-"))
	i := strings.IndexByte(model, '-')
	if i < 0 || i == len(model)-1 {
		return ""
	}
	return model
}

// Version returns the first dotted version in text without its v prefix.
func Version(text string) (string, bool) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// HardwareVersion returns the hardware family named in text, upper-cased,
// else the default for model, else UNKNOWN.
func HardwareVersion(text, model string) string {
	if hw := hardwarePattern.FindString(text); hw != "" {
		return strings.ToUpper(hw)
	}
	for _, d := range HardwareDefaults {
		if strings.HasPrefix(model, d.ModelPrefix) {
			return d.Hardware
		}
	}
	return constants.Unknown
}

// HasArtifactExtension reports whether name ends in an allow-listed
// firmware archive extension, ignoring case.
func HasArtifactExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range constants.ArtifactExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsPlaceholderURL reports whether url points at a licensing page rather
// than an artifact.
func IsPlaceholderURL(url string) bool {
	for _, marker := range constants.PlaceholderURLMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}
