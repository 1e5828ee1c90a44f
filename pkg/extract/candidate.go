package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/normalize"
)

// Candidate is an unvalidated firmware entry. It becomes a catalog record
// only after the reconciler resolves its device and checks its evidence.
type Candidate struct {
	Model           string
	HardwareVersion string
	Version         string
	Date            string
	DownloadURL     string
	Filename        string
	SupportedModels []string
	AppliedTo       string
	Changes         string
	Notes           string
}

// IsBeta reports whether the candidate looks like a pre-release.
func (c Candidate) IsBeta() bool {
	return normalize.IsBeta(c.Version, c.Notes)
}

// Key is the identity key the candidate would be stored under.
func (c Candidate) Key() string {
	return c.Model + "_" + c.HardwareVersion + "_" + c.Version
}

// Fragment is one link found by the site crawl: the link text, its href,
// and the text of the section that contains it. Any field may be empty.
type Fragment struct {
	Text     string `json:"text"`
	Href     string `json:"href"`
	Context  string `json:"context"`
	Filename string `json:"filename,omitempty"`
}

// FromFragment builds a candidate from a crawl fragment. Relative hrefs are
// resolved against baseURL.
func FromFragment(f Fragment, baseURL string) (Candidate, error) {
	href := resolveHref(strings.TrimSpace(f.Href), baseURL)
	filename := f.Filename
	if filename == "" {
		filename = FilenameFromURL(href)
	}

	model, ok := firstModel(f.Text, f.Context, filename, href)
	if !ok {
		return Candidate{}, errors.NewExtractionMiss("model", summarize(f.Text, f.Context))
	}
	version, ok := firstVersion(f.Text+" "+href, filename)
	if !ok {
		return Candidate{}, errors.NewExtractionMiss("version", summarize(f.Text, href))
	}

	section := f.Context + "\n" + f.Text
	return Candidate{
		Model:           normalize.Model(model),
		HardwareVersion: HardwareVersion(section+" "+filename, model),
		Version:         version,
		Date:            Date(filename, f.Text, f.Context, href),
		DownloadURL:     href,
		Filename:        filename,
		SupportedModels: SupportedModels(section),
		AppliedTo:       AppliedTo(f.Context),
		Changes:         field(f.Context, "Changes", "Change Log", "Changelog"),
		Notes:           field(f.Context, "Notes", "Note"),
	}, nil
}

// FromFilename builds a candidate from an artifact name alone. The hardware
// version is always UNKNOWN: a filename is not trusted to name it.
func FromFilename(name string) (Candidate, error) {
	model, ok := Model(name)
	if !ok {
		return Candidate{}, errors.NewExtractionMiss("model", name)
	}
	version, ok := Version(name)
	if !ok {
		return Candidate{}, errors.NewExtractionMiss("version", name)
	}
	return Candidate{
		Model:           normalize.Model(model),
		HardwareVersion: constants.Unknown,
		Version:         version,
		Date:            Date(name),
		Filename:        name,
	}, nil
}

// FromRelease builds a candidate for one release asset. Structured fields in
// the release notes take precedence; anything they omit is recovered from
// the asset name. When notes describe several assets, the block naming
// assetName is used.
func FromRelease(notes, assetName string) (Candidate, error) {
	block := releaseBlock(notes, assetName)

	model := normalize.Model(strings.ToUpper(field(block, "Model", "Device Model")))
	if m, ok := Model(model); ok {
		model = m
	}
	if model == "" {
		if m, ok := Model(assetName); ok {
			model = normalize.Model(m)
		}
	}
	if model == "" {
		return Candidate{}, errors.NewExtractionMiss("model", assetName)
	}

	version, ok := Version(field(block, "Version", "Firmware Version"))
	if !ok {
		version, ok = Version(assetName)
	}
	if !ok {
		return Candidate{}, errors.NewExtractionMiss("version", assetName)
	}

	hw := field(block, "Hardware Version", "Hardware")
	switch {
	case hw == "" || strings.EqualFold(hw, constants.Unknown):
		hw = HardwareVersion(block+" "+assetName, model)
	case hardwarePattern.MatchString(hw):
		hw = strings.ToUpper(hw)
	}

	date := normalize.FormatDate(field(block, "Release Date", "Date"))
	if !normalize.IsCanonicalDate(date) {
		date = Date(assetName)
	}

	return Candidate{
		Model:           model,
		HardwareVersion: hw,
		Version:         version,
		Date:            date,
		Filename:        assetName,
		SupportedModels: SupportedModels(block),
		AppliedTo:       AppliedTo(block),
		Changes:         field(block, "Changes", "Change Log", "Changelog"),
		Notes:           field(block, "Notes", "Note"),
	}, nil
}

// releaseBlock returns the paragraph group of notes that mentions
// assetName, or the whole body when none does. Blocks are separated by
// markdown rules or level-2 headings.
func releaseBlock(notes, assetName string) string {
	if assetName == "" || !strings.Contains(notes, assetName) {
		return notes
	}
	var blocks []string
	var current strings.Builder
	for _, line := range strings.Split(notes, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" || strings.HasPrefix(trimmed, "## ") {
			blocks = append(blocks, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	blocks = append(blocks, current.String())
	for _, b := range blocks {
		if strings.Contains(b, assetName) {
			return b
		}
	}
	return notes
}

func firstModel(inputs ...string) (string, bool) {
	for _, in := range inputs {
		if m, ok := Model(in); ok {
			return m, true
		}
	}
	return "", false
}

func firstVersion(inputs ...string) (string, bool) {
	for _, in := range inputs {
		if v, ok := Version(in); ok {
			return v, true
		}
	}
	return "", false
}

func resolveHref(href, baseURL string) string {
	if href == "" || baseURL == "" || strings.HasPrefix(href, "#") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// FilenameFromURL returns the last path segment of href when it names a
// firmware archive. Query and fragment are ignored.
func FilenameFromURL(href string) string {
	if href == "" {
		return ""
	}
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if !HasArtifactExtension(name) {
		return ""
	}
	return name
}

func summarize(parts ...string) string {
	s := normalize.Model(strings.Join(parts, " "))
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
