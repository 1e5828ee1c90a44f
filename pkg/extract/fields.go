package extract

import (
	"strings"

	"github.com/agentstation/fwmap/pkg/normalize"
)

// Date returns the first 6- or 8-digit run across inputs that forms a
// valid calendar date. Inputs are scanned in order, so callers pass the
// filename before the URL: URL paths often carry a bare YYYYMM segment.
func Date(inputs ...string) string {
	for _, in := range inputs {
		for _, run := range digitRun.FindAllString(in, -1) {
			if len(run) != 6 && len(run) != 8 {
				continue
			}
			if d := normalize.FormatDate(run); normalize.IsCanonicalDate(d) {
				return d
			}
		}
	}
	return ""
}

// AppliedTo returns the "Applied to:" section of text, header included,
// with whitespace collapsed. The section ends at a blank line or the next
// heading.
func AppliedTo(text string) string {
	m := appliedTo.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	lines := strings.Split(m[1], "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(strings.TrimSpace(line), "-*• ")
	}
	body := normalize.Model(strings.Join(lines, " "))
	if body == "" {
		return ""
	}
	return "Applied to: " + body
}

// SupportedModels returns every model named in text in order of first
// appearance, with parenthetical variant qualifiers removed.
func SupportedModels(text string) []string {
	stripped := parenthetical.ReplaceAllString(text, "")
	seen := make(map[string]bool)
	var models []string
	for _, m := range modelPattern.FindAllString(stripped, -1) {
		model := cleanModel(m)
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true
		models = append(models, model)
	}
	return models
}

// field returns the value of the first "Label: value" line whose label
// matches one of labels, case-insensitively.
func field(text string, labels ...string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*"))
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.Trim(strings.TrimSpace(name), "*_")
		for _, label := range labels {
			if strings.EqualFold(name, label) {
				return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*_"))
			}
		}
	}
	return ""
}
