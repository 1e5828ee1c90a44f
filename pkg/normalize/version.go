package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	versionMarker = regexp.MustCompile(`^(?i)(version|v)\s*:?\s*`)
	dateSuffix    = regexp.MustCompile(`_(\d{8}|\d{6})$`)
	buildSuffix   = regexp.MustCompile(`(?i)[ _]build[ _]\d{4,}.*$`)
)

// Version is a parsed dotted version, compared segment by segment.
type Version []int

// Unparsed is returned for text that is not a version.
var Unparsed = Version{0, 0, 0}

// ParseVersion strips version markers and build-date suffixes from text and
// parses the remaining dotted integers. Anything else yields Unparsed.
func ParseVersion(text string) Version {
	s := strings.TrimSpace(text)
	s = versionMarker.ReplaceAllString(s, "")
	s = buildSuffix.ReplaceAllString(s, "")
	s = dateSuffix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Unparsed
	}

	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Unparsed
		}
		v = append(v, n)
	}
	return v
}

// Compare returns -1, 0 or 1. A shorter version that is a prefix of a
// longer one sorts first.
func (v Version) Compare(other Version) int {
	for i := 0; i < len(v) && i < len(other); i++ {
		switch {
		case v[i] < other[i]:
			return -1
		case v[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(v) < len(other):
		return -1
	case len(v) > len(other):
		return 1
	}
	return 0
}

// IsUnparsed reports whether v is the sentinel.
func (v Version) IsUnparsed() bool {
	return v.Compare(Unparsed) == 0
}

// String renders v in dotted form.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// CompareVersions parses both strings and compares them.
func CompareVersions(a, b string) int {
	return ParseVersion(a).Compare(ParseVersion(b))
}
