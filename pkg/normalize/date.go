package normalize

import (
	"regexp"
	"strings"

	"github.com/agentstation/utc"
)

// CanonicalDateLayout is the only date form stored in the catalog.
const CanonicalDateLayout = "2006-01-02"

var (
	sixDigits      = regexp.MustCompile(`^\d{6}$`)
	eightDigits    = regexp.MustCompile(`^\d{8}$`)
	canonicalDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	delimitedDates = []string{
		CanonicalDateLayout,
		"2006/01/02",
		"02/01/2006",
		"01/02/2006",
		"2006.01.02",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
	}
)

// FormatDate renders text as YYYY-MM-DD. Six digits are read as YYMMDD in
// the 2000s, eight as YYYYMMDD, anything else is tried against a fixed list
// of delimited layouts. Text that matches nothing is returned unchanged.
func FormatDate(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}

	switch {
	case sixDigits.MatchString(s):
		if t, err := utc.Parse("20060102", "20"+s); err == nil {
			return t.Format(CanonicalDateLayout)
		}
		return text
	case eightDigits.MatchString(s):
		if t, err := utc.Parse("20060102", s); err == nil {
			return t.Format(CanonicalDateLayout)
		}
		return text
	}

	for _, layout := range delimitedDates {
		if t, err := utc.Parse(layout, s); err == nil {
			return t.Format(CanonicalDateLayout)
		}
	}
	return text
}

// IsCanonicalDate reports whether s is already a valid YYYY-MM-DD date.
func IsCanonicalDate(s string) bool {
	if !canonicalDate.MatchString(s) {
		return false
	}
	_, err := utc.Parse(CanonicalDateLayout, s)
	return err == nil
}
