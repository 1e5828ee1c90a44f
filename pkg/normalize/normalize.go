// Package normalize converts raw strings scraped from pages, filenames and
// release notes into the canonical forms stored in the catalog.
//
// Every function is pure. Values that cannot be interpreted map to a
// sentinel that sorts below every real value rather than to an error.
package normalize

import "strings"

// betaMarkers flag pre-release firmware when found in a version or notes.
var betaMarkers = []string{"beta", "test", "alpha", "rc", "preview"}

// Model collapses whitespace runs to single spaces and trims the ends.
func Model(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// IsBeta reports whether version or notes carry a pre-release marker.
func IsBeta(version, notes string) bool {
	v := strings.ToLower(version)
	n := strings.ToLower(notes)
	for _, marker := range betaMarkers {
		if strings.Contains(v, marker) || strings.Contains(n, marker) {
			return true
		}
	}
	return false
}
