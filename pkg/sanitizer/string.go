package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var reMultiSlash = regexp.MustCompile(`/+`)

// TrimAndNormalize trims s and collapses every whitespace run into a single
// space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeReason keeps a blocked interval reason on one line.
func NormalizeReason(reason string) string {
	return TrimAndNormalize(reason)
}

func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// NormalizeTimeZone trims an IANA zone name and collapses repeated
// slashes. Whether the zone exists is left to validation.
func NormalizeTimeZone(tz string) string {
	tz = strings.TrimSpace(tz)
	return strings.Trim(reMultiSlash.ReplaceAllString(tz, "/"), "/")
}
