// Package textutil holds the small text helpers shared by every title
// renderer: whitespace and newline cleanup, the reply-line length cap, and
// human-readable sizes and durations.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Paragraph is the marker CleanupNewlines substitutes for line breaks.
const Paragraph = " ¶ "

// Reply lines longer than truncateMax bytes are cut at the first rune
// boundary at or after truncateMin.
const (
	truncateMin = 365
	truncateMax = 400
)

var (
	controlRegex   = regexp.MustCompile(`\p{Cc}`)
	markerRunRegex = regexp.MustCompile(`¶(?:[\s\p{Zs}]*¶)+`)
	spaceRunRegex  = regexp.MustCompile(`[\s\p{Zs}]{2,}`)
)

// StripWhitespace collapses every run of whitespace or control characters
// into a single space and trims both ends.
func StripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CleanupNewlines turns control characters into paragraph markers, merges
// adjacent markers and squeezes repeated whitespace.
func CleanupNewlines(s string) string {
	s = controlRegex.ReplaceAllString(s, Paragraph)
	s = markerRunRegex.ReplaceAllString(s, "¶")
	return spaceRunRegex.ReplaceAllString(s, " ")
}

// Truncate caps a reply line without splitting a UTF-8 sequence. If no rune
// boundary exists inside the cut window the string is returned unchanged.
func Truncate(s string) string {
	if len(s) <= truncateMax {
		return s
	}
	for i := truncateMin; i <= truncateMax; i++ {
		if utf8.RuneStart(s[i]) {
			return s[:i]
		}
	}
	return s
}

// HasControl reports whether s contains any control character.
func HasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}
