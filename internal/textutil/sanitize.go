// Package textutil prepares file names and messages for terminal cells.
package textutil

import (
	"strings"
	"unicode"
)

// Sanitize makes user-controlled text safe to draw. Control characters
// become '?', and bidi or zero-width formatting runes become U+FFFD so a
// file name cannot reorder or hide the text around it.
func Sanitize(text string) string {
	clean := true
	for _, r := range text {
		if needsReplacement(r) {
			clean = false
			break
		}
	}
	if clean {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			b.WriteByte('?')
		case unicode.Is(unicode.Cf, r):
			b.WriteRune(unicode.ReplacementChar)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func needsReplacement(r rune) bool {
	return unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
}
