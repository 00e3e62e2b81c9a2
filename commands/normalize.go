package commands

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var punctuation = regexp.MustCompile("[.,/#!$%^&*;:{}=_'`~()\\[\\]\"<>?@+|\\\\-]")

// Normalize prepares a transcript for command matching. With formatting
// enabled the text is returned unchanged. Otherwise it is NFKC-folded,
// lowercased, stripped of punctuation and whitespace-collapsed. Stripping a
// mark can leave a base letter next to a combining one, so the result is
// folded again.
func Normalize(text string, formatting bool) string {
	if formatting {
		return text
	}
	s := norm.NFKC.String(text)
	s = strings.ToLower(s)
	s = punctuation.ReplaceAllString(s, "")
	return collapse(norm.NFKC.String(s))
}
