package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName reports whether the normalized form of name contains any of
// the given matchers. Matchers are expected to be pre-normalized
// (lowercase, no whitespace).
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// CollapseWhitespace trims a string and squashes inner whitespace runs
// (simaster table cells are full of layout newlines and tabs).
func CollapseWhitespace(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	return whitespaceRegex.ReplaceAllString(s, " ")
}
