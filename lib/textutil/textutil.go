package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeLabel lowercases and trims a label so that labels typed by
// different people compare equal.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func EqualLabel(a, b string) bool {
	return NormalizeLabel(a) == NormalizeLabel(b)
}

// CollapseWhitespace replaces runs of ASCII whitespace with one space and trims the result.
// Non-breaking spaces inside the text are kept.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

var alternateSpaces = strings.NewReplacer(
	"\u00a0", " ",
	"\u2007", " ",
	"\u202f", " ",
)

// ReplaceAlternateSpaces turns non-breaking, figure and narrow no-break spaces into
// regular spaces.
func ReplaceAlternateSpaces(s string) string {
	return alternateSpaces.Replace(s)
}

// StripSpaces removes every unicode space from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
