package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize lowercases text, trims it and collapses whitespace runs to a
// single space.
func Normalize(text string) string {
	lower := cases.Lower(language.Und).String(text)
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(lower), " ")
}

// normalizeCuisine is Normalize with a trailing " food" token removed.
func normalizeCuisine(text string) string {
	n := Normalize(text)
	return strings.TrimSuffix(n, " food")
}
