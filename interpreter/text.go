package interpreter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

var (
	nonWord       = regexp.MustCompile(`\W+`)
	ordinalSuffix = regexp.MustCompile(`\b(\d+)(?:st|nd|rd|th)\b`)
)

// Normalize lower-cases an utterance.
func Normalize(utterance string) string {
	return strings.ToLower(utterance)
}

// Tokenize splits on runs of non-word characters and drops empty tokens.
func Tokenize(text string) []string {
	return lo.Filter(nonWord.Split(text, -1), func(token string, _ int) bool {
		return token != ""
	})
}

// StripOrdinals rewrites "1st", "22nd", "3rd" or "11th" into the bare number.
func StripOrdinals(text string) string {
	return ordinalSuffix.ReplaceAllString(text, "$1")
}

// displayName lower-cases a name and upper-cases its first letter.
func displayName(name string) string {
	lower := strings.ToLower(name)
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return string(unicode.ToUpper(r)) + lower[size:]
}
