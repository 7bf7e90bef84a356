package bills

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const shortDescriptionLen = 50

// FullAndShortName capitalizes each word of a person's name and derives
// the short form "First L" used in bill lists.
func FullAndShortName(name string) (full, short string) {
	caser := cases.Title(language.Finnish)
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	full = strings.Join(words, " ")
	if len(words) < 2 {
		return full, full
	}
	initial, _ := utf8.DecodeRuneInString(words[1])
	return full, words[0] + " " + string(initial)
}

// Shorten returns the first line of a description with whitespace
// collapsed, cut to a list-friendly length.
func Shorten(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	first = strings.Join(strings.Fields(first), " ")
	if utf8.RuneCountInString(first) <= shortDescriptionLen {
		return first
	}
	return string([]rune(first)[:shortDescriptionLen])
}
