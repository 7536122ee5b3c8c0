package core

import (
	"regexp"
	"strings"
)

// specialChars matches everything outside word characters, whitespace, and
// basic punctuation. Matched runes are stripped from ticket text.
var specialChars = regexp.MustCompile(`[^\w\s.,!?-]`)

// CleanText normalizes one free-text cell: null or missing input yields "",
// characters outside the allowed set are removed, and runs of whitespace
// (including newlines and tabs) collapse to single spaces. The result is
// trimmed and the function is idempotent.
func CleanText(v Value) string {
	if v.Null {
		return ""
	}
	s := specialChars.ReplaceAllString(v.Raw, "")
	return strings.Join(strings.Fields(s), " ")
}
