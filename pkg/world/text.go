package world

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, strips punctuation and collapses whitespace.
func Normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for i, f := range fields {
		fields[i] = strings.Trim(f, "'")
	}
	return strings.Join(strings.Fields(strings.Join(fields, " ")), " ")
}

// ContainsPhrase reports whether phrase appears in text on word boundaries.
// Both arguments are normalized first, so "go" never matches "ghost".
func ContainsPhrase(text, phrase string) bool {
	p := Normalize(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+Normalize(text)+" ", " "+p+" ")
}

// ContainsAny reports whether any phrase appears in text.
func ContainsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if ContainsPhrase(text, p) {
			return true
		}
	}
	return false
}

// MatchScore returns the length of the longest name, spaced ID or keyword
// found in text, or 0 when none is present. Longer matches are more specific.
func MatchScore(text, name, id string, keywords []string) int {
	best := 0
	candidates := append([]string{name, strings.ReplaceAll(id, "_", " ")}, keywords...)
	for _, c := range candidates {
		n := Normalize(c)
		if n != "" && len(n) > best && ContainsPhrase(text, n) {
			best = len(n)
		}
	}
	return best
}
