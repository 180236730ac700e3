// Package textnorm normalizes Czech BOQ text for keyword matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, lowercases and trims the string.
// "Vrtané piloty" -> "vrtane piloty".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strings.ToLower(stripDiacritics(s)))
}

// NormalizeUnit canonicalizes a unit of measure for comparison ("M3" -> "m3").
func NormalizeUnit(u string) string {
	return strings.TrimSpace(strings.ToLower(u))
}

// stripDiacritics removes combining marks after NFD decomposition.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
