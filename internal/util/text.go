package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var trailingNumberPattern = regexp.MustCompile(`(\d+)\.pdf$`)

// NormalizeName turns a display name into the comparison key used for every
// name/filename match: NFC, lowercased, with whitespace, underscores and dots
// removed. Other characters pass through.
func NormalizeName(input string) string {
	s := strings.Map(func(r rune) rune {
		if r == '_' || r == '.' || r == '\ufeff' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
	return norm.NFC.String(strings.ToLower(norm.NFC.String(s)))
}

// FileStem strips the extension from a bare filename.
func FileStem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// TrailingNumber returns the digits immediately preceding ".pdf", if any.
func TrailingNumber(filename string) (string, bool) {
	m := trailingNumberPattern.FindStringSubmatch(filename)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// LooseKey is NormalizeName with everything but letters and digits removed.
func LooseKey(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, NormalizeName(input))
}
