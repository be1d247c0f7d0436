// Package sanitizer normalizes applicant-submitted text before validation,
// so that validation rules run against canonical values rather than raw
// form input.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reNonDigit      = regexp.MustCompile(`[^0-9]`)
	reDocSeparators = regexp.MustCompile(`[\s.\-]+`)
)

// TrimAndNormalize trims the string and collapses any internal whitespace
// run into a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// DigitsOnly strips every non-digit character. Phone validation counts the
// digits that remain.
func DigitsOnly(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// NormalizeDocumentID uppercases a national document number and drops the
// separators people habitually type ("v-12.345.678" -> "V12345678").
func NormalizeDocumentID(s string) string {
	s = reDocSeparators.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.ToUpper(s)
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func NormalizeEventType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CountNonWhitespace reports the number of non-whitespace runes, used by
// minimum-length rules that should not be satisfiable with padding.
func CountNonWhitespace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
