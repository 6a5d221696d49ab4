// Package normalizers provides field normalization for source-data cleanup
package normalizers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const bom = "\ufeff"

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Header normalizes a raw column header for alias matching: BOM stripped,
// diacritics folded, lowercased, trimmed.
func Header(s string) string {
	s = strings.TrimPrefix(s, bom)
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// DigitsOnly removes all non-digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// CNPJ normalizes a Brazilian tax id: strips punctuation, left-pads to 14
// digits. Returns "" for values that carry no digits or only zeros.
func CNPJ(s string) string {
	digits := DigitsOnly(s)
	if digits == "" {
		return ""
	}
	if len(digits) > 14 {
		return ""
	}
	padded := strings.Repeat("0", 14-len(digits)) + digits
	if padded == strings.Repeat("0", 14) {
		return ""
	}
	return padded
}

// UF normalizes a Brazilian state code (trim, uppercase)
func UF(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}
