// Package phone normalizes raw phone number strings to a canonical
// digit-only suffix key. Members, payers, and split targets are matched by
// this key, so every call site must use the same truncation length.
package phone

// CanonicalDigits is the suffix length used everywhere a phone number is
// stored or looked up.
const CanonicalDigits = 12

// Normalize strips all non-digit characters from raw and returns the last
// keepLastN digits. Shorter inputs are returned whole; empty input yields an
// empty string.
func Normalize(raw string, keepLastN int) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if keepLastN > 0 && len(digits) > keepLastN {
		digits = digits[len(digits)-keepLastN:]
	}
	return string(digits)
}

// Canonical returns the canonical form of raw: the last CanonicalDigits digits.
func Canonical(raw string) string {
	return Normalize(raw, CanonicalDigits)
}
