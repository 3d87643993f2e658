package core

import "unicode"

const (
	// MinCardDigits is the shortest card number the scanner looks for
	MinCardDigits = 14

	// MaxCardDigits is the longest card number the scanner looks for
	MaxCardDigits = 16
)

// isDigit reports whether r is an ASCII decimal digit
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isSpaceChar matches Unicode space separators only; line feeds and tabs are not included
func isSpaceChar(r rune) bool {
	return unicode.In(r, unicode.Zs, unicode.Zl, unicode.Zp)
}

// IsCardLike reports whether r can be part of a written card number: a digit,
// a Unicode space character or a hyphen
func IsCardLike(r rune) bool {
	return isDigit(r) || isSpaceChar(r) || r == '-'
}

// PassesLuhn runs the mod-10 check over the digits of window, right to left.
// Separators are skipped and do not advance the doubling position.
func PassesLuhn(window []rune) bool {
	sum := 0
	pos := 0
	for i := len(window) - 1; i >= 0; i-- {
		if !isDigit(window[i]) {
			continue
		}

		value := int(window[i] - '0')
		if pos%2 == 1 {
			value *= 2
			if value > 9 {
				value -= 9
			}
		}
		sum += value
		pos++
	}

	return sum%10 == 0
}

// IsCardNumber reports whether s is a single card number: 14 to 16 digits,
// optionally separated by spaces or hyphens, that passes the Luhn check
func IsCardNumber(s string) bool {
	runes := []rune(s)
	digits := 0
	for _, r := range runes {
		if !IsCardLike(r) {
			return false
		}
		if isDigit(r) {
			digits++
		}
	}

	if digits < MinCardDigits || digits > MaxCardDigits {
		return false
	}

	return PassesLuhn(runes)
}

// CountDigits returns the number of decimal digits in s
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if isDigit(r) {
			n++
		}
	}
	return n
}
