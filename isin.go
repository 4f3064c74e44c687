package folio

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidISIN is wrapped by the errors of ValidateISIN.
var ErrInvalidISIN = errors.New("invalid ISIN")

// isinPattern is 2 letters for the country, 9 alphanumerics and a check digit.
var isinPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// ValidateISIN checks that isin is a well formed ISO 6166 code with a valid
// check digit.
func ValidateISIN(isin string) error {
	if !isinPattern.MatchString(isin) {
		return fmt.Errorf("%w %q: want 2 letters, 9 alphanumerics and a digit", ErrInvalidISIN, isin)
	}
	if want := isinCheckDigit(isin[:11]); int(isin[11]-'0') != want {
		return fmt.Errorf("%w %q: check digit should be %d", ErrInvalidISIN, isin, want)
	}
	return nil
}

// isinCheckDigit applies Luhn to the digits of s, letters counting as two
// digits (A=10 to Z=35).
func isinCheckDigit(s string) int {
	var digits []int
	for _, c := range s {
		if c >= 'A' && c <= 'Z' {
			v := int(c-'A') + 10
			digits = append(digits, v/10, v%10)
		} else {
			digits = append(digits, int(c-'0'))
		}
	}
	sum := 0
	for i := range digits {
		d := digits[len(digits)-1-i]
		if i%2 == 0 {
			d *= 2
		}
		sum += d/10 + d%10
	}
	return (10 - sum%10) % 10
}
