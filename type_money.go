package folio

import (
	"fmt"

	"github.com/Rhymond/go-money"
)

// ValidateCurrency checks that code is a known ISO 4217 currency code.
func ValidateCurrency(code string) error {
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}

// Money formats n as an amount of currency, e.g. "€1,001.00". Unknown is "n/a".
func (n Number) Money(currency string) string {
	if !n.known {
		return "n/a"
	}
	cur := *money.New(0, currency).Currency()
	minor := n.value.Shift(int32(cur.Fraction)).RoundBank(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedMoney is like Money but always shows the sign of a non zero amount.
// Zero is represented as "-".
func (n Number) SignedMoney(currency string) string {
	switch {
	case !n.known:
		return "n/a"
	case n.value.IsZero():
		return "-"
	case n.value.IsPositive():
		return "+" + n.Money(currency)
	default:
		return n.Money(currency)
	}
}
