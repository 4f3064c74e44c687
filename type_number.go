package folio

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Number is a decimal value that may be unknown.
//
// Ledger fields that cannot be parsed, prices that could not be fetched and
// every value derived from them are unknown. Arithmetic on an unknown Number
// yields an unknown Number, it never silently becomes zero.
//
// The zero value is unknown.
type Number struct {
	value decimal.Decimal
	known bool
}

// Unknown is the unknown Number.
var Unknown = Number{}

// N returns a known Number.
func N[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Number {
	return Number{value: newDecimal(value), known: true}
}

// ParseNumber parses s as a decimal, an invalid or empty s gives Unknown.
func ParseNumber(s string) Number {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Unknown
	}
	return N(d)
}

// Known reports whether n holds a value.
func (n Number) Known() bool { return n.known }

// Decimal returns the value of n and whether it is known.
func (n Number) Decimal() (decimal.Decimal, bool) { return n.value, n.known }

// Or returns the value of n, or def when unknown.
func (n Number) Or(def decimal.Decimal) decimal.Decimal {
	if !n.known {
		return def
	}
	return n.value
}

func (n Number) Add(m Number) Number { return n.op(m, decimal.Decimal.Add) }
func (n Number) Sub(m Number) Number { return n.op(m, decimal.Decimal.Sub) }
func (n Number) Mul(m Number) Number { return n.op(m, decimal.Decimal.Mul) }

// Div returns n/m, unknown when m is zero.
func (n Number) Div(m Number) Number {
	if m.known && m.value.IsZero() {
		return Unknown
	}
	return n.op(m, decimal.Decimal.Div)
}

func (n Number) op(m Number, f func(decimal.Decimal, decimal.Decimal) decimal.Decimal) Number {
	if !n.known || !m.known {
		return Unknown
	}
	return Number{value: f(n.value, m.value), known: true}
}

func (n Number) Neg() Number {
	if !n.known {
		return n
	}
	return Number{value: n.value.Neg(), known: true}
}

func (n Number) Abs() Number {
	if !n.known {
		return n
	}
	return Number{value: n.value.Abs(), known: true}
}

// Round rounds n to places decimals, half to even.
func (n Number) Round(places int32) Number {
	if !n.known {
		return n
	}
	return Number{value: n.value.RoundBank(places), known: true}
}

// The predicates below are false for an unknown Number.

func (n Number) IsPositive() bool { return n.known && n.value.IsPositive() }
func (n Number) IsNegative() bool { return n.known && n.value.IsNegative() }
func (n Number) IsZero() bool     { return n.known && n.value.IsZero() }

// Equal reports whether n and m are both unknown, or both known and equal.
func (n Number) Equal(m Number) bool {
	if n.known != m.known {
		return false
	}
	return !n.known || n.value.Equal(m.value)
}

// String returns the decimal representation of n, or "n/a".
func (n Number) String() string {
	if !n.known {
		return "n/a"
	}
	return n.value.String()
}

// Format formats n with a fixed number of decimals, or "n/a".
func (n Number) Format(places int32) string {
	if !n.known {
		return "n/a"
	}
	return n.value.StringFixed(places)
}

// Percent formats n as a percentage with two decimals.
func (n Number) Percent() string {
	if !n.known {
		return "n/a"
	}
	return n.value.StringFixed(2) + "%"
}

// MarshalJSON encodes a known Number as a JSON number and Unknown as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.known {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Unknown
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = N(d)
	return nil
}

var _ json.Marshaler = Number{}
var _ json.Unmarshaler = (*Number)(nil)

// accumulator sums the known values it is given. Its zero value is ready to use.
type accumulator struct {
	sum   decimal.Decimal
	count int
}

func (a *accumulator) add(n Number) {
	if v, ok := n.Decimal(); ok {
		a.sum = a.sum.Add(v)
		a.count++
	}
}

// Sum returns the sum of the known values, unknown if there was none.
func (a *accumulator) Sum() Number {
	if a.count == 0 {
		return Unknown
	}
	return N(a.sum)
}

// Total returns the sum of the known values, zero if there was none.
func (a *accumulator) Total() Number { return N(a.sum) }

// Mean returns the arithmetic mean of the known values, unknown if there was none.
func (a *accumulator) Mean() Number {
	if a.count == 0 {
		return Unknown
	}
	return N(a.sum.Div(decimal.NewFromInt(int64(a.count))))
}
