// Package money holds the decimal amount used for prices.
package money

import (
	"github.com/shopspring/decimal"
)

// Amount is a decimal encoded as a JSON number. Quoted numbers are accepted on input.
type Amount struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

func New(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func NewFromInt(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v)}
}

// RequireFromString parses s and panics if it is not a number.
func RequireFromString(s string) Amount {
	return Amount{Decimal: decimal.RequireFromString(s)}
}

// MarshalJSON writes the amount without quotes.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}
