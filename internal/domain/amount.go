package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal that remembers the literal digits it was decoded
// from. decimal.Decimal.String trims trailing fractional zeros, so a
// provider price of 49000.0 would render as "49000"; Amount keeps the
// wire text for display while the embedded decimal serves arithmetic.
type Amount struct {
	decimal.Decimal
	text string
}

// NewAmount wraps a decimal with no remembered literal; String falls
// back to the decimal rendering.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// MustParseAmount builds an Amount from a literal numeric string,
// panicking on bad input. For fixtures.
func MustParseAmount(s string) Amount {
	return Amount{Decimal: decimal.RequireFromString(s), text: s}
}

// UnmarshalJSON keeps the wire text alongside the decoded decimal.
// Accepts numbers and quoted numeric strings, like decimal does.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if err := a.Decimal.UnmarshalJSON(data); err != nil {
		return err
	}
	a.text = strings.Trim(string(data), `"`)
	return nil
}

// String renders the original literal when one is known.
func (a Amount) String() string {
	if a.text != "" {
		return a.text
	}
	return a.Decimal.String()
}
