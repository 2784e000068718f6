package domain

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes formatted amounts.
const CurrencySymbol = "R"

var hundred = decimal.NewFromInt(100)

func init() {
	// Percentages and rates render as JSON numbers like money does.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is an amount in integer cents. All accumulation and comparison of
// money happens on this type so repeated partial payments cannot drift.
type Money int64

// MoneyFromDecimal converts a currency-unit amount to cents, rounding half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

// MoneyFromString parses a currency-unit amount such as "300.00".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing money %q: %w", s, err)
	}
	return MoneyFromDecimal(d), nil
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 { return int64(m) }

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal { return decimal.New(int64(m), -2) }

// String renders the amount with two decimals and no symbol.
func (m Money) String() string { return m.Decimal().StringFixed(2) }

// Format renders the amount for humans, e.g. R200.00 or -R300.00.
func (m Money) Format() string {
	if m < 0 {
		return "-" + CurrencySymbol + (-m).String()
	}
	return CurrencySymbol + m.String()
}

// Percent returns pct percent of m, rounded to the nearest cent.
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(pct).Div(hundred).Round(0).IntPart())
}

// PercentOf expresses part as a percentage of whole. A zero whole yields zero.
func PercentOf(part, whole Money) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole)))
}

// MarshalJSON renders the amount as a JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string in currency units.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}
	parsed, err := MoneyFromString(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
