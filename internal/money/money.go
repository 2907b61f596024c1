// Package money converts between the supported currencies. EUR is the
// canonical currency for storage and comparison; BGN is pegged to EUR at
// the fixed official rate.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	CurrencyEUR = "EUR"
	CurrencyBGN = "BGN"
)

// PegBGNPerEUR is the fixed BGN per EUR conversion rate.
var PegBGNPerEUR = decimal.RequireFromString("1.95583")

// ErrUnknownCurrency is returned for any currency code other than EUR or BGN.
var ErrUnknownCurrency = fmt.Errorf("unknown currency")

// Supported reports whether code is a currency this service handles.
func Supported(code string) bool {
	return code == CurrencyEUR || code == CurrencyBGN
}

// Round normalizes an amount to 2 decimal places using banker's rounding.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(2)
}

// ToEUR converts an amount in the given currency to canonical EUR,
// rounded to 2 decimal places.
func ToEUR(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	switch currency {
	case CurrencyEUR:
		return Round(amount), nil
	case CurrencyBGN:
		return Round(amount.Div(PegBGNPerEUR)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
}

// FromEUR converts a canonical EUR amount into the given currency,
// rounded to 2 decimal places.
func FromEUR(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	switch currency {
	case CurrencyEUR:
		return Round(amount), nil
	case CurrencyBGN:
		return Round(amount.Mul(PegBGNPerEUR)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
}
