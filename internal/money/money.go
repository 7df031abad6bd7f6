// Package money converts between the integer minor units all
// computation runs on and the decimal major units used at the API
// boundary. 12.34 MYR is stored and computed as 1234.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrCurrencyCode   = errors.New("the currency must be a valid ISO 4217 code")
	ErrAmountFormat   = errors.New("the amount must be a decimal number")
	ErrAmountTooSmall = errors.New("the amount has more decimal places than the currency allows")
)

// Exponent returns the number of decimal places of a currency, e.g. 2
// for MYR and 0 for JPY.
func Exponent(code string) (int, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrCurrencyCode, code)
	}

	scale, _ := currency.Standard.Rounding(unit)
	return scale, nil
}

// ParseMajor parses a decimal major unit string like "12.34" into minor
// units. Amounts with more precision than the currency carries are
// rejected rather than rounded.
func ParseMajor(s string, code string) (int64, error) {
	exponent, err := Exponent(code)
	if err != nil {
		return 0, err
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrAmountFormat, s)
	}

	return FromDecimal(d, exponent)
}

// FromDecimal converts a decimal major unit amount into minor units.
func FromDecimal(d decimal.Decimal, exponent int) (int64, error) {
	minor := d.Shift(int32(exponent))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrAmountTooSmall, d)
	}

	return minor.IntPart(), nil
}

// ToDecimal converts minor units into a decimal major unit amount.
func ToDecimal(minor int64, exponent int) decimal.Decimal {
	return decimal.New(minor, 0).Shift(int32(-exponent))
}

// Format renders minor units for display, e.g. "MYR 12.34".
func Format(minor int64, code string) string {
	exponent, err := Exponent(code)
	if err != nil {
		return fmt.Sprintf("%s %d", code, minor)
	}

	return fmt.Sprintf("%s %s", code, ToDecimal(minor, exponent).StringFixed(int32(exponent)))
}
