// Package money handles monetary amounts as integer cents internally and as
// fixed 2-decimal strings at every external boundary.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
)

// Cents is a monetary amount in minor units (1/100 of the currency unit).
type Cents int64

// ParseAmount converts a decimal string like "19.99" into cents. It rejects
// empty, malformed, negative, and sub-cent inputs.
func ParseAmount(value string) (Cents, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount is required")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid amount %q", value)
	}
	if dec.IsNegative() {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "amount %q must not be negative", value)
	}
	if dec.Exponent() < -2 {
		dec = Round2(dec)
	}
	return Cents(dec.Shift(2).IntPart()), nil
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(dec decimal.Decimal) decimal.Decimal {
	return dec.Round(2)
}

// String formats the amount as a fixed 2-decimal string, e.g. "19.99".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Decimal converts the amount into its decimal currency-unit value.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Mul multiplies the amount by an integer quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// MulRateRound2 applies a fractional rate (e.g. a tax rate) and rounds the
// result half-up to whole cents.
func (c Cents) MulRateRound2(rate decimal.Decimal) Cents {
	product := c.Decimal().Mul(rate)
	return Cents(Round2(product).Shift(2).IntPart())
}

// ParseRate parses a fractional rate such as "0.15". Rates may carry more than
// two decimal places.
func ParseRate(value string) (decimal.Decimal, error) {
	dec, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid rate %q", value)
	}
	if dec.IsNegative() {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "rate %q must not be negative", value)
	}
	return dec, nil
}
