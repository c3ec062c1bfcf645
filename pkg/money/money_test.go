package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Cents
	}{
		{"19.99", 1999},
		{"0", 0},
		{"0.00", 0},
		{"100", 10000},
		{" 25.00 ", 2500},
		{"2.5", 250},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "  ", "abc", "12,50", "-1.00"} {
		_, err := ParseAmount(in)
		require.Error(t, err, in)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, in)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code(), in)
	}
}

func TestParseAmountRoundsSubCentInput(t *testing.T) {
	t.Parallel()

	got, err := ParseAmount("19.995")
	require.NoError(t, err)
	assert.Equal(t, Cents(2000), got)
}

func TestCentsString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "19.99", Cents(1999).String())
	assert.Equal(t, "100.00", Cents(10000).String())
	assert.Equal(t, "0.05", Cents(5).String())
}

func TestMulRateRound2HalfUp(t *testing.T) {
	t.Parallel()

	rate := decimal.RequireFromString("0.15")

	// 25.00 * 0.15 = 3.75 exactly
	assert.Equal(t, Cents(375), Cents(2500).MulRateRound2(rate))
	// 0.99 * 0.15 = 0.1485 -> 0.15
	assert.Equal(t, Cents(15), Cents(99).MulRateRound2(rate))
	// 0.10 * 0.15 = 0.015 -> rounds half up to 0.02
	assert.Equal(t, Cents(2), Cents(10).MulRateRound2(rate))
}

func TestParseRate(t *testing.T) {
	t.Parallel()

	rate, err := ParseRate("0.15")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.15")))

	_, err = ParseRate("-0.1")
	require.Error(t, err)
	_, err = ParseRate("nope")
	require.Error(t, err)
}
