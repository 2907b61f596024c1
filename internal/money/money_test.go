package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToEURFromBGN(t *testing.T) {
	got, err := ToEUR(decimal.RequireFromString("1.95583"), CurrencyBGN)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("1.00")), "got %s", got)

	got, err = ToEUR(decimal.RequireFromString("3.99"), CurrencyBGN)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("2.04")), "got %s", got)
}

func TestFromEURToBGN(t *testing.T) {
	got, err := FromEUR(decimal.RequireFromString("1.00"), CurrencyBGN)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("1.96")), "got %s", got)
}

func TestEURPassthroughRounds(t *testing.T) {
	got, err := ToEUR(decimal.RequireFromString("2.345"), CurrencyEUR)
	require.NoError(t, err)
	// banker's rounding: 2.345 rounds to the even neighbor
	require.True(t, got.Equal(decimal.RequireFromString("2.34")), "got %s", got)
}

func TestUnknownCurrency(t *testing.T) {
	_, err := ToEUR(decimal.NewFromInt(1), "USD")
	require.ErrorIs(t, err, ErrUnknownCurrency)

	_, err = FromEUR(decimal.NewFromInt(1), "usd")
	require.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestSupported(t *testing.T) {
	require.True(t, Supported(CurrencyEUR))
	require.True(t, Supported(CurrencyBGN))
	require.False(t, Supported("USD"))
	require.False(t, Supported("eur"))
}

func TestConversionStaysCloseOnRoundTrip(t *testing.T) {
	for _, raw := range []string{"0.01", "1.00", "3.99", "12.49", "199.95"} {
		eur := decimal.RequireFromString(raw)
		bgn, err := FromEUR(eur, CurrencyBGN)
		require.NoError(t, err)
		back, err := ToEUR(bgn, CurrencyBGN)
		require.NoError(t, err)
		diff := back.Sub(eur).Abs()
		require.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")), "eur=%s back=%s", eur, back)
	}
}
