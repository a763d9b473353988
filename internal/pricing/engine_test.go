package pricing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestApplyMarkupGlobal(t *testing.T) {
	rates := NewRates(20, "{}")
	require.Equal(t, Money(600), ApplyMarkup(500, rates, ""))
	require.Equal(t, Money(600), ApplyMarkup(500, rates, "FR"))
}

func TestApplyMarkupRegionalOverride(t *testing.T) {
	rates := NewRates(20, `{"JP": 10}`)
	require.Equal(t, Money(550), ApplyMarkup(500, rates, "JP"))
	require.Equal(t, Money(550), ApplyMarkup(500, rates, " jp "))
	require.Equal(t, Money(600), ApplyMarkup(500, rates, "US"))
}

func TestApplyMarkupMalformedOverrideFallsBack(t *testing.T) {
	for _, raw := range []string{"not json", `["JP", 10]`, `{"JP": "ten"}`, `{"JP": null}`, ""} {
		rates := NewRates(20, raw)
		require.Equal(t, Money(600), ApplyMarkup(500, rates, "JP"), raw)
	}
}

func TestApplyMarkupRoundsHalfUp(t *testing.T) {
	// 5 * 10% = 0.5 -> 1
	require.Equal(t, Money(6), ApplyMarkup(5, NewRates(10, ""), ""))
	// 333 * 12.5% = 41.625 -> 42
	require.Equal(t, Money(375), ApplyMarkup(333, NewRates(0, `{"TH": 12.5}`), "TH"))
	// 999 * 15% = 149.85 -> 150
	require.Equal(t, Money(1149), ApplyMarkup(999, NewRates(15, ""), ""))
}

func TestApplyMarkupZeroPercent(t *testing.T) {
	require.Equal(t, Money(1234), ApplyMarkup(1234, NewRates(0, ""), "JP"))
}

func TestApplyMarkupNeverBelowBase(t *testing.T) {
	for _, pct := range []int64{0, 1, 7, 20, 33, 100, 250} {
		rates := NewRates(pct, "")
		for _, base := range []Money{0, 1, 2, 49, 50, 99, 100, 101, 12345, 9999999, 5_000_000_000_000_000, math.MaxInt64} {
			got := ApplyMarkup(base, rates, "")
			require.GreaterOrEqual(t, got, base, "base=%d pct=%d", base, pct)
			require.Equal(t, got, ApplyMarkup(base, rates, ""))
		}
	}
}

func TestApplyMarkupLargeBase(t *testing.T) {
	require.Equal(t, Money(6_000_000_000_000_000), ApplyMarkup(5_000_000_000_000_000, NewRates(20, ""), ""))
	require.Equal(t, Money(math.MaxInt64), ApplyMarkup(math.MaxInt64/2, NewRates(250, ""), ""))
	require.Equal(t, Money(math.MaxInt64), ApplyMarkup(math.MaxInt64, NewRates(1, ""), ""))
	// -4611686018427387903.5 rounds up to -4611686018427387903
	require.Equal(t, Money(math.MaxInt64/2+1), ApplyMarkup(math.MaxInt64, NewRates(-50, ""), ""))
}

func TestApplyMarkupClampsNegative(t *testing.T) {
	require.Equal(t, Money(0), ApplyMarkup(500, NewRates(-200, ""), ""))
	require.Equal(t, Money(450), ApplyMarkup(500, NewRates(-10, ""), ""))
}

func TestParseRegionalMarkup(t *testing.T) {
	got := ParseRegionalMarkup(`{"jp": 10, "TH": "12.5", "US": true, "": 4, "GB": 7.25}`)
	require.Equal(t, map[string]BasisPoints{"JP": 1000, "TH": 1250, "GB": 725}, got)
	require.Empty(t, ParseRegionalMarkup("{"))
}

func TestFormatRegionalMarkupRoundTrip(t *testing.T) {
	text := FormatRegionalMarkup(map[string]decimal.Decimal{
		"jp": decimal.NewFromInt(10),
		"TH": decimal.RequireFromString("12.5"),
	})
	require.JSONEq(t, `{"JP": 10, "TH": 12.5}`, text)
	require.Equal(t, map[string]BasisPoints{"JP": 1000, "TH": 1250}, ParseRegionalMarkup(text))
}

type stubRates struct {
	rates Rates
	err   error
	calls int
}

func (s *stubRates) Rates(context.Context) (Rates, error) {
	s.calls++
	return s.rates, s.err
}

func TestMarkupApplyFetchesRatesEveryCall(t *testing.T) {
	src := &stubRates{rates: NewRates(20, `{"JP":10}`)}
	m := Markup{Source: src}

	price, err := m.Apply(context.Background(), 500, "JP")
	require.NoError(t, err)
	require.Equal(t, Money(550), price)

	src.rates = NewRates(30, "{}")
	price, err = m.Apply(context.Background(), 500, "JP")
	require.NoError(t, err)
	require.Equal(t, Money(650), price)
	require.Equal(t, 2, src.calls)
}

func TestMarkupApplyPropagatesSettingsError(t *testing.T) {
	m := Markup{Source: &stubRates{err: errors.New("db down")}}
	_, err := m.Apply(context.Background(), 500, "JP")
	require.EqualError(t, err, "db down")
}
