package pricing

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// BasisPoints expresses a percentage multiplied by 100 (20% == 2000).
type BasisPoints = int64

// bpsScale is the power of ten basis points are scaled by.
const bpsScale = 4

// Rates is the markup configuration in effect for one request.
type Rates struct {
	Global   BasisPoints
	Regional map[string]BasisPoints
}

// NewRates builds Rates from a whole global percent and the raw regional override text.
func NewRates(globalPercent int64, regional string) Rates {
	return Rates{
		Global:   globalPercent * 100,
		Regional: ParseRegionalMarkup(regional),
	}
}

// For returns the rate for country and whether a regional override supplied it.
func (r Rates) For(country string) (BasisPoints, bool) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if code != "" {
		if bps, ok := r.Regional[code]; ok {
			return bps, true
		}
	}
	return r.Global, false
}

// ApplyMarkup returns base plus the markup for country, rounded half-up to the nearest minor unit.
// The result is never negative and saturates at math.MaxInt64.
func ApplyMarkup(base Money, rates Rates, country string) Money {
	if base < 0 {
		base = 0
	}
	bps, _ := rates.For(country)
	// base*bps/10000 is exact in decimal, so large bases cannot wrap.
	markup := decimal.NewFromInt(base).Mul(decimal.NewFromInt(bps)).Shift(-bpsScale)
	total := decimal.NewFromInt(base).Add(roundHalfUp(markup))
	switch {
	case total.Sign() < 0:
		return 0
	case total.GreaterThan(maxMoney):
		return math.MaxInt64
	}
	return total.IntPart()
}

var (
	maxMoney = decimal.NewFromInt(math.MaxInt64)
	half     = decimal.New(5, -1)
)

// roundHalfUp rounds d to an integer, taking .5 towards positive infinity.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// ParseRegionalMarkup decodes a JSON object of country code to percent. It never fails:
// invalid documents yield an empty map and non-numeric entries are skipped, so lookups fall
// back to the global rate.
func ParseRegionalMarkup(raw string) map[string]BasisPoints {
	out := map[string]BasisPoints{}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return out
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return out
	}
	for country, value := range doc {
		code := strings.ToUpper(strings.TrimSpace(country))
		if code == "" {
			continue
		}
		pct, ok := percentValue(value)
		if !ok {
			continue
		}
		out[code] = pct.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	}
	return out
}

func percentValue(value any) (decimal.Decimal, bool) {
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FormatRegionalMarkup serializes overrides back to the stored text form with whole or fractional percents.
func FormatRegionalMarkup(overrides map[string]decimal.Decimal) string {
	doc := make(map[string]json.Number, len(overrides))
	for country, pct := range overrides {
		code := strings.ToUpper(strings.TrimSpace(country))
		if code == "" {
			continue
		}
		doc[code] = json.Number(pct.String())
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(b)
}
