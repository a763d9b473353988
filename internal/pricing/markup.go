package pricing

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ecomitechltd/ZINEB/internal/obs"
)

// RatesSource supplies the markup rates currently stored in settings.
type RatesSource interface {
	Rates(ctx context.Context) (Rates, error)
}

// Markup converts supplier base prices into customer prices using the current settings.
type Markup struct {
	Source RatesSource
}

// Apply reads the current rates and applies them to base. Rates are fetched on every call.
func (m Markup) Apply(ctx context.Context, base Money, country string) (Money, error) {
	if m.Source == nil {
		return 0, errors.New("pricing: rates source not configured")
	}
	rates, err := m.Source.Rates(ctx)
	if err != nil {
		return 0, err
	}
	return Price(rates, base, country), nil
}

// Price applies rates to base and records which rate scope was used.
func Price(rates Rates, base Money, country string) Money {
	scope := "global"
	if _, regional := rates.For(country); regional {
		scope = "regional"
	}
	obs.IncDomain(obs.MarkupAppliedTotal, scope)
	return ApplyMarkup(base, rates, country)
}

// Quote explains how a price was derived.
type Quote struct {
	Base    Money  `json:"base"`
	Country string `json:"country,omitempty"`
	Price   Money  `json:"price"`
	Percent string `json:"markupPercent"`
	Scope   string `json:"scope"`
}

// Preview is Apply with the rate that was used.
func (m Markup) Preview(ctx context.Context, base Money, country string) (Quote, error) {
	if m.Source == nil {
		return Quote{}, errors.New("pricing: rates source not configured")
	}
	rates, err := m.Source.Rates(ctx)
	if err != nil {
		return Quote{}, err
	}
	bps, regional := rates.For(country)
	scope := "global"
	if regional {
		scope = "regional"
	}
	return Quote{
		Base:    base,
		Country: strings.ToUpper(strings.TrimSpace(country)),
		Price:   Price(rates, base, country),
		Percent: decimal.New(bps, -2).String(),
		Scope:   scope,
	}, nil
}
