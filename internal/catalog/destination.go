package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ecomitechltd/ZINEB/internal/common"
	"github.com/ecomitechltd/ZINEB/internal/pricing"
)

// PopularCountries feeds the "other destinations" list, in display order.
var PopularCountries = []string{"JP", "US", "TH", "GB", "FR", "KR", "DE", "IT", "ES", "AU", "SG", "CA"}

const maxOtherDestinations = 6

// PricedPlan is a plan with the customer price applied.
type PricedPlan struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Data      string `json:"data"`
	Volume    int64  `json:"volume"`
	Days      int    `json:"days"`
	Price     int64  `json:"price"`
	BasePrice int64  `json:"basePrice"`
	Speed     string `json:"speed"`
	DataType  int    `json:"dataType"`
}

// Destination is the storefront view of a single country.
type Destination struct {
	Code              string             `json:"code"`
	Plans             []PricedPlan       `json:"plans"`
	Networks          []Network          `json:"networks"`
	OtherDestinations []OtherDestination `json:"otherDestinations"`
}

// OtherDestination is a popular country with its cheapest customer price.
type OtherDestination struct {
	Code        string `json:"code"`
	LowestPrice int64  `json:"lowestPrice"`
}

// PricedPackages returns plans for code (or every plan when code is empty) priced
// with the current markup settings.
func (s *Service) PricedPackages(ctx context.Context, code string) ([]PricedPlan, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var (
		plans []Plan
		rates pricing.Rates
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if code == "" {
			plans, err = s.AllPackages(gctx)
			return err
		}
		plans, err = s.PackagesByCountry(gctx, code)
		plans = FilterByCountry(plans, code)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.currentRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, catalogError(err)
	}
	return priceAll(plans, rates, code), nil
}

// Destination builds the country page: priced plans, networks and other popular
// destinations. The country lookup, the full catalog and the settings are fetched
// concurrently and any failure fails the whole view.
func (s *Service) Destination(ctx context.Context, code string) (Destination, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Destination{}, common.ErrValidation("country code is required")
	}
	var (
		countryPlans []Plan
		allPlans     []Plan
		rates        pricing.Rates
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		countryPlans, err = s.PackagesByCountry(gctx, code)
		return err
	})
	g.Go(func() error {
		var err error
		allPlans, err = s.AllPackages(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.currentRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Destination{}, catalogError(err)
	}

	countryPlans = FilterByCountry(countryPlans, code)
	if len(countryPlans) == 0 {
		return Destination{}, common.ErrNotFound("destination not found")
	}

	dest := Destination{
		Code:     code,
		Plans:    priceAll(countryPlans, rates, code),
		Networks: countryPlans[0].Networks,
	}
	if dest.Networks == nil {
		dest.Networks = []Network{}
	}
	dest.OtherDestinations = otherDestinations(allPlans, rates, code)
	return dest, nil
}

func (s *Service) currentRates(ctx context.Context) (pricing.Rates, error) {
	if s.rates == nil {
		return pricing.Rates{}, nil
	}
	return s.rates.Rates(ctx)
}

func priceAll(plans []Plan, rates pricing.Rates, country string) []PricedPlan {
	out := make([]PricedPlan, 0, len(plans))
	for _, plan := range plans {
		out = append(out, PricedPlan{
			ID:        plan.PackageCode,
			Slug:      plan.Slug,
			Name:      plan.Name,
			Data:      FormatData(plan.Volume),
			Volume:    plan.Volume,
			Days:      plan.Duration,
			Price:     pricing.Price(rates, plan.BasePrice, country),
			BasePrice: plan.BasePrice,
			Speed:     plan.Speed,
			DataType:  plan.DataType,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume < out[j].Volume
		}
		return out[i].Price < out[j].Price
	})
	return out
}

func otherDestinations(all []Plan, rates pricing.Rates, exclude string) []OtherDestination {
	out := make([]OtherDestination, 0, maxOtherDestinations)
	for _, code := range PopularCountries {
		if code == exclude {
			continue
		}
		matches := FilterByCountry(all, code)
		if len(matches) == 0 {
			continue
		}
		lowest := pricing.ApplyMarkup(matches[0].BasePrice, rates, code)
		for _, plan := range matches[1:] {
			if price := pricing.ApplyMarkup(plan.BasePrice, rates, code); price < lowest {
				lowest = price
			}
		}
		out = append(out, OtherDestination{Code: code, LowestPrice: lowest})
		if len(out) >= maxOtherDestinations {
			break
		}
	}
	return out
}

var (
	bytesPerGB = decimal.NewFromInt(1 << 30)
	bytesPerMB = decimal.NewFromInt(1 << 20)
)

// FormatData renders a byte volume as "NGB" (one decimal at most) or "NMB" below 1GB.
func FormatData(volume int64) string {
	v := decimal.NewFromInt(volume)
	gb := v.Div(bytesPerGB)
	if gb.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return gb.Round(1).String() + "GB"
	}
	return v.Div(bytesPerMB).Round(0).String() + "MB"
}

func catalogError(err error) error {
	if _, ok := common.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, ErrUpstream) {
		return common.ErrUpstream("failed to fetch packages", err)
	}
	return common.ErrInternal("failed to load catalog", err)
}
