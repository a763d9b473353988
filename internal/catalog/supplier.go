package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ecomitechltd/ZINEB/internal/obs"
	"github.com/ecomitechltd/ZINEB/internal/resilience"
)

// ErrUpstream is returned when the supplier cannot produce a package list.
var ErrUpstream = errors.New("catalog: supplier unavailable")

// Supplier fetches the raw plan catalog. An empty location returns every plan.
type Supplier interface {
	FetchPackages(ctx context.Context, location string) ([]Plan, error)
}

// Plan is one supplier package as exposed to the storefront.
type Plan struct {
	PackageCode  string    `json:"packageCode"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Volume       int64     `json:"volume"`
	Duration     int       `json:"duration"`
	DurationUnit string    `json:"durationUnit"`
	Price        int64     `json:"price"`
	BasePrice    int64     `json:"basePrice"`
	CurrencyCode string    `json:"currencyCode"`
	Speed        string    `json:"speed"`
	DataType     int       `json:"dataType"`
	Networks     []Network `json:"networks"`
}

// Network lists operators serving one location of a plan.
type Network struct {
	LocationName string     `json:"locationName"`
	Operators    []Operator `json:"operators"`
}

// Operator is a mobile network operator.
type Operator struct {
	Name        string `json:"name"`
	NetworkType string `json:"networkType"`
}

// SupplierClient talks to the eSIM supplier's open API.
type SupplierClient struct {
	BaseURL    string
	AccessCode string
	// PriceScale is the number of supplier price units per cent.
	PriceScale int64
	HTTP       resilience.HTTPClient
}

type packageListRequest struct {
	LocationCode string `json:"locationCode"`
	Type         string `json:"type"`
	PackageCode  string `json:"packageCode"`
	Slug         string `json:"slug"`
	ICCID        string `json:"iccid"`
}

type packageListResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode"`
	ErrorMsg  string `json:"errorMsg"`
	Obj       struct {
		PackageList []supplierPackage `json:"packageList"`
	} `json:"obj"`
}

type supplierPackage struct {
	PackageCode         string `json:"packageCode"`
	Slug                string `json:"slug"`
	Name                string `json:"name"`
	Price               int64  `json:"price"`
	CurrencyCode        string `json:"currencyCode"`
	Volume              int64  `json:"volume"`
	Duration            int    `json:"duration"`
	DurationUnit        string `json:"durationUnit"`
	Location            string `json:"location"`
	Speed               string `json:"speed"`
	DataType            int    `json:"dataType"`
	LocationNetworkList []struct {
		LocationName string `json:"locationName"`
		OperatorList []struct {
			OperatorName string `json:"operatorName"`
			NetworkType  string `json:"networkType"`
		} `json:"operatorList"`
	} `json:"locationNetworkList"`
}

// FetchPackages implements Supplier.
func (c SupplierClient) FetchPackages(ctx context.Context, location string) ([]Plan, error) {
	start := time.Now()
	plans, err := c.fetch(ctx, location)
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.IncDomain(obs.SupplierRequestsTotal, result)
	if obs.SupplierLatency != nil {
		obs.SupplierLatency.WithLabelValues(result).Observe(float64(time.Since(start).Milliseconds()))
	}
	return plans, err
}

func (c SupplierClient) fetch(ctx context.Context, location string) ([]Plan, error) {
	body, err := json.Marshal(packageListRequest{LocationCode: strings.ToUpper(strings.TrimSpace(location))})
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(c.BaseURL, "/") + "/api/v1/open/package/list"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("RT-AccessCode", c.AccessCode)

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payload packageListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("%w: %s %s", ErrUpstream, payload.ErrorCode, payload.ErrorMsg)
	}

	plans := make([]Plan, 0, len(payload.Obj.PackageList))
	for _, pkg := range payload.Obj.PackageList {
		plans = append(plans, c.toPlan(pkg))
	}
	return plans, nil
}

func (c SupplierClient) toPlan(pkg supplierPackage) Plan {
	plan := Plan{
		PackageCode:  pkg.PackageCode,
		Slug:         pkg.Slug,
		Name:         pkg.Name,
		Location:     pkg.Location,
		Volume:       pkg.Volume,
		Duration:     pkg.Duration,
		DurationUnit: pkg.DurationUnit,
		Price:        pkg.Price,
		BasePrice:    ToCents(pkg.Price, c.PriceScale),
		CurrencyCode: pkg.CurrencyCode,
		Speed:        pkg.Speed,
		DataType:     pkg.DataType,
	}
	for _, loc := range pkg.LocationNetworkList {
		network := Network{LocationName: loc.LocationName, Operators: make([]Operator, 0, len(loc.OperatorList))}
		for _, op := range loc.OperatorList {
			network.Operators = append(network.Operators, Operator{Name: op.OperatorName, NetworkType: op.NetworkType})
		}
		plan.Networks = append(plan.Networks, network)
	}
	return plan
}

// ToCents converts a supplier price to cents, rounding half up.
func ToCents(price, scale int64) int64 {
	if scale <= 1 {
		return price
	}
	if price < 0 {
		return 0
	}
	return (price + scale/2) / scale
}
