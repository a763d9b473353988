package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
	"github.com/ecomitechltd/ZINEB/internal/invoice"
	"github.com/ecomitechltd/ZINEB/internal/settings"
)

// Order statuses.
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusRefunded  = "REFUNDED"
)

const dateOnly = "2006-01-02"

// Store is the subset of generated queries used for order administration.
type Store interface {
	CountOrders(ctx context.Context, arg dbgen.CountOrdersParams) (int64, error)
	ListOrders(ctx context.Context, arg dbgen.ListOrdersParams) ([]dbgen.ListOrdersRow, error)
	OrderSummary(ctx context.Context, arg dbgen.OrderSummaryParams) (dbgen.OrderSummaryRow, error)
	GetOrderWithCustomer(ctx context.Context, id pgtype.UUID) (dbgen.GetOrderWithCustomerRow, error)
}

// SettingsSource provides the business identity printed on invoices.
type SettingsSource interface {
	GetOrInitialize(ctx context.Context) (settings.Settings, error)
}

// Service implements order listing and invoice lookup for administrators.
type Service struct {
	store    Store
	settings SettingsSource
}

// NewService constructs a Service.
func NewService(store Store, settings SettingsSource) *Service {
	return &Service{store: store, settings: settings}
}

// ListParams filters the order listing. Dates accept RFC 3339 or YYYY-MM-DD; a date-only
// DateTo includes the whole day.
type ListParams struct {
	Page      int
	Limit     int
	Status    string
	Country   string
	Search    string
	DateFrom  string
	DateTo    string
	SortBy    string
	SortOrder string
}

// Customer is the ordering user.
type Customer struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Order is the admin view of an order.
type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`
	Discount    int64     `json:"discount"`
	PromoCode   *string   `json:"promoCode"`
	Country     string    `json:"country"`
	CountryName string    `json:"countryName"`
	PackageCode string    `json:"packageCode"`
	PlanName    string    `json:"planName"`
	DataAmount  string    `json:"dataAmount"`
	Validity    int32     `json:"validity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	User        Customer  `json:"user"`
}

// Summary aggregates paid and completed orders matching the non-status filters.
type Summary struct {
	TotalRevenue  int64 `json:"totalRevenue"`
	TotalDiscount int64 `json:"totalDiscount"`
	PaidOrders    int64 `json:"paidOrders"`
}

// Page is one page of orders with its summary.
type Page struct {
	Orders     []Order           `json:"orders"`
	Pagination common.Pagination `json:"pagination"`
	Summary    Summary           `json:"summary"`
}

// List returns one page of orders and the revenue summary.
func (s *Service) List(ctx context.Context, params ListParams) (Page, error) {
	from, err := parseDate(params.DateFrom, false)
	if err != nil {
		return Page{}, common.ErrValidation("invalid dateFrom")
	}
	to, err := parseDate(params.DateTo, true)
	if err != nil {
		return Page{}, common.ErrValidation("invalid dateTo")
	}
	sortBy := params.SortBy
	switch sortBy {
	case "":
		sortBy = "createdAt"
	case "createdAt", "total":
	default:
		return Page{}, common.ErrValidation("invalid sortBy")
	}

	status := pgconv.Text(strings.ToUpper(params.Status))
	country := pgconv.Text(strings.ToUpper(params.Country))
	search := pgconv.Text(params.Search)
	meta := common.NewPagination(params.Page, params.Limit, 0)

	var (
		total   int64
		rows    []dbgen.ListOrdersRow
		summary dbgen.OrderSummaryRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.store.CountOrders(gctx, dbgen.CountOrdersParams{
			Status: status, Country: country, Search: search, DateFrom: from, DateTo: to,
		})
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.store.ListOrders(gctx, dbgen.ListOrdersParams{
			Status:    status,
			Country:   country,
			Search:    search,
			DateFrom:  from,
			DateTo:    to,
			SortBy:    sortBy,
			SortDesc:  !strings.EqualFold(params.SortOrder, "asc"),
			RowLimit:  int32(meta.Limit),
			RowOffset: meta.RowOffset(),
		})
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.store.OrderSummary(gctx, dbgen.OrderSummaryParams{
			Country: country, Search: search, DateFrom: from, DateTo: to,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return Page{}, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, Order{
			ID:          pgconv.UUIDString(row.ID),
			UserID:      pgconv.UUIDString(row.UserID),
			Status:      row.Status,
			Total:       row.Total,
			Discount:    row.Discount,
			PromoCode:   pgconv.StringPtr(row.PromoCode),
			Country:     row.Country,
			CountryName: row.CountryName,
			PackageCode: row.PackageCode,
			PlanName:    row.PlanName,
			DataAmount:  row.DataAmount,
			Validity:    row.Validity,
			CreatedAt:   pgconv.Time(row.CreatedAt),
			UpdatedAt:   pgconv.Time(row.UpdatedAt),
			User:        Customer{Email: row.CustomerEmail, Name: pgconv.StringPtr(row.CustomerName)},
		})
	}
	return Page{
		Orders:     orders,
		Pagination: common.NewPagination(meta.Page, meta.Limit, total),
		Summary: Summary{
			TotalRevenue:  summary.TotalRevenue,
			TotalDiscount: summary.TotalDiscount,
			PaidOrders:    summary.PaidOrders,
		},
	}, nil
}

// Invoice loads the order with its customer and the business identity needed to render it.
func (s *Service) Invoice(ctx context.Context, id string) (invoice.Order, invoice.Business, error) {
	uid, err := pgconv.UUID(id)
	if err != nil {
		return invoice.Order{}, invoice.Business{}, errOrderNotFound()
	}
	var (
		row  dbgen.GetOrderWithCustomerRow
		conf settings.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		row, err = s.store.GetOrderWithCustomer(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		conf, err = s.settings.GetOrInitialize(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invoice.Order{}, invoice.Business{}, errOrderNotFound()
		}
		return invoice.Order{}, invoice.Business{}, fmt.Errorf("load invoice: %w", err)
	}
	return toInvoiceOrder(row), businessFrom(conf), nil
}

func toInvoiceOrder(row dbgen.GetOrderWithCustomerRow) invoice.Order {
	country := row.CountryName
	if country == "" {
		country = row.Country
	}
	return invoice.Order{
		ID:            pgconv.UUIDString(row.ID),
		CreatedAt:     pgconv.Time(row.CreatedAt),
		CustomerName:  row.CustomerName.String,
		CustomerEmail: row.CustomerEmail,
		Country:       country,
		PlanName:      row.PlanName,
		DataAmount:    row.DataAmount,
		Validity:      int(row.Validity),
		Total:         row.Total,
		Discount:      row.Discount,
		PromoCode:     row.PromoCode.String,
		Status:        row.Status,
	}
}

func businessFrom(conf settings.Settings) invoice.Business {
	return invoice.Business{
		Name:    conf.BusinessName,
		Address: conf.BusinessAddress,
		Email:   conf.BusinessEmail,
		Phone:   conf.BusinessPhone,
		VAT:     conf.BusinessVAT,
	}
}

func parseDate(value string, endOfRange bool) (pgtype.Timestamptz, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return pgtype.Timestamptz{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return pgconv.Timestamptz(t), nil
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return pgtype.Timestamptz{}, err
	}
	if endOfRange {
		t = t.Add(24 * time.Hour)
	}
	return pgconv.Timestamptz(t), nil
}

func errOrderNotFound() *common.AppError {
	return common.ErrNotFound("Order not found")
}
