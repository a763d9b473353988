package esim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
)

// eSIM lifecycle states.
const (
	StatusInactive = "INACTIVE"
	StatusActive   = "ACTIVE"
	StatusExpired  = "EXPIRED"
	StatusDepleted = "DEPLETED"
)

var (
	gibibyte = decimal.NewFromInt(1 << 30)
	hundred  = decimal.NewFromInt(100)
)

// Store is the subset of generated queries used for the eSIM inventory.
type Store interface {
	CountEsims(ctx context.Context, arg dbgen.CountEsimsParams) (int64, error)
	ListEsims(ctx context.Context, arg dbgen.ListEsimsParams) ([]dbgen.ListEsimsRow, error)
	EsimStatusCounts(ctx context.Context) ([]dbgen.EsimStatusCountsRow, error)
}

// Service lists provisioned eSIMs for administrators.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListParams filters the inventory. IsGifted nil means either.
type ListParams struct {
	Page      int
	Limit     int
	Status    string
	Country   string
	IsGifted  *bool
	Search    string
	SortBy    string
	SortOrder string
}

// Owner is the user holding the eSIM.
type Owner struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Esim is the admin view of an eSIM with derived usage figures.
type Esim struct {
	ID            string     `json:"id"`
	OrderID       *string    `json:"orderId"`
	ICCID         string     `json:"iccid"`
	Status        string     `json:"status"`
	Country       string     `json:"country"`
	CountryName   string     `json:"countryName"`
	PlanName      string     `json:"planName"`
	DataUsed      int64      `json:"dataUsed"`
	DataLimit     int64      `json:"dataLimit"`
	DataUsedGB    float64    `json:"dataUsedGB"`
	DataLimitGB   float64    `json:"dataLimitGB"`
	UsagePercent  int64      `json:"usagePercent"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	ActivatedAt   *time.Time `json:"activatedAt"`
	IsGifted      bool       `json:"isGifted"`
	GiftedToEmail *string    `json:"giftedToEmail"`
	GiftedToName  *string    `json:"giftedToName"`
	CreatedAt     time.Time  `json:"createdAt"`
	User          Owner      `json:"user"`
}

// Page is one page of the inventory. StatusCounts covers the whole table.
type Page struct {
	Esims        []Esim            `json:"esims"`
	Pagination   common.Pagination `json:"pagination"`
	StatusCounts map[string]int64  `json:"statusCounts"`
}

// List returns one page of eSIMs with per-status totals.
func (s *Service) List(ctx context.Context, params ListParams) (Page, error) {
	sortBy := params.SortBy
	switch sortBy {
	case "":
		sortBy = "createdAt"
	case "createdAt", "expiresAt":
	default:
		return Page{}, common.ErrValidation("invalid sortBy")
	}
	status := strings.ToUpper(strings.TrimSpace(params.Status))
	switch status {
	case "", StatusInactive, StatusActive, StatusExpired, StatusDepleted:
	default:
		return Page{}, common.ErrValidation("invalid status")
	}

	filter := dbgen.CountEsimsParams{
		Status:  pgconv.Text(status),
		Country: pgconv.Text(strings.ToUpper(params.Country)),
		Search:  pgconv.Text(params.Search),
	}
	if params.IsGifted != nil {
		filter.IsGifted = pgtype.Bool{Bool: *params.IsGifted, Valid: true}
	}
	meta := common.NewPagination(params.Page, params.Limit, 0)

	var (
		total  int64
		rows   []dbgen.ListEsimsRow
		counts []dbgen.EsimStatusCountsRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.store.CountEsims(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.store.ListEsims(gctx, dbgen.ListEsimsParams{
			Status:    filter.Status,
			Country:   filter.Country,
			IsGifted:  filter.IsGifted,
			Search:    filter.Search,
			SortBy:    sortBy,
			SortDesc:  !strings.EqualFold(params.SortOrder, "asc"),
			RowLimit:  int32(meta.Limit),
			RowOffset: meta.RowOffset(),
		})
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.store.EsimStatusCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page{}, fmt.Errorf("list esims: %w", err)
	}

	page := Page{
		Esims:        make([]Esim, 0, len(rows)),
		Pagination:   common.NewPagination(meta.Page, meta.Limit, total),
		StatusCounts: make(map[string]int64, len(counts)),
	}
	for _, c := range counts {
		page.StatusCounts[c.Status] = c.Count
	}
	for _, row := range rows {
		var orderID *string
		if row.OrderID.Valid {
			id := pgconv.UUIDString(row.OrderID)
			orderID = &id
		}
		page.Esims = append(page.Esims, Esim{
			ID:            pgconv.UUIDString(row.ID),
			OrderID:       orderID,
			ICCID:         row.Iccid,
			Status:        row.Status,
			Country:       row.Country,
			CountryName:   row.CountryName,
			PlanName:      row.PlanName,
			DataUsed:      row.DataUsed,
			DataLimit:     row.DataLimit,
			DataUsedGB:    ToGB(row.DataUsed),
			DataLimitGB:   ToGB(row.DataLimit),
			UsagePercent:  UsagePercent(row.DataUsed, row.DataLimit),
			ExpiresAt:     pgconv.TimePtr(row.ExpiresAt),
			ActivatedAt:   pgconv.TimePtr(row.ActivatedAt),
			IsGifted:      row.IsGifted,
			GiftedToEmail: pgconv.StringPtr(row.GiftedToEmail),
			GiftedToName:  pgconv.StringPtr(row.GiftedToName),
			CreatedAt:     pgconv.Time(row.CreatedAt),
			User: Owner{
				ID:    pgconv.UUIDString(row.UserID),
				Email: row.CustomerEmail,
				Name:  pgconv.StringPtr(row.CustomerName),
			},
		})
	}
	return page, nil
}

// ToGB converts bytes to gibibytes.
func ToGB(b int64) float64 {
	return decimal.NewFromInt(b).Div(gibibyte).InexactFloat64()
}

// UsagePercent is used/limit as a whole percentage rounded half up, or 0 without a limit.
func UsagePercent(used, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return decimal.NewFromInt(used).Mul(hundred).Div(decimal.NewFromInt(limit)).Round(0).IntPart()
}
