package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
)

const (
	topCountriesLimit   = 10
	recentActivityLimit = 10
	maxPeriodDays       = 365
)

// Querier defines the database access required for dashboard statistics.
type Querier interface {
	CountAllUsers(ctx context.Context) (int64, error)
	CountUsersSince(ctx context.Context, since pgtype.Timestamptz) (int64, error)
	CountAllOrders(ctx context.Context) (int64, error)
	CountOrdersSince(ctx context.Context, since pgtype.Timestamptz) (int64, error)
	SumPaidRevenue(ctx context.Context) (int64, error)
	SumPaidRevenueSince(ctx context.Context, since pgtype.Timestamptz) (int64, error)
	CountAllEsims(ctx context.Context) (int64, error)
	CountEsimsWithStatus(ctx context.Context, status string) (int64, error)
	OrdersByStatus(ctx context.Context) ([]dbgen.OrdersByStatusRow, error)
	TopCountries(ctx context.Context, limit int32) ([]dbgen.TopCountriesRow, error)
	RecentOrders(ctx context.Context, limit int32) ([]dbgen.RecentOrdersRow, error)
	DailyStats(ctx context.Context, since pgtype.Timestamptz) ([]dbgen.DailyStatsRow, error)
}

// Service computes the admin dashboard statistics, cached in Redis for TTL.
type Service struct {
	Q             Querier
	R             *redis.Client
	TTL           time.Duration
	DefaultPeriod int
	Now           func() time.Time
}

// Overview holds the headline counters.
type Overview struct {
	TotalUsers    int64 `json:"totalUsers"`
	NewUsers      int64 `json:"newUsers"`
	TotalOrders   int64 `json:"totalOrders"`
	RecentOrders  int64 `json:"recentOrders"`
	TotalRevenue  int64 `json:"totalRevenue"`
	RecentRevenue int64 `json:"recentRevenue"`
	TotalEsims    int64 `json:"totalEsims"`
	ActiveEsims   int64 `json:"activeEsims"`
}

// CountryStat is the paid order count and revenue for one destination.
type CountryStat struct {
	Country     string `json:"country"`
	CountryName string `json:"countryName"`
	Orders      int64  `json:"orders"`
	Revenue     int64  `json:"revenue"`
}

// Activity is a recent order with its customer.
type Activity struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`
	CountryName string    `json:"countryName"`
	PlanName    string    `json:"planName"`
	CreatedAt   time.Time `json:"createdAt"`
	User        struct {
		Email string  `json:"email"`
		Name  *string `json:"name"`
	} `json:"user"`
}

// DailyStat is the paid order volume for one calendar day.
type DailyStat struct {
	Date    string `json:"date"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// Stats is the full dashboard payload.
type Stats struct {
	Period         int              `json:"period"`
	Overview       Overview         `json:"overview"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	TopCountries   []CountryStat    `json:"topCountries"`
	RecentActivity []Activity       `json:"recentActivity"`
	DailyStats     []DailyStat      `json:"dailyStats"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Period clamps a requested period in days, falling back to the default.
func (s *Service) Period(days int) int {
	if days <= 0 {
		days = s.DefaultPeriod
	}
	if days <= 0 {
		days = 30
	}
	if days > maxPeriodDays {
		days = maxPeriodDays
	}
	return days
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// Stats returns dashboard statistics for the trailing period. All aggregates run
// concurrently; any failure fails the whole call.
func (s *Service) Stats(ctx context.Context, days int) (Stats, error) {
	if s == nil || s.Q == nil {
		return Stats{}, fmt.Errorf("analytics service not configured")
	}
	days = s.Period(days)
	key := cacheKey("an", "stats", days)
	var cached Stats
	if s.load(ctx, key, &cached) {
		return cached, nil
	}

	since := pgconv.Timestamptz(s.now().AddDate(0, 0, -days))
	out := Stats{Period: days}
	var (
		byStatus  []dbgen.OrdersByStatusRow
		countries []dbgen.TopCountriesRow
		recent    []dbgen.RecentOrdersRow
		daily     []dbgen.DailyStatsRow
	)
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			v, err := fn(gctx)
			*dst = v
			return err
		})
	}
	count(&out.Overview.TotalUsers, s.Q.CountAllUsers)
	count(&out.Overview.NewUsers, func(ctx context.Context) (int64, error) { return s.Q.CountUsersSince(ctx, since) })
	count(&out.Overview.TotalOrders, s.Q.CountAllOrders)
	count(&out.Overview.RecentOrders, func(ctx context.Context) (int64, error) { return s.Q.CountOrdersSince(ctx, since) })
	count(&out.Overview.TotalRevenue, s.Q.SumPaidRevenue)
	count(&out.Overview.RecentRevenue, func(ctx context.Context) (int64, error) { return s.Q.SumPaidRevenueSince(ctx, since) })
	count(&out.Overview.TotalEsims, s.Q.CountAllEsims)
	count(&out.Overview.ActiveEsims, func(ctx context.Context) (int64, error) { return s.Q.CountEsimsWithStatus(ctx, "ACTIVE") })
	g.Go(func() error {
		var err error
		byStatus, err = s.Q.OrdersByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		countries, err = s.Q.TopCountries(gctx, topCountriesLimit)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.Q.RecentOrders(gctx, recentActivityLimit)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.Q.DailyStats(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("dashboard stats: %w", err)
	}

	out.OrdersByStatus = make(map[string]int64, len(byStatus))
	for _, row := range byStatus {
		out.OrdersByStatus[row.Status] = row.Count
	}
	out.TopCountries = make([]CountryStat, 0, len(countries))
	for _, row := range countries {
		out.TopCountries = append(out.TopCountries, CountryStat{
			Country: row.Country, CountryName: row.CountryName, Orders: row.Orders, Revenue: row.Revenue,
		})
	}
	out.RecentActivity = make([]Activity, 0, len(recent))
	for _, row := range recent {
		a := Activity{
			ID:          pgconv.UUIDString(row.ID),
			Status:      row.Status,
			Total:       row.Total,
			CountryName: row.CountryName,
			PlanName:    row.PlanName,
			CreatedAt:   pgconv.Time(row.CreatedAt),
		}
		a.User.Email = row.CustomerEmail
		a.User.Name = pgconv.StringPtr(row.CustomerName)
		out.RecentActivity = append(out.RecentActivity, a)
	}
	out.DailyStats = make([]DailyStat, 0, len(daily))
	for _, row := range daily {
		out.DailyStats = append(out.DailyStats, DailyStat{Date: row.Day, Orders: row.Orders, Revenue: row.Revenue})
	}

	s.store(ctx, key, out)
	return out, nil
}

func (s *Service) load(ctx context.Context, key string, dst any) bool {
	if s.R == nil || s.TTL <= 0 {
		return false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
