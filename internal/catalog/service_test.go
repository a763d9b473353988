package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ecomitechltd/ZINEB/internal/catalog"
	"github.com/ecomitechltd/ZINEB/internal/pricing"
	"github.com/ecomitechltd/ZINEB/internal/resilience"
)

const gb = int64(1 << 30)

type fakeSupplier struct {
	mu    sync.Mutex
	plans map[string][]catalog.Plan
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (f *fakeSupplier) FetchPackages(ctx context.Context, location string) ([]catalog.Plan, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.plans[location], nil
}

func (f *fakeSupplier) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type staticRates struct{ rates pricing.Rates }

func (s staticRates) Rates(context.Context) (pricing.Rates, error) { return s.rates, nil }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func samplePlans() map[string][]catalog.Plan {
	jp := []catalog.Plan{
		{PackageCode: "JP-3", Location: "JP", Volume: 3 * gb, Duration: 15, BasePrice: 900},
		{PackageCode: "JP-1", Location: "JP", Volume: gb, Duration: 7, BasePrice: 500},
		{PackageCode: "ASIA-1", Location: "JP,KR,TH", Volume: gb, Duration: 7, BasePrice: 450,
			Networks: []catalog.Network{{LocationName: "Japan", Operators: []catalog.Operator{{Name: "Docomo", NetworkType: "5G"}}}}},
		{PackageCode: "KR-ONLY", Location: "KR", Volume: gb, Duration: 7, BasePrice: 100},
	}
	all := append([]catalog.Plan{}, jp...)
	all = append(all,
		catalog.Plan{PackageCode: "US-1", Location: "US", Volume: gb, Duration: 7, BasePrice: 700},
		catalog.Plan{PackageCode: "TH-1", Location: "TH", Volume: 512 << 20, Duration: 5, BasePrice: 300},
	)
	return map[string][]catalog.Plan{"JP": jp, "": all}
}

func newService(t *testing.T, supplier catalog.Supplier, clk *clock) (*catalog.Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, err := catalog.NewService(catalog.ServiceConfig{
		Supplier:       supplier,
		Cache:          catalog.NewCache(client, 35*time.Minute),
		Rates:          staticRates{rates: pricing.NewRates(20, `{"JP": 10}`)},
		Freshness:      5 * time.Minute,
		StaleTolerance: 30 * time.Minute,
		Logger:         zerolog.Nop(),
		Now:            clk.Now,
	})
	require.NoError(t, err)
	return svc, mr
}

func TestPackagesServedFromCacheWithinFreshness(t *testing.T) {
	supplier := &fakeSupplier{plans: samplePlans()}
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc, mr := newService(t, supplier, clk)
	ctx := context.Background()

	first, err := svc.PackagesByCountry(ctx, "jp")
	require.NoError(t, err)
	require.Len(t, first, 4)
	require.True(t, mr.Exists("catalog:packages:JP"))

	clk.Advance(4 * time.Minute)
	second, err := svc.PackagesByCountry(ctx, "JP")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, supplier.calls.Load())

	clk.Advance(2 * time.Minute)
	_, err = svc.PackagesByCountry(ctx, "JP")
	require.NoError(t, err)
	require.EqualValues(t, 2, supplier.calls.Load())
}

func TestAllPackagesUsesSeparateKey(t *testing.T) {
	supplier := &fakeSupplier{plans: samplePlans()}
	svc, mr := newService(t, supplier, &clock{now: time.Now()})

	plans, err := svc.AllPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 6)
	require.True(t, mr.Exists("catalog:packages:all"))
	require.False(t, mr.Exists("catalog:packages:JP"))
}

func TestStaleEntryServedOnSupplierFailure(t *testing.T) {
	supplier := &fakeSupplier{plans: samplePlans()}
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, supplier, clk)
	ctx := context.Background()

	fresh, err := svc.PackagesByCountry(ctx, "JP")
	require.NoError(t, err)

	supplier.fail(catalog.ErrUpstream)
	clk.Advance(20 * time.Minute)
	stale, err := svc.PackagesByCountry(ctx, "JP")
	require.NoError(t, err)
	require.Equal(t, fresh, stale)

	clk.Advance(16 * time.Minute)
	_, err = svc.PackagesByCountry(ctx, "JP")
	require.ErrorIs(t, err, catalog.ErrUpstream)
}

func TestSupplierFailureWithoutCachePropagates(t *testing.T) {
	supplier := &fakeSupplier{err: errors.New("connection refused")}
	svc, _ := newService(t, supplier, &clock{now: time.Now()})

	_, err := svc.AllPackages(context.Background())
	require.ErrorIs(t, err, catalog.ErrUpstream)
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	supplier := &fakeSupplier{plans: samplePlans(), block: make(chan struct{})}
	svc, _ := newService(t, supplier, &clock{now: time.Now()})

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PackagesByCountry(context.Background(), "JP")
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return supplier.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(supplier.block)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.LessOrEqual(t, supplier.calls.Load(), int32(2))
}

func TestSharedFetchSurvivesFirstCallerCancel(t *testing.T) {
	supplier := &fakeSupplier{plans: samplePlans(), block: make(chan struct{})}
	svc, _ := newService(t, supplier, &clock{now: time.Now()})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.PackagesByCountry(firstCtx, "JP")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return supplier.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		plans []catalog.Plan
		err   error
	}
	second := make(chan result, 1)
	go func() {
		plans, err := svc.PackagesByCountry(context.Background(), "JP")
		second <- result{plans, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(supplier.block)

	got := <-second
	require.NoError(t, got.err)
	require.Len(t, got.plans, 4)
	require.NoError(t, <-firstErr)
	require.Equal(t, int32(1), supplier.calls.Load())
}

func TestSharedFetchTimeout(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	supplier := &fakeSupplier{plans: samplePlans(), block: make(chan struct{})}
	defer close(supplier.block)
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Supplier:     supplier,
		Cache:        catalog.NewCache(client, 35*time.Minute),
		FetchTimeout: 30 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), "JP")
	require.ErrorIs(t, err, catalog.ErrUpstream)
}

func TestRefreshOverwritesFreshEntry(t *testing.T) {
	supplier := &fakeSupplier{plans: samplePlans()}
	svc, _ := newService(t, supplier, &clock{now: time.Now()})
	ctx := context.Background()

	_, err := svc.PackagesByCountry(ctx, "JP")
	require.NoError(t, err)
	n, err := svc.Refresh(ctx, "jp")
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.EqualValues(t, 2, supplier.calls.Load())
}

func TestFilterByCountry(t *testing.T) {
	plans := []catalog.Plan{
		{PackageCode: "a", Location: "JP"},
		{PackageCode: "b", Location: "KR, JP ,TH"},
		{PackageCode: "c", Location: "JPN"},
		{PackageCode: "d", Location: ""},
	}
	got := catalog.FilterByCountry(plans, "jp")
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].PackageCode)
	require.Equal(t, "b", got[1].PackageCode)
	require.Empty(t, catalog.FilterByCountry(plans, ""))
}

func TestFormatData(t *testing.T) {
	require.Equal(t, "1GB", catalog.FormatData(gb))
	require.Equal(t, "1.5GB", catalog.FormatData(gb+gb/2))
	require.Equal(t, "20GB", catalog.FormatData(20*gb))
	require.Equal(t, "500MB", catalog.FormatData(500<<20))
	require.Equal(t, "0MB", catalog.FormatData(0))
}

func TestToCents(t *testing.T) {
	require.EqualValues(t, 150, catalog.ToCents(15000, 100))
	require.EqualValues(t, 2, catalog.ToCents(150, 100))
	require.EqualValues(t, 1, catalog.ToCents(149, 100))
	require.EqualValues(t, 42, catalog.ToCents(42, 1))
}

func TestSupplierClientFetchPackages(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/open/package/list" || r.Header.Get("RT-AccessCode") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"obj": {"packageList": [{
				"packageCode": "CKH491", "slug": "JP_1_7", "name": "Japan 1GB 7Days",
				"price": 45000, "currencyCode": "USD", "volume": 1073741824,
				"duration": 7, "durationUnit": "DAY", "location": "JP", "speed": "4G/5G",
				"dataType": 1,
				"locationNetworkList": [{"locationName": "Japan", "operatorList": [{"operatorName": "SoftBank", "networkType": "5G"}]}]
			}]}
		}`))
	}))
	t.Cleanup(srv.Close)

	client := catalog.SupplierClient{
		BaseURL:    srv.URL + "/",
		AccessCode: "secret",
		PriceScale: 100,
		HTTP:       resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	}
	plans, err := client.FetchPackages(context.Background(), "jp")
	require.NoError(t, err)
	require.Equal(t, "JP", gotBody["locationCode"])
	require.Len(t, plans, 1)
	require.Equal(t, "CKH491", plans[0].PackageCode)
	require.EqualValues(t, 450, plans[0].BasePrice)
	require.Equal(t, "SoftBank", plans[0].Networks[0].Operators[0].Name)
}

func TestSupplierClientReportsUnsuccessfulPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "errorCode": "000101", "errorMsg": "bad access code"}`))
	}))
	t.Cleanup(srv.Close)

	client := catalog.SupplierClient{BaseURL: srv.URL, HTTP: resilience.HTTPClient{Client: srv.Client()}}
	_, err := client.FetchPackages(context.Background(), "")
	require.ErrorIs(t, err, catalog.ErrUpstream)
	require.Contains(t, err.Error(), "bad access code")
}
