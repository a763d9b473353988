package settings

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/pricing"
)

// memStore emulates the settings table including column defaults and COALESCE updates.
type memStore struct {
	mu        sync.Mutex
	row       *dbgen.Setting
	inits     int
	initRaced bool
}

func defaultRow() dbgen.Setting {
	return dbgen.Setting{
		ID:                SingletonID,
		MarkupPercent:     20,
		RegionalMarkup:    "{}",
		MinOrderValue:     100,
		FreeDataThreshold: 5000,
		FreeDataBonus:     500,
		ReferralBonus:     500,
		RefereeBonus:      300,
	}
}

func (m *memStore) GetSettings(context.Context) (dbgen.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return dbgen.Setting{}, pgx.ErrNoRows
	}
	return *m.row, nil
}

func (m *memStore) InitSettings(context.Context) (dbgen.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initRaced {
		// another writer inserted first; ON CONFLICT DO NOTHING returns no row
		row := defaultRow()
		m.row = &row
		m.initRaced = false
		return dbgen.Setting{}, pgx.ErrNoRows
	}
	if m.row != nil {
		return dbgen.Setting{}, pgx.ErrNoRows
	}
	m.inits++
	row := defaultRow()
	m.row = &row
	return row, nil
}

func (m *memStore) UpdateSettings(_ context.Context, arg dbgen.UpdateSettingsParams) (dbgen.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return dbgen.Setting{}, pgx.ErrNoRows
	}
	row := *m.row
	if arg.MarkupPercent.Valid {
		row.MarkupPercent = arg.MarkupPercent.Int32
	}
	if arg.RegionalMarkup.Valid {
		row.RegionalMarkup = arg.RegionalMarkup.String
	}
	if arg.MinOrderValue.Valid {
		row.MinOrderValue = arg.MinOrderValue.Int64
	}
	if arg.ReferralBonus.Valid {
		row.ReferralBonus = arg.ReferralBonus.Int64
	}
	if arg.BusinessName.Valid {
		row.BusinessName = arg.BusinessName
	}
	m.row = &row
	return row, nil
}

func TestGetOrInitializeCreatesOnce(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	first, err := svc.GetOrInitialize(context.Background())
	require.NoError(t, err)
	second, err := svc.GetOrInitialize(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, store.inits)
	require.Equal(t, first, second)

	want := Defaults()
	require.Equal(t, want.MarkupPercent, first.MarkupPercent)
	require.Equal(t, want.MinOrderValue, first.MinOrderValue)
	require.Equal(t, want.FreeDataThreshold, first.FreeDataThreshold)
	require.Equal(t, want.FreeDataBonus, first.FreeDataBonus)
	require.Equal(t, want.ReferralBonus, first.ReferralBonus)
	require.Equal(t, want.RefereeBonus, first.RefereeBonus)
	require.JSONEq(t, "{}", string(first.RegionalMarkup))
}

func TestGetOrInitializeLostRaceRereads(t *testing.T) {
	store := &memStore{initRaced: true}
	got, err := NewService(store).GetOrInitialize(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(20), got.MarkupPercent)
	require.Equal(t, 0, store.inits)
}

func TestGetOrInitializeConcurrentCallers(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetOrInitialize(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, store.inits)
}

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	var patch Patch
	require.NoError(t, json.Unmarshal([]byte(`{"markupPercent":"25","regionalMarkup":{"JP":10},"businessName":" Fly Ltd "}`), &patch))

	updated, err := svc.Update(context.Background(), patch)
	require.NoError(t, err)
	require.Equal(t, int32(25), updated.MarkupPercent)
	require.Equal(t, int64(100), updated.MinOrderValue)
	require.Equal(t, "Fly Ltd", updated.BusinessName)
	require.JSONEq(t, `{"JP":10}`, string(updated.RegionalMarkup))
	require.Equal(t, 1, store.inits)

	rates, err := svc.Rates(context.Background())
	require.NoError(t, err)
	require.Equal(t, pricing.Money(550), pricing.ApplyMarkup(500, rates, "JP"))
	require.Equal(t, pricing.Money(625), pricing.ApplyMarkup(500, rates, "US"))
}

func TestUpdateRejectsOutOfRangeInt4(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	for _, body := range []string{
		`{"markupPercent":4294967306}`,
		`{"markupPercent":2147483648}`,
		`{"markupPercent":"-2147483649"}`,
		`{"freeDataBonus":1e30}`,
	} {
		var patch Patch
		require.NoError(t, json.Unmarshal([]byte(body), &patch), body)
		_, err := svc.Update(context.Background(), patch)
		ae, ok := common.AsAppError(err)
		require.True(t, ok, body)
		require.Equal(t, http.StatusBadRequest, ae.HTTPStatus, body)
	}
	require.Nil(t, store.row)

	var patch Patch
	require.NoError(t, json.Unmarshal([]byte(`{"markupPercent":2147483647}`), &patch))
	updated, err := svc.Update(context.Background(), patch)
	require.NoError(t, err)
	require.Equal(t, int32(math.MaxInt32), updated.MarkupPercent)
}

func TestNumberCoercion(t *testing.T) {
	cases := map[string]Number{
		`12`:     12,
		`"15"`:   15,
		`"abc"`:  0,
		`20.9`:   20,
		`true`:   0,
		`"  7 "`: 7,
		`1e30`:   math.MaxInt64,
		`-1e30`:  math.MinInt64,
	}
	for input, want := range cases {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(input), &n), input)
		require.Equal(t, want, n, input)
	}
}

func TestMalformedStoredRegionalFallsBack(t *testing.T) {
	row := defaultRow()
	row.RegionalMarkup = "{not json"
	row.BusinessVat = pgtype.Text{String: "GB123", Valid: true}
	s := fromRow(row)
	require.JSONEq(t, "{}", string(s.RegionalMarkup))
	require.Equal(t, "GB123", s.BusinessVAT)
	require.Equal(t, pricing.Money(600), pricing.ApplyMarkup(500, s.Rates(), "JP"))
}

func TestRegionalTextAcceptsStringOrObject(t *testing.T) {
	require.Equal(t, `{"JP":10}`, regionalText(json.RawMessage(`{ "JP": 10 }`)).String)
	require.Equal(t, `{"TH":5}`, regionalText(json.RawMessage(`"{\"TH\":5}"`)).String)
	require.False(t, regionalText(json.RawMessage(`null`)).Valid)
	require.False(t, regionalText(nil).Valid)
}

type recordingAudit struct {
	actions []audit.Action
}

func (r *recordingAudit) Record(_ *http.Request, action audit.Action, _, _ string, _ any) {
	r.actions = append(r.actions, action)
}

func TestHandlerGetAndUpdate(t *testing.T) {
	rec := &recordingAudit{}
	h := Handler{Service: NewService(&memStore{}), Audit: rec}

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/settings", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"markupPercent":20`)

	rr = httptest.NewRecorder()
	h.Update(rr, httptest.NewRequest(http.MethodPatch, "/api/v1/admin/settings", strings.NewReader(`{"referralBonus":750}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"referralBonus":750`)
	require.Equal(t, []audit.Action{audit.ActionUpdate}, rec.actions)

	rr = httptest.NewRecorder()
	h.Update(rr, httptest.NewRequest(http.MethodPatch, "/api/v1/admin/settings", strings.NewReader(`{`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.Update(rr, httptest.NewRequest(http.MethodPatch, "/api/v1/admin/settings", strings.NewReader(`{"markupPercent":4294967306}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "markupPercent is out of range")
	require.Len(t, rec.actions, 1)

	rr = httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/settings", nil))
	require.Contains(t, rr.Body.String(), `"markupPercent":20`)
}
