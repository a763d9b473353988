package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/catalog"
)

type destinationResponse struct {
	Data catalog.Destination `json:"data"`
}

type packagesResponse struct {
	Data []catalog.PricedPlan `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type auditCall struct {
	action audit.Action
	entity string
}

type fakeAudit struct{ calls []auditCall }

func (f *fakeAudit) Record(_ *http.Request, action audit.Action, entity, _ string, _ any) {
	f.calls = append(f.calls, auditCall{action: action, entity: entity})
}

func withCountry(req *http.Request, code string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("country", code)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCatalogHandlers(t *testing.T) {
	supplier := &fakeSupplier{plans: samplePlans()}
	svc, _ := newService(t, supplier, &clock{now: time.Now()})
	queue := &fakeQueue{}
	recorder := &fakeAudit{}
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: svc, Queue: queue, Audit: recorder, Logger: zerolog.Nop()})

	t.Run("destination", func(t *testing.T) {
		req := withCountry(httptest.NewRequest(http.MethodGet, "/api/v1/destinations/jp", nil), "jp")
		rec := httptest.NewRecorder()
		handler.Destination(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp destinationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "JP", resp.Data.Code)
		require.Len(t, resp.Data.Plans, 3)

		require.Equal(t, "ASIA-1", resp.Data.Plans[0].ID)
		require.EqualValues(t, 495, resp.Data.Plans[0].Price)
		require.Equal(t, "JP-1", resp.Data.Plans[1].ID)
		require.EqualValues(t, 550, resp.Data.Plans[1].Price)
		require.Equal(t, "JP-3", resp.Data.Plans[2].ID)
		require.Equal(t, "3GB", resp.Data.Plans[2].Data)

		require.Equal(t, []catalog.OtherDestination{
			{Code: "US", LowestPrice: 840},
			{Code: "TH", LowestPrice: 360},
			{Code: "KR", LowestPrice: 120},
		}, resp.Data.OtherDestinations)
	})

	t.Run("unknown destination", func(t *testing.T) {
		req := withCountry(httptest.NewRequest(http.MethodGet, "/api/v1/destinations/fr", nil), "fr")
		rec := httptest.NewRecorder()
		handler.Destination(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("packages by country", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/packages?country=JP", nil)
		rec := httptest.NewRecorder()
		handler.Packages(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp packagesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 3)
	})

	t.Run("all packages use global markup", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/packages", nil)
		rec := httptest.NewRecorder()
		handler.Packages(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp packagesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 6)
		for _, plan := range resp.Data {
			if plan.ID == "JP-1" {
				require.EqualValues(t, 600, plan.Price)
			}
		}
	})

	t.Run("refresh enqueues task", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/refresh", strings.NewReader(`{"countries":["jp"," JP ","us"]}`))
		rec := httptest.NewRecorder()
		handler.Refresh(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, queue.tasks, 1)
		require.Equal(t, catalog.TaskRefresh, queue.tasks[0].Type())

		var payload catalog.RefreshPayload
		require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
		require.Equal(t, []string{"JP", "US"}, payload.Countries)
		require.Equal(t, []auditCall{{action: audit.ActionRefresh, entity: "catalog"}}, recorder.calls)
	})

	t.Run("refresh without body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/refresh", nil)
		rec := httptest.NewRecorder()
		handler.Refresh(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("duplicate refresh is accepted", func(t *testing.T) {
		dup := catalog.NewHandler(catalog.HandlerConfig{Service: svc, Queue: &fakeQueue{err: asynq.ErrDuplicateTask}, Logger: zerolog.Nop()})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/refresh", nil)
		rec := httptest.NewRecorder()
		dup.Refresh(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Contains(t, rec.Body.String(), "already_queued")
	})
}

func TestDestinationUpstreamFailure(t *testing.T) {
	supplier := &fakeSupplier{err: catalog.ErrUpstream}
	svc, _ := newService(t, supplier, &clock{now: time.Now()})
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: svc, Logger: zerolog.Nop()})

	req := withCountry(httptest.NewRequest(http.MethodGet, "/api/v1/destinations/jp", nil), "jp")
	rec := httptest.NewRecorder()
	handler.Destination(rec, req)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "UPSTREAM_ERROR", resp.Error.Code)
	require.NotContains(t, rec.Body.String(), "supplier unavailable")
}
