package order

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
	"github.com/ecomitechltd/ZINEB/internal/settings"
)

const orderID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"

type fakeStore struct {
	count   dbgen.CountOrdersParams
	list    dbgen.ListOrdersParams
	summary dbgen.OrderSummaryParams
	rows    []dbgen.ListOrdersRow
	orders  map[string]dbgen.GetOrderWithCustomerRow
}

func (f *fakeStore) CountOrders(_ context.Context, arg dbgen.CountOrdersParams) (int64, error) {
	f.count = arg
	return int64(len(f.rows)), nil
}

func (f *fakeStore) ListOrders(_ context.Context, arg dbgen.ListOrdersParams) ([]dbgen.ListOrdersRow, error) {
	f.list = arg
	return f.rows, nil
}

func (f *fakeStore) OrderSummary(_ context.Context, arg dbgen.OrderSummaryParams) (dbgen.OrderSummaryRow, error) {
	f.summary = arg
	return dbgen.OrderSummaryRow{TotalRevenue: 1800, TotalDiscount: 200, PaidOrders: 2}, nil
}

func (f *fakeStore) GetOrderWithCustomer(_ context.Context, id pgtype.UUID) (dbgen.GetOrderWithCustomerRow, error) {
	row, ok := f.orders[pgconv.UUIDString(id)]
	if !ok {
		return dbgen.GetOrderWithCustomerRow{}, pgx.ErrNoRows
	}
	return row, nil
}

type staticSettings struct{ s settings.Settings }

func (s staticSettings) GetOrInitialize(context.Context) (settings.Settings, error) {
	return s.s, nil
}

type recordedAudit struct {
	action audit.Action
	entity string
	id     string
}

type fakeAudit struct{ calls []recordedAudit }

func (f *fakeAudit) Record(_ *http.Request, action audit.Action, entity, entityID string, _ any) {
	f.calls = append(f.calls, recordedAudit{action: action, entity: entity, id: entityID})
}

func sampleStore() *fakeStore {
	uid, _ := pgconv.UUID(orderID)
	created := pgconv.Timestamptz(time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC))
	return &fakeStore{
		rows: []dbgen.ListOrdersRow{{
			ID:            uid,
			Status:        StatusPaid,
			Total:         800,
			Discount:      200,
			PromoCode:     pgconv.Text("WELCOME"),
			Country:       "JP",
			CountryName:   "Japan",
			PlanName:      "Japan 3GB",
			CreatedAt:     created,
			CustomerEmail: "traveller@example.com",
			CustomerName:  pgconv.Text("Aya"),
		}},
		orders: map[string]dbgen.GetOrderWithCustomerRow{
			orderID: {
				ID:            uid,
				Status:        StatusPaid,
				Total:         800,
				Discount:      200,
				PromoCode:     pgconv.Text("WELCOME"),
				Country:       "JP",
				CountryName:   "Japan",
				PlanName:      "Japan 3GB",
				DataAmount:    "3GB",
				Validity:      15,
				CreatedAt:     created,
				CustomerEmail: "traveller@example.com",
				CustomerName:  pgconv.Text("Aya"),
			},
		},
	}
}

func newAdminHandler(store *fakeStore, mailer common.EmailSender) (*AdminHandler, *fakeAudit) {
	conf := settings.Defaults()
	conf.BusinessName = "eSIMFly Ltd"
	recorder := &fakeAudit{}
	return &AdminHandler{
		Service: NewService(store, staticSettings{s: conf}),
		Mailer:  mailer,
		Audit:   recorder,
		Logger:  zerolog.Nop(),
	}, recorder
}

func withOrderID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestListOrders(t *testing.T) {
	store := sampleStore()
	h, _ := newAdminHandler(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?status=paid&country=jp&search=aya&dateFrom=2026-02-01&dateTo=2026-02-14&sortBy=total&sortOrder=asc&limit=5", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Orders, 1)
	require.Equal(t, "traveller@example.com", page.Orders[0].User.Email)
	require.Equal(t, "WELCOME", *page.Orders[0].PromoCode)
	require.Equal(t, Summary{TotalRevenue: 1800, TotalDiscount: 200, PaidOrders: 2}, page.Summary)
	require.Equal(t, 5, page.Pagination.Limit)
	require.Equal(t, int64(1), page.Pagination.Total)

	require.Equal(t, "PAID", store.count.Status.String)
	require.Equal(t, "JP", store.list.Country.String)
	require.Equal(t, "total", store.list.SortBy)
	require.False(t, store.list.SortDesc)
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), store.list.DateFrom.Time)
	require.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), store.list.DateTo.Time)
	require.Equal(t, "JP", store.summary.Country.String)
	require.Equal(t, "aya", store.summary.Search.String)

	for _, query := range []string{"dateFrom=yesterday", "dateTo=14/02/2026", "sortBy=email"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?"+query, nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestListOrdersFarPage(t *testing.T) {
	store := sampleStore()
	h, _ := newAdminHandler(store, nil)

	for _, pageParam := range []string{"107374184", "200000000", "9223372036854775807"} {
		store.rows = nil
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?limit=20&page="+pageParam, nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, int32(math.MaxInt32), store.list.RowOffset, pageParam)
		require.Equal(t, int32(20), store.list.RowLimit)

		var page Page
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		require.Empty(t, page.Orders)
	}
}

func TestInvoicePDF(t *testing.T) {
	h, _ := newAdminHandler(sampleStore(), nil)

	req := withOrderID(httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/"+orderID+"/pdf", nil), orderID)
	rec := httptest.NewRecorder()
	h.InvoicePDF(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="invoice-9a8b7c6d.pdf"`, rec.Header().Get("Content-Disposition"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	again := httptest.NewRecorder()
	h.InvoicePDF(again, withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), orderID))
	require.Equal(t, rec.Body.Bytes(), again.Body.Bytes())

	for _, id := range []string{"nope", "00000000-0000-4000-8000-000000000000"} {
		rec := httptest.NewRecorder()
		h.InvoicePDF(rec, withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), id))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestInvoicePDFIncompleteOrder(t *testing.T) {
	store := sampleStore()
	row := store.orders[orderID]
	row.CustomerEmail = ""
	store.orders[orderID] = row
	h, _ := newAdminHandler(store, nil)

	rec := httptest.NewRecorder()
	h.InvoicePDF(rec, withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), orderID))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "missing required fields")
}

func TestEmailInvoice(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	h, recorder := newAdminHandler(sampleStore(), outbox)

	rec := httptest.NewRecorder()
	h.EmailInvoice(rec, withOrderID(httptest.NewRequest(http.MethodPost, "/", nil), orderID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.JSONEq(t, `{"success":true,"sentTo":"traveller@example.com"}`, rec.Body.String())

	require.Len(t, outbox.Outbox, 1)
	msg := outbox.Outbox[0]
	require.Equal(t, "traveller@example.com", msg.To)
	require.Equal(t, "Your eSIMFly Ltd invoice #9A8B7C6D", msg.Subject)
	require.Contains(t, msg.Text, "Total: $8.00")
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "invoice-9a8b7c6d.pdf", msg.Attachments[0].Filename)
	require.True(t, bytes.HasPrefix(msg.Attachments[0].Data, []byte("%PDF")))

	require.Equal(t, []recordedAudit{{action: audit.ActionEmail, entity: "order", id: orderID}}, recorder.calls)
}

func TestEmailInvoiceWithoutMailer(t *testing.T) {
	h, _ := newAdminHandler(sampleStore(), nil)
	rec := httptest.NewRecorder()
	h.EmailInvoice(rec, withOrderID(httptest.NewRequest(http.MethodPost, "/", nil), orderID))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
