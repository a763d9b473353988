package order

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/common"
	"github.com/ecomitechltd/ZINEB/internal/invoice"
	"github.com/ecomitechltd/ZINEB/internal/obs"
)

// AdminHandler provides administrative order endpoints.
type AdminHandler struct {
	Service        *Service
	Mailer         common.EmailSender
	Audit          audit.Recorder
	Logger         zerolog.Logger
	DefaultPerPage int
	MaxPerPage     int
}

// List handles GET /api/v1/admin/orders.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	defaultPerPage := h.DefaultPerPage
	if defaultPerPage <= 0 {
		defaultPerPage = 20
	}
	page, limit := common.ParsePagination(r, defaultPerPage, h.MaxPerPage)
	q := r.URL.Query()
	result, err := h.Service.List(r.Context(), ListParams{
		Page:      page,
		Limit:     limit,
		Status:    q.Get("status"),
		Country:   q.Get("country"),
		Search:    q.Get("search"),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		h.writeError(w, err, "Failed to fetch orders")
		return
	}
	common.JSON(w, http.StatusOK, result)
}

// InvoicePDF handles GET /api/v1/admin/orders/{id}/pdf.
func (h *AdminHandler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	order, business, err := h.Service.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to generate invoice")
		return
	}
	pdf, err := invoice.Render(order, business)
	if err != nil {
		common.WriteError(w, h.Logger, common.ErrInternal("Failed to generate invoice", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Filename(order.ID)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// EmailInvoice handles POST /api/v1/admin/orders/{id}/invoice/email and sends the PDF to the customer.
func (h *AdminHandler) EmailInvoice(w http.ResponseWriter, r *http.Request) {
	if h.Mailer == nil {
		common.WriteError(w, h.Logger, common.NewAppError("UNAVAILABLE", "Email delivery is not configured", http.StatusServiceUnavailable, nil))
		return
	}
	order, business, err := h.Service.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to send invoice")
		return
	}
	pdf, err := invoice.Render(order, business)
	if err != nil {
		common.WriteError(w, h.Logger, common.ErrInternal("Failed to generate invoice", err))
		return
	}
	msg := invoiceEmail(order, business, pdf)
	if err := h.Mailer.Send(r.Context(), msg); err != nil {
		obs.IncDomain(obs.InvoiceEmailTotal, "error")
		common.WriteError(w, h.Logger, common.ErrInternal("Failed to send invoice", err))
		return
	}
	obs.IncDomain(obs.InvoiceEmailTotal, "ok")
	if h.Audit != nil {
		h.Audit.Record(r, audit.ActionEmail, "order", order.ID, map[string]any{"to": msg.To})
	}
	common.JSON(w, http.StatusOK, map[string]any{"success": true, "sentTo": msg.To})
}

func invoiceEmail(order invoice.Order, business invoice.Business, pdf []byte) common.Email {
	name := business.Name
	if name == "" {
		name = invoice.DefaultBusinessName
	}
	greeting := "Hi,"
	if order.CustomerName != "" {
		greeting = "Hi " + order.CustomerName + ","
	}
	number := invoice.Number(order.ID)
	return common.Email{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Your %s invoice #%s", name, number),
		Text: fmt.Sprintf("%s\n\nPlease find attached invoice #%s for your %s eSIM (%s).\nTotal: %s\n\nThank you for choosing %s!\n",
			greeting, number, order.Country, order.PlanName, invoice.FormatMoney(order.Total), name),
		Attachments: []common.Attachment{{
			Filename:    invoice.Filename(order.ID),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
}

func (h *AdminHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if _, ok := common.AsAppError(err); ok {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteError(w, h.Logger, common.ErrInternal(fallback, err))
}
