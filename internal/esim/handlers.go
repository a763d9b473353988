package esim

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/common"
)

// Handler exposes the admin eSIM inventory.
type Handler struct {
	Service        *Service
	Logger         zerolog.Logger
	DefaultPerPage int
	MaxPerPage     int
}

// List handles GET /api/v1/admin/esims.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	perPage := h.DefaultPerPage
	if perPage <= 0 {
		perPage = 20
	}
	page, limit := common.ParsePagination(r, perPage, h.MaxPerPage)
	q := r.URL.Query()
	params := ListParams{
		Page:      page,
		Limit:     limit,
		Status:    q.Get("status"),
		Country:   q.Get("country"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if q.Has("isGifted") {
		gifted := strings.EqualFold(q.Get("isGifted"), "true")
		params.IsGifted = &gifted
	}
	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		if _, ok := common.AsAppError(err); !ok {
			err = common.ErrInternal("Failed to fetch eSIMs", err)
		}
		common.WriteError(w, h.Logger, err)
		return
	}
	common.JSON(w, http.StatusOK, result)
}
