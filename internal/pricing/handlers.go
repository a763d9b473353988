package pricing

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/common"
)

// Handler exposes the admin markup preview.
type Handler struct {
	Markup Markup
	Logger zerolog.Logger
}

// Preview handles GET /api/v1/admin/pricing/preview?base=500&country=JP.
func (h Handler) Preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	base, err := strconv.ParseInt(strings.TrimSpace(q.Get("base")), 10, 64)
	if err != nil || base < 0 {
		common.WriteError(w, h.Logger, common.ErrValidation("base must be a non-negative integer amount in cents"))
		return
	}
	quote, err := h.Markup.Preview(r.Context(), base, q.Get("country"))
	if err != nil {
		common.WriteError(w, h.Logger, common.ErrInternal("Failed to load pricing settings", err))
		return
	}
	common.JSON(w, http.StatusOK, quote)
}
