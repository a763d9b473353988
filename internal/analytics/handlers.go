package analytics

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/common"
)

// Handler exposes the admin dashboard statistics.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// Stats handles GET /api/v1/admin/stats?period=<days>.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "analytics service not configured", nil)
		return
	}
	period := common.QueryInt(r, "period", 0)
	stats, err := h.Svc.Stats(r.Context(), period)
	if err != nil {
		common.WriteError(w, h.Logger, common.ErrInternal("Failed to fetch stats", err))
		return
	}
	common.JSON(w, http.StatusOK, stats)
}
