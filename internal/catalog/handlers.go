package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/common"
)

// Enqueuer schedules background tasks. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Handler exposes catalog endpoints.
type Handler struct {
	service *Service
	queue   Enqueuer
	audit   audit.Recorder
	logger  zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	Queue   Enqueuer
	Audit   audit.Recorder
	Logger  zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	recorder := cfg.Audit
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{service: cfg.Service, queue: cfg.Queue, audit: recorder, logger: cfg.Logger}
}

// Packages handles GET /api/v1/packages?country=XX.
func (h *Handler) Packages(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	plans, err := h.service.PricedPackages(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": plans})
}

// Destination handles GET /api/v1/destinations/{country}.
func (h *Handler) Destination(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	dest, err := h.service.Destination(r.Context(), chi.URLParam(r, "country"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": dest})
}

// Refresh handles POST /api/v1/admin/catalog/refresh by enqueueing a warmup task.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		common.JSONError(w, http.StatusServiceUnavailable, common.CodeInternal, "task queue not configured", nil)
		return
	}
	var payload RefreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, common.ErrValidation("invalid request payload"))
		return
	}
	task, err := NewRefreshTask(normalizeCodes(payload.Countries))
	if err != nil {
		h.writeError(w, common.ErrInternal("failed to build refresh task", err))
		return
	}
	status := "queued"
	info, err := h.queue.EnqueueContext(r.Context(), task, asynq.Unique(time.Minute))
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		status = "already_queued"
	case err != nil:
		h.writeError(w, common.ErrInternal("failed to enqueue refresh", err))
		return
	}
	resp := map[string]any{"status": status}
	if info != nil {
		resp["taskId"] = info.ID
	}
	h.audit.Record(r, audit.ActionRefresh, "catalog", "", payload)
	common.JSON(w, http.StatusAccepted, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	common.WriteError(w, h.logger, catalogError(err))
}
