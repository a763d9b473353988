package user

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/common"
)

const auditEntity = "user"

// Handler exposes REST endpoints for administering user accounts.
type Handler struct {
	Service        *Service
	Audit          audit.Recorder
	Logger         zerolog.Logger
	DefaultPerPage int
	MaxPerPage     int
}

// List handles GET /api/v1/admin/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.perPage(), h.MaxPerPage)
	q := r.URL.Query()
	users, meta, err := h.Service.List(r.Context(), ListParams{
		Page:      page,
		Limit:     limit,
		Search:    q.Get("search"),
		Role:      strings.ToUpper(strings.TrimSpace(q.Get("role"))),
		SortBy:    q.Get("sortBy"),
		SortOrder: strings.ToLower(q.Get("sortOrder")),
	})
	if err != nil {
		h.writeError(w, err, "Failed to fetch users")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"users": users, "pagination": meta})
}

// Create handles POST /api/v1/admin/users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, h.Logger, common.ErrValidation("invalid request payload"))
		return
	}
	created, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to create user")
		return
	}
	h.record(r, audit.ActionCreate, created.ID, map[string]any{
		"email":   created.Email,
		"name":    created.Name,
		"role":    created.Role,
		"credits": created.Credits,
	})
	common.JSON(w, http.StatusCreated, map[string]any{"user": created})
}

// Get handles GET /api/v1/admin/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to fetch user")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"user": detail})
}

// Update handles PATCH /api/v1/admin/users/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, h.Logger, common.ErrValidation("invalid request payload"))
		return
	}
	id := chi.URLParam(r, "id")
	updated, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "Failed to update user")
		return
	}
	h.record(r, audit.ActionUpdate, updated.ID, audit.Redact(req.Changes(), "password"))
	common.JSON(w, http.StatusOK, map[string]any{"user": updated})
}

// Delete handles DELETE /api/v1/admin/users/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := common.UserID(r.Context())
	id := chi.URLParam(r, "id")
	email, err := h.Service.Delete(r.Context(), actorID, id)
	if err != nil {
		h.writeError(w, err, "Failed to delete user")
		return
	}
	h.record(r, audit.ActionDelete, id, map[string]any{"email": email})
	common.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) record(r *http.Request, action audit.Action, id string, changes any) {
	if h.Audit != nil {
		h.Audit.Record(r, action, auditEntity, id, changes)
	}
}

func (h *Handler) perPage() int {
	if h.DefaultPerPage > 0 {
		return h.DefaultPerPage
	}
	return 20
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if _, ok := common.AsAppError(err); ok {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteError(w, h.Logger, common.ErrInternal(fallback, err))
}
