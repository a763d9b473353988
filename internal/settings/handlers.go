package settings

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/common"
)

// Handler exposes the admin settings endpoints.
type Handler struct {
	Service *Service
	Audit   audit.Recorder
	Logger  zerolog.Logger
}

// Get returns the settings singleton, creating it with defaults on first access.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.Service.GetOrInitialize(r.Context())
	if err != nil {
		common.WriteError(w, h.Logger, common.ErrInternal("failed to load settings", err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"settings": current})
}

// Update merges the supplied fields into the singleton.
func (h Handler) Update(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		common.WriteError(w, h.Logger, common.ErrValidation("invalid request payload"))
		return
	}
	var patch Patch
	if err := json.Unmarshal(raw, &patch); err != nil {
		common.WriteError(w, h.Logger, common.ErrValidation("invalid request payload"))
		return
	}
	updated, err := h.Service.Update(r.Context(), patch)
	if err != nil {
		if _, ok := common.AsAppError(err); !ok {
			err = common.ErrInternal("failed to update settings", err)
		}
		common.WriteError(w, h.Logger, err)
		return
	}
	if h.Audit != nil {
		h.Audit.Record(r, audit.ActionUpdate, "settings", SingletonID, raw)
	}
	common.JSON(w, http.StatusOK, map[string]any{"settings": updated})
}
