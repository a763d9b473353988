package audit

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
)

// Handler exposes HTTP endpoints for working with audit logs.
type Handler struct {
	Store          Store
	Logger         zerolog.Logger
	DefaultPerPage int
	MaxPerPage     int
}

// Entry is the API view of an audit log row.
type Entry struct {
	ID        string          `json:"id"`
	AdminID   string          `json:"adminId"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  *string         `json:"entityId"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	IPAddress *string         `json:"ipAddress"`
	CreatedAt time.Time       `json:"createdAt"`
}

// List returns a paginated list of audit logs for administrators.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "audit store not configured", nil)
		return
	}
	page, limit := common.ParsePagination(r, h.DefaultPerPage, h.MaxPerPage)
	if limit <= 0 {
		limit = 20
	}
	entity := pgconv.Text(strings.ToLower(r.URL.Query().Get("entity")))
	meta := common.NewPagination(page, limit, 0)

	var (
		total int64
		rows  []dbgen.AdminAuditLog
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		total, err = h.Store.CountAdminAuditLogs(ctx, entity)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = h.Store.ListAdminAuditLogs(ctx, dbgen.ListAdminAuditLogsParams{
			Entity:    entity,
			RowLimit:  int32(meta.Limit),
			RowOffset: meta.RowOffset(),
		})
		return err
	})
	if err := g.Wait(); err != nil {
		common.WriteError(w, h.Logger, common.ErrInternal("unable to fetch audit logs", err))
		return
	}

	logs := make([]Entry, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, Entry{
			ID:        pgconv.UUIDString(row.ID),
			AdminID:   pgconv.UUIDString(row.AdminID),
			Action:    row.Action,
			Entity:    row.Entity,
			EntityID:  pgconv.StringPtr(row.EntityID),
			Changes:   json.RawMessage(row.Changes),
			IPAddress: pgconv.StringPtr(row.IpAddress),
			CreatedAt: pgconv.Time(row.CreatedAt),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"logs":       logs,
		"pagination": common.NewPagination(page, limit, total),
	})
}
