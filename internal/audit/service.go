package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
)

// Action names the kind of administrative change being recorded.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionEmail   Action = "EMAIL"
	ActionRefresh Action = "REFRESH"
)

const redacted = "[REDACTED]"

// Recorder records administrative actions. Implementations must not fail the caller.
type Recorder interface {
	Record(r *http.Request, action Action, entity, entityID string, changes any)
}

// Nop discards every record.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(*http.Request, Action, string, string, any) {}

// Store defines the database operations required for auditing.
type Store interface {
	InsertAdminAuditLog(ctx context.Context, arg dbgen.InsertAdminAuditLogParams) (dbgen.AdminAuditLog, error)
	CountAdminAuditLogs(ctx context.Context, entity pgtype.Text) (int64, error)
	ListAdminAuditLogs(ctx context.Context, arg dbgen.ListAdminAuditLogsParams) ([]dbgen.AdminAuditLog, error)
}

// Service persists audit logs for administrative actions.
type Service struct {
	Store   Store
	Enabled bool
	Logger  zerolog.Logger
}

// Record persists an entry for the authenticated administrator. Write failures are logged and swallowed.
func (s Service) Record(r *http.Request, action Action, entity, entityID string, changes any) {
	if !s.Enabled || r == nil {
		return
	}
	if err := s.insert(r, action, entity, entityID, changes); err != nil {
		s.Logger.Warn().Err(err).
			Str("action", string(action)).
			Str("entity", entity).
			Str("entity_id", entityID).
			Msg("audit log write failed")
	}
}

func (s Service) insert(r *http.Request, action Action, entity, entityID string, changes any) error {
	if s.Store == nil {
		return errors.New("audit: store not configured")
	}
	adminID, ok := common.UserID(r.Context())
	if !ok {
		return errors.New("audit: no authenticated admin on request")
	}
	admin, err := pgconv.UUID(adminID)
	if err != nil {
		return err
	}
	payload, err := toJSONB(changes)
	if err != nil {
		return err
	}
	// the request may finish before the insert; keep the write independent of client cancellation
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	_, err = s.Store.InsertAdminAuditLog(ctx, dbgen.InsertAdminAuditLogParams{
		AdminID:   admin,
		Action:    string(action),
		Entity:    strings.TrimSpace(entity),
		EntityID:  pgconv.Text(entityID),
		Changes:   payload,
		IpAddress: pgconv.Text(common.ClientIP(r)),
	})
	return err
}

// Redact returns a copy of changes with the named keys replaced by a placeholder.
func Redact(changes map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(changes))
	for k, v := range changes {
		out[k] = v
	}
	for _, key := range keys {
		if _, ok := out[key]; ok {
			out[key] = redacted
		}
	}
	return out
}

func toJSONB(changes any) ([]byte, error) {
	switch v := changes.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	}
	return json.Marshal(changes)
}
