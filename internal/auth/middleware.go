package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/common"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
)

// RoleAdmin is the role allowed through RequireAdmin.
const RoleAdmin = "ADMIN"

var errNoToken = errors.New("auth: token missing")

// UserLookup resolves a user id to its record.
type UserLookup interface {
	GetUserByID(ctx context.Context, id pgtype.UUID) (dbgen.User, error)
}

// Middleware wires authentication context into HTTP handlers.
type Middleware struct {
	Tokens       *Tokens
	Users        UserLookup
	AccessCookie string
	Logger       zerolog.Logger
}

// RequireAuth enforces that a valid token is present before executing the next handler.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticate(r)
		if err != nil {
			m.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin authenticates the request, loads the user and lets it through only when
// the account is an active administrator.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticate(r)
		if err != nil {
			m.reject(w, err)
			return
		}
		role, err := m.adminRole(ctx)
		if err != nil {
			m.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithRole(ctx, role)))
	})
}

func (m Middleware) adminRole(ctx context.Context) (string, error) {
	if m.Users == nil {
		return "", common.ErrInternal("auth: user lookup not configured", nil)
	}
	userID, _ := common.UserID(ctx)
	id, err := pgconv.UUID(userID)
	if err != nil {
		return "", unauthorized(err)
	}
	user, err := m.Users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", unauthorized(err)
		}
		return "", common.ErrInternal("failed to load user", err)
	}
	if user.Role != RoleAdmin || !user.IsActive {
		return "", common.ErrForbidden()
	}
	return user.Role, nil
}

func (m Middleware) authenticate(r *http.Request) (context.Context, error) {
	if m.Tokens == nil {
		return r.Context(), common.ErrInternal("auth: token verifier not configured", nil)
	}
	token := m.extractToken(r)
	if token == "" {
		return r.Context(), unauthorized(errNoToken)
	}
	userID, err := m.Tokens.Verify(token)
	if err != nil {
		return r.Context(), err
	}
	return common.WithUserID(r.Context(), userID), nil
}

func (m Middleware) reject(w http.ResponseWriter, err error) {
	if appErr, ok := common.AsAppError(err); ok && appErr.Code == common.CodeUnauthorized {
		m.Logger.Debug().Err(appErr.Err).Msg("request rejected")
	}
	common.WriteError(w, m.Logger, err)
}

func (m Middleware) extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if m.AccessCookie != "" {
		if cookie, err := r.Cookie(m.AccessCookie); err == nil {
			if value := strings.TrimSpace(cookie.Value); value != "" {
				return value
			}
		}
	}
	return ""
}
