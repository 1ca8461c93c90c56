package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/kudos-board/internal/apperror"
	"github.com/sakif/kudos-board/internal/auth"
	"github.com/sakif/kudos-board/internal/service"
)

// AuthHandler exposes the caller's own user record.
//
// There is no login or logout here. Sign-in happens at the external identity
// provider; by the time a request reaches this handler, auth.RequireAuth has
// already verified the session token.
type AuthHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// HandleCurrentUser upserts the caller from the session claims (filling gaps
// from the userinfo endpoint when configured) and returns the stored record.
//
// HTTP: GET /api/auth/user
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Unauthorized"))
		return
	}

	user, err := h.users.CurrentUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SyncUser is middleware for write routes. It upserts the caller before the
// handler runs, so a first-time caller satisfies the kudos foreign keys
// without having visited /api/auth/user. Must run after auth.RequireAuth.
func (h *AuthHandler) SyncUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, apperror.Unauthorized("Unauthorized"))
			return
		}

		if _, err := h.users.Sync(r.Context(), id); err != nil {
			h.logger.Error("failed to sync caller",
				slog.String("userID", id.UserID),
				slog.String("error", err.Error()),
			)
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
