package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Middleware struct {
	provider Provider
	logger   *slog.Logger
}

func NewMiddleware(provider Provider, logger *slog.Logger) *Middleware {
	return &Middleware{
		provider: provider,
		logger:   logger,
	}
}

// RequireUser rejects anonymous requests and stores the resolved user in the
// request context for downstream handlers.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := m.provider.CurrentUser(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next(w, r.WithContext(ContextWithUser(r.Context(), user)))
	}
}

// RequireStaff additionally demands the staff role.
func (m *Middleware) RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		if user.Role != RoleStaff {
			m.logger.Warn("staff endpoint denied", "user_id", user.ID, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, "staff role required")
			return
		}

		next(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
