package discount

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joao-fontenele/storefront-core/internal/auth"
	"github.com/joao-fontenele/storefront-core/internal/session"
)

type Handler struct {
	resolver *Resolver
	sessions session.Store
	logger   *slog.Logger
}

func NewHandler(resolver *Resolver, sessions session.Store, logger *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		sessions: sessions,
		logger:   logger,
	}
}

type applyRequest struct {
	DiscountCode string `json:"discount_code"`
}

type applyResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// HandleApply validates a code and stores it in the session for checkout to
// re-validate later. An invalid code also clears any previously stored one,
// so a failed apply never leaves a stale discount behind.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	code, ok := h.readCode(r)
	if !ok || code == "" {
		h.writeError(w, http.StatusBadRequest, "missing discount_code")
		return
	}

	_, err := h.resolver.Resolve(r.Context(), code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInactive) || errors.Is(err, ErrOutOfWindow) {
			if clearErr := h.sessions.ClearDiscountCode(r.Context(), user.ID); clearErr != nil {
				h.logger.Error("failed to clear session discount", "error", clearErr, "user_id", user.ID)
			}
			h.writeJSON(w, http.StatusUnprocessableEntity, applyResponse{
				Message: "invalid or expired discount code",
			})
			return
		}
		h.logger.Error("failed to resolve discount", "error", err, "code", code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.sessions.SetDiscountCode(r.Context(), user.ID, code); err != nil {
		h.logger.Error("failed to store session discount", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("discount applied", "user_id", user.ID, "code", code)
	h.writeJSON(w, http.StatusOK, applyResponse{
		Code:    code,
		Message: "discount code applied",
	})
}

// readCode accepts the code as a JSON body or a classic form field.
func (h *Handler) readCode(r *http.Request) (string, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req applyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", false
		}
		return strings.TrimSpace(req.DiscountCode), true
	}

	if err := r.ParseForm(); err != nil {
		return "", false
	}
	return strings.TrimSpace(r.PostFormValue("discount_code")), true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
