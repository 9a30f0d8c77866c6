package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/storefront-core/internal/auth"
	"github.com/joao-fontenele/storefront-core/internal/catalog"
	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/session"
)

type Handler struct {
	coordinator *Coordinator
	sessions    session.Store
	logger      *slog.Logger
}

func NewHandler(coordinator *Coordinator, sessions session.Store, logger *slog.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		sessions:    sessions,
		logger:      logger,
	}
}

func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	cc, ok := h.checkoutContext(w, r)
	if !ok {
		return
	}

	result, err := h.coordinator.Preview(r.Context(), cc, time.Now().UTC())
	if err != nil {
		h.logger.Error("failed to preview checkout", "error", err, "user_id", cc.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	cc, ok := h.checkoutContext(w, r)
	if !ok {
		return
	}

	result, err := h.coordinator.Checkout(r.Context(), cc, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			h.writeError(w, http.StatusConflict, "cart is empty")
		case errors.Is(err, domain.ErrConflict):
			h.writeError(w, http.StatusConflict, "checkout conflict, please try again")
		case errors.Is(err, catalog.ErrInsufficientStock):
			h.writeError(w, http.StatusConflict, "insufficient stock")
		default:
			h.logger.Error("checkout failed", "error", err, "user_id", cc.UserID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("checkout committed",
		"order_id", result.Order.ID,
		"user_id", cc.UserID,
		"total", result.Totals.Total,
		"items", len(result.Order.Items),
	)
	h.writeJSON(w, http.StatusCreated, result)
}

// checkoutContext assembles the explicit per-attempt context: the
// authenticated user plus whatever discount code the session still holds.
func (h *Handler) checkoutContext(w http.ResponseWriter, r *http.Request) (CheckoutContext, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return CheckoutContext{}, false
	}

	code, err := h.sessions.DiscountCode(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to read session discount", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return CheckoutContext{}, false
	}

	return CheckoutContext{UserID: user.ID, DiscountCode: code}, true
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
