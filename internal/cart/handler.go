package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/auth"
	"github.com/joao-fontenele/storefront-core/internal/catalog"
	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/pricing"
)

type Handler struct {
	repo     *Repository
	products *catalog.Repository
	logger   *slog.Logger
}

func NewHandler(repo *Repository, products *catalog.Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

type cartView struct {
	Items    []domain.CartLineItem `json:"items"`
	Subtotal decimal.Decimal       `json:"subtotal"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.repo.Add(r.Context(), user.ID, productID, 1); err != nil {
		h.logger.Error("failed to add cart item", "error", err, "user_id", user.ID, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart item added", "user_id", user.ID, "product_id", productID)
	h.writeCart(w, r, user.ID)
}

func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.writeCart(w, r, user.ID)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	lineItemID := r.PathValue("lineItemId")
	if lineItemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing line item id")
		return
	}

	removed, err := h.repo.Remove(r.Context(), user.ID, lineItemID)
	if err != nil {
		h.logger.Error("failed to remove cart item", "error", err, "user_id", user.ID, "line_item_id", lineItemID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !removed {
		h.writeError(w, http.StatusNotFound, "cart item not found")
		return
	}

	h.logger.Info("cart item removed", "user_id", user.ID, "line_item_id", lineItemID)
	h.writeCart(w, r, user.ID)
}

func (h *Handler) HandleIncrease(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, +1)
}

func (h *Handler) HandleDecrease(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, -1)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, delta int) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	lineItemID := r.PathValue("lineItemId")
	if lineItemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing line item id")
		return
	}

	found, err := h.repo.Adjust(r.Context(), user.ID, lineItemID, delta)
	if err != nil {
		h.logger.Error("failed to adjust cart item", "error", err, "user_id", user.ID, "line_item_id", lineItemID, "delta", delta)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		h.writeError(w, http.StatusNotFound, "cart item not found")
		return
	}

	h.logger.Info("cart item adjusted", "user_id", user.ID, "line_item_id", lineItemID, "delta", delta)
	h.writeCart(w, r, user.ID)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, userID string) {
	items, err := h.repo.ListItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list cart items", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	totals := pricing.ComputeTotals(items, nil)
	h.writeJSON(w, http.StatusOK, cartView{Items: items, Subtotal: totals.Subtotal})
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
