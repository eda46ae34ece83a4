package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-playground/validator/v10"
)

type CartService interface {
	AddItem(ctx context.Context, sessionID, productID string, delta int) (service.AddResult, error)
	GetCart(ctx context.Context, sessionID string) (domain.CartView, error)
	Cleanup(ctx context.Context, sessionID string) (int64, error)
}

type CartHandler struct {
	cart     CartService
	validate *validator.Validate
	timeout  time.Duration
}

func NewCartHandler(cart CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:     cart,
		validate: validator.New(),
		timeout:  timeout,
	}
}

// AddItemRequestDTO carries a quantity delta, not an absolute quantity.
// A missing quantity adds one unit.
type AddItemRequestDTO struct {
	SessionID string `json:"session_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

type RemovedResponse struct {
	Status string `json:"status"`
}

type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// POST /api/cart/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "session_id and product_id are required")
		return
	}

	delta := 1
	if req.Quantity != nil {
		delta = *req.Quantity
	}

	res, err := h.cart.AddItem(ctx, req.SessionID, req.ProductID, delta)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if res.Removed {
		respondJSON(w, http.StatusOK, RemovedResponse{Status: "removed"})
		return
	}
	respondJSON(w, http.StatusOK, res.Line)
}

// GET /api/cart?session_id=
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID, ok := requireSessionID(w, r)
	if !ok {
		return
	}

	view, err := h.cart.GetCart(ctx, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// DELETE /api/cart/cleanup?session_id=
func (h *CartHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID, ok := requireSessionID(w, r)
	if !ok {
		return
	}

	n, err := h.cart.Cleanup(ctx, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, CleanupResponse{Deleted: n})
}
