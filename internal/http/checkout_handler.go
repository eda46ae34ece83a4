package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/service"
)

type CheckoutService interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (string, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	SessionID       string `json:"session_id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerAddress string `json:"customer_address"`
}

type CheckoutResponseDTO struct {
	OrderID string `json:"order_id"`
}

// POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	orderID, err := h.checkout.Checkout(ctx, service.CheckoutRequest{
		SessionID:       req.SessionID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponseDTO{OrderID: orderID})
}
