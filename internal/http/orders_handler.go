package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
)

type OrderService interface {
	ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/orders?session_id=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID, ok := requireSessionID(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(ctx, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}
