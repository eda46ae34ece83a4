package service

import (
	"context"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

type OrderService struct {
	repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// ListOrders returns the session's orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	return s.repo.ListOrders(ctx, sessionID)
}
