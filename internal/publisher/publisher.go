package publisher

import (
	"context"

	"github.com/fjod/storefront/internal/domain"
)

const EventOrderPlaced = "OrderPlaced"

// OrderPublisher announces orders that have been persisted.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error
	Close() error
}

type noopPublisher struct{}

func NewNoop() OrderPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishOrderPlaced(context.Context, domain.OrderPlaced) error { return nil }

func (noopPublisher) Close() error { return nil }
