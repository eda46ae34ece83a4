package repository

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrDuplicateLine   = errors.New("cart line already exists for product")
)

const (
	productCollection = "product"
	cartCollection    = "cart"
	orderCollection   = "order"
)

// ProductFilter narrows a product listing. An empty Category matches every product.
type ProductFilter struct {
	Category string
	Limit    int64
}

// ProductRepository defines the interface for catalog data operations
type ProductRepository interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	InsertProducts(ctx context.Context, products []domain.Product) (int, error)
	DeleteAllProducts(ctx context.Context) (int64, error)
}

// CartRepository defines the interface for cart line operations.
// Lines are addressed either by their own id or by (session, product).
type CartRepository interface {
	FindLine(ctx context.Context, sessionID string, productID primitive.ObjectID) (*domain.CartLine, error)
	ListLines(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	// InsertLine stores a new line and fills its ID. It returns ErrDuplicateLine
	// when the session already holds a line for the product.
	InsertLine(ctx context.Context, line *domain.CartLine) error
	// IncrementQuantity adds delta to the stored quantity and returns the updated line.
	IncrementQuantity(ctx context.Context, lineID primitive.ObjectID, delta int) (*domain.CartLine, error)
	DeleteLine(ctx context.Context, lineID primitive.ObjectID) error
	DeleteNonPositive(ctx context.Context, sessionID string) (int64, error)
	DeleteSession(ctx context.Context, sessionID string) (int64, error)
	DeleteLines(ctx context.Context, sessionID string, lineIDs []primitive.ObjectID) (int64, error)
}

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	// ListOrders returns the orders of a session, newest first.
	ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error)
}

// Diagnostics describes the reachability of the backing store.
// Faults are reported as text instead of errors.
type Diagnostics struct {
	Backend      string   `json:"backend"`
	Database     string   `json:"database"`
	DatabaseName string   `json:"database_name,omitempty"`
	Collections  []string `json:"collections"`
}

type StatusReporter interface {
	Diagnose(ctx context.Context) Diagnostics
}
