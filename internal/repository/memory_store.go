package repository

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore implements the product, cart and order repositories with in-memory storage.
// It enforces the same one-line-per-product constraint as the Mongo unique index.
type MemoryStore struct {
	mu         sync.RWMutex
	products   map[primitive.ObjectID]domain.Product
	productIDs []primitive.ObjectID // insertion order
	lines      map[primitive.ObjectID]domain.CartLine
	orders     []domain.Order
}

// NewMemoryStore creates a new empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[primitive.ObjectID]domain.Product),
		lines:    make(map[primitive.ObjectID]domain.CartLine),
	}
}

// GetProduct returns a copy of the stored product
func (s *MemoryStore) GetProduct(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// ListProducts returns products in insertion order
func (s *MemoryStore) ListProducts(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0)
	for _, id := range s.productIDs {
		p := s.products[id]
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && int64(len(out)) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) CountProducts(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *MemoryStore) InsertProducts(_ context.Context, products []domain.Product) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range products {
		if products[i].ID.IsZero() {
			products[i].ID = primitive.NewObjectID()
		}
		if _, exists := s.products[products[i].ID]; !exists {
			s.productIDs = append(s.productIDs, products[i].ID)
		}
		s.products[products[i].ID] = products[i]
	}
	return len(products), nil
}

func (s *MemoryStore) DeleteAllProducts(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.products))
	s.products = make(map[primitive.ObjectID]domain.Product)
	s.productIDs = nil
	return n, nil
}

// DeleteProduct removes a single product. Only tests use it, to simulate a
// product vanishing while still referenced by cart lines.
func (s *MemoryStore) DeleteProduct(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	s.productIDs = slices.DeleteFunc(s.productIDs, func(x primitive.ObjectID) bool { return x == id })
}

func (s *MemoryStore) FindLine(_ context.Context, sessionID string, productID primitive.ObjectID) (*domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.lines {
		if l.SessionID == sessionID && l.ProductID == productID {
			return &l, nil
		}
	}
	return nil, ErrLineNotFound
}

// ListLines returns the session's lines ordered by creation
func (s *MemoryStore) ListLines(_ context.Context, sessionID string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLine, 0)
	for _, l := range s.lines {
		if l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b domain.CartLine) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (s *MemoryStore) InsertLine(_ context.Context, line *domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.lines {
		if l.SessionID == line.SessionID && l.ProductID == line.ProductID {
			return ErrDuplicateLine
		}
	}

	now := time.Now().UTC()
	if line.ID.IsZero() {
		line.ID = primitive.NewObjectID()
	}
	line.CreatedAt = now
	line.UpdatedAt = now
	s.lines[line.ID] = *line
	return nil
}

func (s *MemoryStore) IncrementQuantity(_ context.Context, lineID primitive.ObjectID, delta int) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[lineID]
	if !ok {
		return nil, ErrLineNotFound
	}
	l.Quantity += delta
	l.UpdatedAt = time.Now().UTC()
	s.lines[lineID] = l
	return &l, nil
}

func (s *MemoryStore) DeleteLine(_ context.Context, lineID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[lineID]; !ok {
		return ErrLineNotFound
	}
	delete(s.lines, lineID)
	return nil
}

func (s *MemoryStore) DeleteNonPositive(_ context.Context, sessionID string) (int64, error) {
	return s.deleteWhere(func(l domain.CartLine) bool {
		return l.SessionID == sessionID && l.Quantity <= 0
	}), nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) (int64, error) {
	return s.deleteWhere(func(l domain.CartLine) bool {
		return l.SessionID == sessionID
	}), nil
}

func (s *MemoryStore) DeleteLines(_ context.Context, sessionID string, lineIDs []primitive.ObjectID) (int64, error) {
	return s.deleteWhere(func(l domain.CartLine) bool {
		return l.SessionID == sessionID && slices.Contains(lineIDs, l.ID)
	}), nil
}

func (s *MemoryStore) deleteWhere(match func(domain.CartLine) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, l := range s.lines {
		if match(l) {
			delete(s.lines, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) InsertOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	stored := *order
	stored.Items = slices.Clone(order.Items)
	s.orders = append(s.orders, stored)
	return nil
}

// ListOrders returns the session's orders, newest first
func (s *MemoryStore) ListOrders(_ context.Context, sessionID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.SessionID == sessionID {
			o.Items = slices.Clone(o.Items)
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	return out, nil
}

func (s *MemoryStore) Diagnose(context.Context) Diagnostics {
	return Diagnostics{
		Backend:      "running",
		Database:     "in-memory",
		DatabaseName: "memory",
		Collections:  []string{productCollection, cartCollection, orderCollection},
	}
}
