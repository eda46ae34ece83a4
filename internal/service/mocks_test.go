package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/lock"
	"github.com/fjod/storefront/internal/repository"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockPublisher struct {
	m      sync.Mutex
	events []domain.OrderPlaced
	err    error
}

func (p *mockPublisher) PublishOrderPlaced(_ context.Context, e domain.OrderPlaced) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string) (lock.ReleaseFunc, error) {
	return nil, lock.ErrNotAcquired
}

// racingCartRepo hides the existing line from the first FindLine call, the same
// view a request gets when a concurrent add inserts between its read and insert.
type racingCartRepo struct {
	*repository.MemoryStore
	m      sync.Mutex
	missed bool
}

func (r *racingCartRepo) FindLine(ctx context.Context, sessionID string, productID primitive.ObjectID) (*domain.CartLine, error) {
	r.m.Lock()
	first := !r.missed
	r.missed = true
	r.m.Unlock()
	if first {
		return nil, repository.ErrLineNotFound
	}
	return r.MemoryStore.FindLine(ctx, sessionID, productID)
}

// hookOrderRepo runs beforeInsert ahead of persisting the order.
type hookOrderRepo struct {
	repository.OrderRepository
	beforeInsert func()
	err          error
}

func (r *hookOrderRepo) InsertOrder(ctx context.Context, o *domain.Order) error {
	if r.beforeInsert != nil {
		r.beforeInsert()
	}
	if r.err != nil {
		return r.err
	}
	return r.OrderRepository.InsertOrder(ctx, o)
}

// blockingProductRepo holds GetProduct until release is closed or the read's
// context ends. entered receives once per read.
type blockingProductRepo struct {
	repository.ProductRepository
	entered chan struct{}
	release chan struct{}
}

func (r *blockingProductRepo) GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.entered <- struct{}{}
	select {
	case <-r.release:
		return r.ProductRepository.GetProduct(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var errBoom = errors.New("boom")

type fixture struct {
	store    *repository.MemoryStore
	catalog  *CatalogService
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
	pub      *mockPublisher
	tee      domain.Product
	pack     domain.Product
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, opts CheckoutOptions) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()

	products := []domain.Product{
		{Title: "Classic Tee", Category: "Apparel", Price: 19.99, InStock: true, Rating: 4.6},
		{Title: "Minimal Backpack", Category: "Bags", Price: 49.0, InStock: true, Rating: 4.4},
	}
	_, err := store.InsertProducts(context.Background(), products)
	require.NoError(t, err)

	log := discardLogger()
	pub := &mockPublisher{}
	catalog := NewCatalogService(store, log)
	cart := NewCartService(store, catalog, lock.NewNoop(), log)

	return &fixture{
		store:    store,
		catalog:  catalog,
		cart:     cart,
		checkout: NewCheckoutService(cart, store, pub, opts, log),
		orders:   NewOrderService(store),
		pub:      pub,
		tee:      products[0],
		pack:     products[1],
	}
}
