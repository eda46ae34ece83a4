package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100

	lookupTimeout = 5 * time.Second
)

type SeedResult struct {
	Inserted int    `json:"inserted"`
	Message  string `json:"message,omitempty"`
}

type CatalogService struct {
	repo repository.ProductRepository
	log  *slog.Logger
	sfg  singleflight.Group // coalesces concurrent lookups of the same product
}

func NewCatalogService(repo repository.ProductRepository, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo: repo,
		log:  log,
	}
}

// GetProduct resolves a product from its hex identifier.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, oid)
}

// lookup shares one store read between concurrent callers of the same id.
// The read outlives a canceled caller, bounded by lookupTimeout.
func (s *CatalogService) lookup(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	ch := s.sfg.DoChan(id.Hex(), func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return s.repo.GetProduct(sctx, id)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		if errors.Is(res.Err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("product %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, res.Err
	}

	// shared callers get their own copy
	p := *res.Val.(*domain.Product)
	return &p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, category string, limit int) ([]domain.Product, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxListLimit)
	}

	return s.repo.ListProducts(ctx, repository.ProductFilter{
		Category: category,
		Limit:    int64(limit),
	})
}

// Seed loads the demo catalog. Without force it leaves an existing catalog untouched.
func (s *CatalogService) Seed(ctx context.Context, force bool) (SeedResult, error) {
	const op = "CatalogService.Seed"

	count, err := s.repo.CountProducts(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	if count > 0 && !force {
		return SeedResult{Inserted: 0, Message: "Products already exist"}, nil
	}

	if force {
		deleted, err := s.repo.DeleteAllProducts(ctx)
		if err != nil {
			s.log.Error("failed to clear catalog", slog.String("op", op), logger.Err(err))
			return SeedResult{}, err
		}
		s.log.Info("catalog cleared", slog.String("op", op), slog.Int64("deleted", deleted))
	}

	products := demoProducts()
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return SeedResult{}, fmt.Errorf("%w: %s: %v", ErrInvalidInput, p.Title, err)
		}
	}

	inserted, err := s.repo.InsertProducts(ctx, products)
	if err != nil {
		s.log.Error("failed to seed catalog", slog.String("op", op), logger.Err(err))
		return SeedResult{}, err
	}

	s.log.Info("catalog seeded", slog.String("op", op), slog.Int("inserted", inserted))
	return SeedResult{Inserted: inserted}, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return oid, nil
}
