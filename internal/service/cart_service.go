package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/lock"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const hydrateConcurrency = 8

// AddResult is the outcome of AddItem. Line is nil when Removed is set.
type AddResult struct {
	Line    *domain.CartLine
	Removed bool
}

type CartService struct {
	repo    repository.CartRepository
	catalog *CatalogService
	locker  lock.Locker
	log     *slog.Logger
}

func NewCartService(repo repository.CartRepository, catalog *CatalogService, locker lock.Locker, log *slog.Logger) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalog,
		locker:  locker,
		log:     log,
	}
}

// AddItem applies delta to the session's line for productID. It never sets an
// absolute quantity. A positive delta creates or grows the line, a negative one
// shrinks it and a result of zero or less deletes the line. A new line needs a
// positive delta.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, delta int) (AddResult, error) {
	const op = "CartService.AddItem"

	if sessionID == "" {
		return AddResult{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return AddResult{}, err
	}

	release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return AddResult{}, err
	}
	defer release()

	res, err := s.applyDelta(ctx, sessionID, product.ID, delta)
	if errors.Is(err, repository.ErrDuplicateLine) {
		// a concurrent add inserted the line first, so merge into it
		s.log.Debug("cart line insert conflict, retrying", slog.String("op", op), slog.String("session_id", sessionID))
		res, err = s.applyDelta(ctx, sessionID, product.ID, delta)
	}
	if err != nil {
		if !errors.Is(err, ErrInvalidQuantity) {
			s.log.Error("repo add item error", slog.String("op", op), slog.String("session_id", sessionID), logger.Err(err))
		}
		return AddResult{}, err
	}

	return res, nil
}

func (s *CartService) applyDelta(ctx context.Context, sessionID string, productID primitive.ObjectID, delta int) (AddResult, error) {
	existing, err := s.repo.FindLine(ctx, sessionID, productID)
	if err != nil && !errors.Is(err, repository.ErrLineNotFound) {
		return AddResult{}, err
	}

	if existing == nil {
		if delta <= 0 {
			return AddResult{}, ErrInvalidQuantity
		}
		line := &domain.CartLine{
			SessionID: sessionID,
			ProductID: productID,
			Quantity:  delta,
		}
		if err := s.repo.InsertLine(ctx, line); err != nil {
			return AddResult{}, err
		}
		return AddResult{Line: line}, nil
	}

	if existing.Quantity+delta <= 0 {
		if err := s.repo.DeleteLine(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrLineNotFound) {
			return AddResult{}, err
		}
		return AddResult{Removed: true}, nil
	}

	updated, err := s.repo.IncrementQuantity(ctx, existing.ID, delta)
	if err != nil {
		return AddResult{}, err
	}
	if updated.Quantity <= 0 {
		// another request shrank the line between our read and increment
		if err := s.repo.DeleteLine(ctx, updated.ID); err != nil && !errors.Is(err, repository.ErrLineNotFound) {
			return AddResult{}, err
		}
		return AddResult{Removed: true}, nil
	}
	return AddResult{Line: updated}, nil
}

// GetCart joins every line with the current product data. A line whose product
// no longer exists fails the whole view.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (domain.CartView, error) {
	if sessionID == "" {
		return domain.CartView{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	lines, err := s.repo.ListLines(ctx, sessionID)
	if err != nil {
		return domain.CartView{}, err
	}

	items := make([]domain.CartItemView, len(lines))
	amounts := make([]float64, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			product, err := s.catalog.lookup(gctx, line.ProductID)
			if err != nil {
				return err
			}
			amounts[i] = domain.LineAmount(product.Price, line.Quantity)
			items[i] = domain.CartItemView{
				ID:        line.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Title:     product.Title,
				Price:     product.Price,
				Image:     product.Image,
				Subtotal:  domain.Round2(amounts[i]),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.CartView{}, err
	}

	var total float64
	for _, a := range amounts {
		total += a
	}

	return domain.CartView{Items: items, Total: domain.Round2(total)}, nil
}

// Cleanup removes lines whose quantity is zero or less.
func (s *CartService) Cleanup(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	return s.repo.DeleteNonPositive(ctx, sessionID)
}

// Clear removes every line of the session.
func (s *CartService) Clear(ctx context.Context, sessionID string) (int64, error) {
	return s.repo.DeleteSession(ctx, sessionID)
}

// ClearLines removes only the given lines of the session.
func (s *CartService) ClearLines(ctx context.Context, sessionID string, lineIDs []primitive.ObjectID) (int64, error) {
	return s.repo.DeleteLines(ctx, sessionID, lineIDs)
}

func (s *CartService) acquire(ctx context.Context, sessionID string) (func(), error) {
	release, err := s.locker.Acquire(ctx, sessionID)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, fmt.Errorf("%w: %s", ErrSessionBusy, sessionID)
		}
		return nil, err
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := release(ctx); err != nil {
			s.log.Warn("session lock release error", slog.String("session_id", sessionID), logger.Err(err))
		}
	}, nil
}
