package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/go-playground/validator/v10"
)

type CheckoutRequest struct {
	SessionID       string `validate:"required"`
	CustomerName    string `validate:"required"`
	CustomerEmail   string `validate:"required,email"`
	CustomerAddress string `validate:"required"`
}

type CheckoutOptions struct {
	// GuardedClear deletes only the lines that were snapshotted into the order.
	// When false the whole session is cleared, including lines added mid-checkout.
	GuardedClear bool
}

type CheckoutService struct {
	cart      *CartService
	orders    repository.OrderRepository
	publisher publisher.OrderPublisher
	validate  *validator.Validate
	opts      CheckoutOptions
	log       *slog.Logger
	now       func() time.Time
}

func NewCheckoutService(cart *CartService, orders repository.OrderRepository, pub publisher.OrderPublisher,
	opts CheckoutOptions, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		cart:      cart,
		orders:    orders,
		publisher: pub,
		validate:  validator.New(),
		opts:      opts,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Checkout turns the session's cart into an order and clears the cart.
// The steps are not atomic. See CheckoutOptions for the clear policy.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (string, error) {
	const op = "CheckoutService.Checkout"

	if err := s.validateRequest(req); err != nil {
		return "", err
	}

	release, err := s.cart.acquire(ctx, req.SessionID)
	if err != nil {
		return "", err
	}
	defer release()

	view, err := s.cart.GetCart(ctx, req.SessionID)
	if err != nil {
		return "", err
	}
	if len(view.Items) == 0 {
		return "", ErrEmptyCart
	}

	order := &domain.Order{
		SessionID:       req.SessionID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Items:           domain.SnapshotItems(view),
		Total:           view.Total,
		CreatedAt:       s.now(),
	}
	if err := s.orders.InsertOrder(ctx, order); err != nil {
		s.log.Error("failed to insert order", slog.String("op", op), slog.String("session_id", req.SessionID), logger.Err(err))
		return "", err
	}
	orderID := order.ID.Hex()

	var cleared int64
	if s.opts.GuardedClear {
		cleared, err = s.cart.ClearLines(ctx, req.SessionID, view.LineIDs())
	} else {
		cleared, err = s.cart.Clear(ctx, req.SessionID)
	}
	if err != nil {
		s.log.Error("order created but cart clear failed", slog.String("op", op),
			slog.String("order_id", orderID), logger.Err(err))
		return "", fmt.Errorf("clear cart after order %s: %w", orderID, err)
	}

	s.log.Info("order placed", slog.String("op", op), slog.String("order_id", orderID),
		slog.Int("items", len(order.Items)), slog.Float64("total", order.Total), slog.Int64("cleared", cleared))

	event := domain.OrderPlaced{
		OrderID:   orderID,
		SessionID: order.SessionID,
		Total:     order.Total,
		ItemCount: len(order.Items),
		CreatedAt: order.CreatedAt,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.log.Warn("order event not published", slog.String("op", op), slog.String("order_id", orderID), logger.Err(err))
	}

	return orderID, nil
}

func (s *CheckoutService) validateRequest(req CheckoutRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "SessionID":
			return fmt.Errorf("%w: session_id is required", ErrInvalidInput)
		case "CustomerName":
			return fmt.Errorf("%w: customer_name is required", ErrInvalidInput)
		case "CustomerAddress":
			return fmt.Errorf("%w: customer_address is required", ErrInvalidInput)
		case "CustomerEmail":
			return fmt.Errorf("%w: customer_email must be a valid email address", ErrInvalidInput)
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
