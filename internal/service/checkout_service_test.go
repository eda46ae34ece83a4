package service

import (
	"context"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest(sessionID string) CheckoutRequest {
	return CheckoutRequest{
		SessionID:       sessionID,
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "1 Main St",
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	ctx := context.Background()

	_, err := f.checkout.Checkout(ctx, validRequest("s1"))
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, err := f.orders.ListOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.pub.events)
}

func TestCheckout_CreatesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "s1", f.tee.ID.Hex(), 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "s1", f.pack.ID.Hex(), 1)
	require.NoError(t, err)

	before, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)

	orderID, err := f.checkout.Checkout(ctx, validRequest("s1"))
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	orders, err := f.orders.ListOrders(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, orderID, order.ID.Hex())
	assert.Equal(t, before.Total, order.Total)
	assert.Equal(t, 88.98, order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Classic Tee", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 39.98, order.Items[0].Subtotal)
	assert.Equal(t, "ada@example.com", order.CustomerEmail)

	after, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, after.Items)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, orderID, f.pub.events[0].OrderID)
	assert.Equal(t, 2, f.pub.events[0].ItemCount)
}

func TestCheckout_SnapshotIsImmuneToPriceChanges(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "s1", f.tee.ID.Hex(), 1)
	require.NoError(t, err)
	_, err = f.checkout.Checkout(ctx, validRequest("s1"))
	require.NoError(t, err)

	repriced := f.tee
	repriced.Price = 99
	_, err = f.store.InsertProducts(ctx, []domain.Product{repriced})
	require.NoError(t, err)

	orders, err := f.orders.ListOrders(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 19.99, orders[0].Items[0].Price)
	assert.Equal(t, 19.99, orders[0].Total)
}

func TestCheckout_InvalidInput(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "s1", f.tee.ID.Hex(), 1)
	require.NoError(t, err)

	req := validRequest("s1")
	req.CustomerEmail = "not-an-email"
	_, err = f.checkout.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.checkout.Checkout(ctx, validRequest(""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest("s1")
	req.CustomerName = ""
	_, err = f.checkout.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "customer_name")

	req = validRequest("s1")
	req.CustomerAddress = ""
	_, err = f.checkout.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "customer_address")

	// the cart is untouched by a rejected checkout
	view, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCheckout_UnguardedClearDropsLateLines(t *testing.T) {
	f := newFixture(t, CheckoutOptions{GuardedClear: false})
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "s1", f.tee.ID.Hex(), 1)
	require.NoError(t, err)

	hooked := &hookOrderRepo{OrderRepository: f.store, beforeInsert: func() {
		_, err := f.cart.AddItem(ctx, "s1", f.pack.ID.Hex(), 1)
		require.NoError(t, err)
	}}
	checkout := NewCheckoutService(f.cart, hooked, f.pub, CheckoutOptions{}, discardLogger())

	_, err = checkout.Checkout(ctx, validRequest("s1"))
	require.NoError(t, err)

	view, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCheckout_GuardedClearKeepsLateLines(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "s1", f.tee.ID.Hex(), 1)
	require.NoError(t, err)

	hooked := &hookOrderRepo{OrderRepository: f.store, beforeInsert: func() {
		_, err := f.cart.AddItem(ctx, "s1", f.pack.ID.Hex(), 1)
		require.NoError(t, err)
	}}
	checkout := NewCheckoutService(f.cart, hooked, f.pub, CheckoutOptions{GuardedClear: true}, discardLogger())

	_, err = checkout.Checkout(ctx, validRequest("s1"))
	require.NoError(t, err)

	view, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, f.pack.ID, view.Items[0].ProductID)

	orders, err := f.orders.ListOrders(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 1)
}

func TestCheckout_OrderInsertFailureKeepsCart(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "s1", f.tee.ID.Hex(), 1)
	require.NoError(t, err)

	failing := &hookOrderRepo{OrderRepository: f.store, err: errBoom}
	checkout := NewCheckoutService(f.cart, failing, f.pub, CheckoutOptions{}, discardLogger())

	_, err = checkout.Checkout(ctx, validRequest("s1"))
	assert.ErrorIs(t, err, errBoom)

	view, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCheckout_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	ctx := context.Background()
	f.pub.err = errBoom

	_, err := f.cart.AddItem(ctx, "s1", f.tee.ID.Hex(), 1)
	require.NoError(t, err)

	orderID, err := f.checkout.Checkout(ctx, validRequest("s1"))
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)
}

func TestCheckout_SessionBusy(t *testing.T) {
	f := newFixture(t, CheckoutOptions{})
	cart := NewCartService(f.store, f.catalog, busyLocker{}, discardLogger())
	checkout := NewCheckoutService(cart, f.store, f.pub, CheckoutOptions{}, discardLogger())

	_, err := checkout.Checkout(context.Background(), validRequest("s1"))
	assert.ErrorIs(t, err, ErrSessionBusy)
}
