package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/clients"
	apperrors "github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

type checkoutFixture struct {
	cartSvc     *CartService
	checkoutSvc *CheckoutService
	cartRepo    *fakeCartRepo
	orders      *fakeCheckoutRepo
	payments    *fakePaymentClient
	publisher   *fakePublisher
}

func newCheckoutFixture() *checkoutFixture {
	cartRepo := newFakeCartRepo()
	cache := newFakeCartCache()
	orders := newFakeCheckoutRepo()
	payments := &fakePaymentClient{}
	publisher := &fakePublisher{}
	calc := testPricingCalculator()
	cfg := testConfig()

	return &checkoutFixture{
		cartSvc:     NewCartService(cartRepo, cache, testCatalog(), calc, cfg),
		checkoutSvc: NewCheckoutService(cartRepo, orders, cache, payments, publisher, calc, cfg),
		cartRepo:    cartRepo,
		orders:      orders,
		payments:    payments,
		publisher:   publisher,
	}
}

func (f *checkoutFixture) readyCart(t *testing.T) *models.Cart {
	t.Helper()
	ctx := context.Background()

	cart, err := f.cartSvc.CreateCart(ctx, &models.CreateCartRequest{UserID: "user_123"})
	require.NoError(t, err)
	cart, err = f.cartSvc.AddItem(ctx, cart.ID, &models.AddItemRequest{ProductID: "prod_tea", Quantity: 2})
	require.NoError(t, err)
	cart, err = f.cartSvc.ApplyCoupon(ctx, cart.ID, "SAVE20")
	require.NoError(t, err)
	cart, err = f.cartSvc.SelectShippingMethod(ctx, cart.ID, "standard")
	require.NoError(t, err)

	return cart
}

func TestCheckout_HappyPath(t *testing.T) {
	f := newCheckoutFixture()
	cart := f.readyCart(t)
	ctx := context.Background()

	order, err := f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{CardToken: "tok_visa"})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, "pay_test", order.PaymentID)
	assert.Equal(t, cart.ID, order.CartID)
	// 200 subtotal, 20 coupon, 32.40 tax, free shipping above 100.
	assert.True(t, order.Totals.GrandTotal.Amount.Equal(decimal.RequireFromString("212.4")))

	// The payment service was charged the grand total.
	require.Len(t, f.payments.charges, 1)
	assert.True(t, f.payments.charges[0].Amount.Amount.Equal(order.Totals.GrandTotal.Amount))

	// The cart is consumed.
	_, err = f.cartRepo.GetByID(ctx, cart.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Contains(t, f.publisher.published, "checkout.completed")
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	cart, err := f.cartSvc.CreateCart(ctx, &models.CreateCartRequest{UserID: "user_123"})
	require.NoError(t, err)
	_, err = f.cartSvc.SelectShippingMethod(ctx, cart.ID, "standard")
	require.NoError(t, err)

	_, err = f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCheckout_RequiresShippingMethod(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	cart, err := f.cartSvc.CreateCart(ctx, &models.CreateCartRequest{UserID: "user_123"})
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, cart.ID, &models.AddItemRequest{ProductID: "prod_tea", Quantity: 1})
	require.NoError(t, err)

	_, err = f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCheckout_PaymentFailure(t *testing.T) {
	f := newCheckoutFixture()
	f.payments.fail = true
	cart := f.readyCart(t)

	order, err := f.checkoutSvc.Checkout(context.Background(), cart.ID, &models.CheckoutRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusFailed, order.Status)
}

func TestCheckout_PendingPaymentSettledByEvent(t *testing.T) {
	f := newCheckoutFixture()
	f.payments.status = clients.PaymentStatusPending
	cart := f.readyCart(t)
	ctx := context.Background()

	order, err := f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	// The payment service later reports completion via Kafka.
	require.NoError(t, f.checkoutSvc.MarkOrderPaid(ctx, order.ID, "pay_async"))

	settled, err := f.checkoutSvc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, settled.Status)
	assert.Contains(t, f.publisher.published, "checkout.order_status_changed")
}

func TestMarkOrderPaid_IdempotentOnRepeats(t *testing.T) {
	f := newCheckoutFixture()
	f.payments.status = clients.PaymentStatusPending
	cart := f.readyCart(t)
	ctx := context.Background()

	order, err := f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{})
	require.NoError(t, err)

	require.NoError(t, f.checkoutSvc.MarkOrderPaid(ctx, order.ID, "pay_async"))
	require.NoError(t, f.checkoutSvc.MarkOrderPaid(ctx, order.ID, "pay_async"))

	settled, err := f.checkoutSvc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, settled.Status)
}

func TestMarkOrderFailed_DoesNotRegressPaidOrder(t *testing.T) {
	f := newCheckoutFixture()
	cart := f.readyCart(t)
	ctx := context.Background()

	order, err := f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, order.Status)

	// A late failure event for an already paid order is ignored.
	require.NoError(t, f.checkoutSvc.MarkOrderFailed(ctx, order.ID, "network timeout"))

	settled, err := f.checkoutSvc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, settled.Status)
}

func TestCancelOrder(t *testing.T) {
	f := newCheckoutFixture()
	f.payments.status = clients.PaymentStatusPending
	cart := f.readyCart(t)
	ctx := context.Background()

	order, err := f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{})
	require.NoError(t, err)

	cancelled, err := f.checkoutSvc.CancelOrder(ctx, order.ID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Contains(t, f.publisher.published, "checkout.order_cancelled")
}

func TestCancelOrder_PaidOrderRejected(t *testing.T) {
	f := newCheckoutFixture()
	cart := f.readyCart(t)
	ctx := context.Background()

	order, err := f.checkoutSvc.Checkout(ctx, cart.ID, &models.CheckoutRequest{})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, order.Status)

	_, err = f.checkoutSvc.CancelOrder(ctx, order.ID, "too late")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCancelOrder_RequiresReason(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.checkoutSvc.CancelOrder(context.Background(), "ord_x", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
