package service

import (
	"context"
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/format"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
)

// CheckoutEventPublisher publishes checkout lifecycle events.
type CheckoutEventPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, order *models.CheckoutOrder) error
	PublishOrderStatusChanged(ctx context.Context, order *models.CheckoutOrder, previousStatus models.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, order *models.CheckoutOrder, reason string) error
}

// CheckoutService turns carts into checkout orders and settles them
// against the payment service.
type CheckoutService struct {
	cartRepo      repository.CartRepository
	checkoutRepo  repository.CheckoutRepository
	cartCache     repository.CartCache
	paymentClient clients.PaymentClient
	publisher     CheckoutEventPublisher
	calculator    *pricing.Calculator
	config        *config.Config
	logger        *logging.LoggerV2
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	checkoutRepo repository.CheckoutRepository,
	cartCache repository.CartCache,
	paymentClient clients.PaymentClient,
	publisher CheckoutEventPublisher,
	calculator *pricing.Calculator,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		cartRepo:      cartRepo,
		checkoutRepo:  checkoutRepo,
		cartCache:     cartCache,
		paymentClient: paymentClient,
		publisher:     publisher,
		calculator:    calculator,
		config:        cfg,
		logger:        logging.NewLoggerV2("checkout-service"),
	}
}

// Checkout snapshots the cart into an order, charges the payment
// service, and retires the cart. The totals are recomputed from the
// cart state at this moment rather than trusted from the stored row.
func (s *CheckoutService) Checkout(ctx context.Context, cartID string, req *models.CheckoutRequest) (*models.CheckoutOrder, error) {
	s.logger.Info("Checking out cart", logging.Fields{"cart_id": cartID})

	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		return nil, errors.NewValidationError("items", "cart is empty")
	}
	if cart.ShippingMethodID == "" {
		return nil, errors.NewValidationError("shipping_method_id", "shipping method must be selected before checkout")
	}

	totals, err := s.calculator.ComputeTotals(cart.Items, cart.CouponCode, cart.ShippingMethodID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.CheckoutOrder{
		ID:               repository.NewOrderID(),
		CartID:           cart.ID,
		UserID:           cart.UserID,
		Items:            cart.Items,
		CouponCode:       cart.CouponCode,
		ShippingMethodID: cart.ShippingMethodID,
		Totals:           totals,
		Status:           models.OrderStatusPending,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.checkoutRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	chargeResp, err := s.paymentClient.Charge(ctx, &clients.ChargeRequest{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Amount:    totals.GrandTotal,
		CardToken: req.CardToken,
	})
	if err != nil {
		s.logger.Error("Payment charge failed", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		order, stErr := s.checkoutRepo.UpdateStatus(ctx, order.ID, models.OrderStatusFailed, "payment charge failed")
		if stErr != nil {
			return nil, stErr
		}
		return order, nil
	}

	if err := s.checkoutRepo.SetPaymentID(ctx, order.ID, chargeResp.PaymentID); err != nil {
		s.logger.Error("Failed to set payment ID on order", logging.Fields{
			"order_id":   order.ID,
			"payment_id": chargeResp.PaymentID,
			"error":      err.Error(),
		})
	}
	order.PaymentID = chargeResp.PaymentID

	if chargeResp.Status == clients.PaymentStatusCompleted {
		order, err = s.checkoutRepo.UpdateStatus(ctx, order.ID, models.OrderStatusPaid, "payment completed")
		if err != nil {
			return nil, err
		}
	}

	// The cart is consumed by checkout.
	if err := s.cartRepo.Delete(ctx, cart.ID); err != nil {
		s.logger.Error("Failed to retire cart", logging.Fields{
			"cart_id": cart.ID,
			"error":   err.Error(),
		})
	}
	if s.config.Features.EnableCartCaching {
		s.cartCache.Delete(ctx, cart.ID)
	}

	if s.config.Features.EnableCheckoutEvents {
		if err := s.publisher.PublishCheckoutCompleted(ctx, order); err != nil {
			// Log but don't fail
			s.logger.Error("Failed to publish checkout event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	s.logger.Info("Checkout completed", logging.Fields{
		"order_id": order.ID,
		"cart_id":  cart.ID,
		"total":    format.Amount(order.Totals.GrandTotal),
		"status":   order.Status,
	})

	return order, nil
}

// GetOrder retrieves a checkout order by ID.
func (s *CheckoutService) GetOrder(ctx context.Context, id string) (*models.CheckoutOrder, error) {
	return s.checkoutRepo.GetByID(ctx, id)
}

// GetUserOrders retrieves a page of checkout orders for a user.
func (s *CheckoutService) GetUserOrders(ctx context.Context, userID string, limit, offset int) ([]*models.CheckoutOrder, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.checkoutRepo.GetByUserID(ctx, userID, limit, offset)
}

// CancelOrder cancels a checkout order that has not been paid.
func (s *CheckoutService) CancelOrder(ctx context.Context, id, reason string) (*models.CheckoutOrder, error) {
	if err := ValidateCancellationReason(reason); err != nil {
		return nil, err
	}

	order, err := s.checkoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.CanCancel() {
		return nil, errors.NewValidationError("status", "order cannot be cancelled in current state")
	}

	order, err = s.checkoutRepo.UpdateStatus(ctx, id, models.OrderStatusCancelled, reason)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableCheckoutEvents {
		if err := s.publisher.PublishOrderCancelled(ctx, order, reason); err != nil {
			s.logger.Error("Failed to publish cancellation event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	return order, nil
}

// MarkOrderPaid settles an order after a payment.completed event.
func (s *CheckoutService) MarkOrderPaid(ctx context.Context, orderID, paymentID string) error {
	return s.applyPaymentResult(ctx, orderID, models.OrderStatusPaid, "payment completed", paymentID)
}

// MarkOrderFailed settles an order after a payment.failed event.
func (s *CheckoutService) MarkOrderFailed(ctx context.Context, orderID, reason string) error {
	if reason == "" {
		reason = "payment failed"
	}
	return s.applyPaymentResult(ctx, orderID, models.OrderStatusFailed, reason, "")
}

func (s *CheckoutService) applyPaymentResult(ctx context.Context, orderID string, status models.OrderStatus, notes, paymentID string) error {
	order, err := s.checkoutRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == status {
		// Payment events are at-least-once; repeats are no-ops.
		return nil
	}

	if !models.ValidStatusTransition(order.Status, status) {
		s.logger.Warn("Ignoring payment event for settled order", logging.Fields{
			"order_id":   orderID,
			"status":     order.Status,
			"new_status": status,
		})
		return nil
	}

	previousStatus := order.Status

	if paymentID != "" && order.PaymentID == "" {
		if err := s.checkoutRepo.SetPaymentID(ctx, orderID, paymentID); err != nil {
			return err
		}
	}

	order, err = s.checkoutRepo.UpdateStatus(ctx, orderID, status, notes)
	if err != nil {
		return err
	}

	if s.config.Features.EnableCheckoutEvents {
		if err := s.publisher.PublishOrderStatusChanged(ctx, order, previousStatus); err != nil {
			s.logger.Error("Failed to publish status change event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	return nil
}
