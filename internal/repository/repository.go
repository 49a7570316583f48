package repository

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// CartRepository defines persistence operations for carts.
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	Update(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id string) error
	GetActiveByUserID(ctx context.Context, userID string) (*models.Cart, error)
}

// CheckoutRepository defines persistence operations for checkout orders.
type CheckoutRepository interface {
	Create(ctx context.Context, order *models.CheckoutOrder) error
	GetByID(ctx context.Context, id string) (*models.CheckoutOrder, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, notes string) (*models.CheckoutOrder, error)
	SetPaymentID(ctx context.Context, id, paymentID string) error
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.CheckoutOrder, int, error)
}

// CartCache defines caching operations for carts.
type CartCache interface {
	Get(ctx context.Context, id string) (*models.Cart, error)
	Set(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id string) error
}
