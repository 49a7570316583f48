package models

import "time"

// OrderStatus is the lifecycle state of a checkout order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CheckoutOrder is the immutable snapshot produced when a cart is
// checked out. Items and totals are frozen from the cart at that point.
type CheckoutOrder struct {
	ID               string      `json:"id"`
	CartID           string      `json:"cart_id"`
	UserID           string      `json:"user_id"`
	Items            []LineItem  `json:"items"`
	CouponCode       string      `json:"coupon_code,omitempty"`
	ShippingMethodID string      `json:"shipping_method_id"`
	Totals           OrderTotals `json:"totals"`
	Status           OrderStatus `json:"status"`
	PaymentID        string      `json:"payment_id,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CanCancel reports whether the order may still be cancelled.
func (o *CheckoutOrder) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusFailed
}

// ValidStatusTransition reports whether an order may move from one
// status to another.
func ValidStatusTransition(from, to OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled},
		OrderStatusFailed:    {OrderStatusPending, OrderStatusCancelled},
		OrderStatusPaid:      {},
		OrderStatusCancelled: {},
	}

	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
