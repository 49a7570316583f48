package models

import "time"

// LineItem is one product entry in a cart.
type LineItem struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name,omitempty"`
	UnitPrice         Money  `json:"unit_price"`
	OriginalUnitPrice *Money `json:"original_unit_price,omitempty"`
	Quantity          int    `json:"quantity"`
}

// LineTotal returns unit price times quantity.
func (i LineItem) LineTotal() Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

// OrderTotals is the derived pricing breakdown for a cart. It is
// recomputed on every cart mutation and only ever persisted alongside
// the cart state it was derived from.
type OrderTotals struct {
	Subtotal       Money `json:"subtotal"`
	ItemDiscount   Money `json:"item_discount"`
	CouponDiscount Money `json:"coupon_discount"`
	Tax            Money `json:"tax"`
	ShippingCost   Money `json:"shipping_cost"`
	GrandTotal     Money `json:"grand_total"`
}

// Cart is the mutable shopping cart state.
type Cart struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	Currency         string      `json:"currency"`
	Items            []LineItem  `json:"items"`
	CouponCode       string      `json:"coupon_code,omitempty"`
	ShippingMethodID string      `json:"shipping_method_id,omitempty"`
	Totals           OrderTotals `json:"totals"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// FindItem returns the index of the line item for productID, or -1.
func (c *Cart) FindItem(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
