package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CouponKind identifies how a coupon discounts an order.
type CouponKind string

const (
	CouponPercentage   CouponKind = "percentage"
	CouponFixed        CouponKind = "fixed"
	CouponFreeShipping CouponKind = "free-shipping"
)

// Coupon is a discount code with eligibility rules. Value is a
// fraction for percentage coupons (0.10 = 10% off) and a currency
// amount for fixed coupons; it is unused for free-shipping coupons.
type Coupon struct {
	Code            string          `json:"code"`
	Kind            CouponKind      `json:"kind"`
	Value           decimal.Decimal `json:"value"`
	MinimumSubtotal decimal.Decimal `json:"minimum_subtotal"`
}

// ShippingMethod is a selectable delivery option with a flat cost.
// FreeAboveSubtotal, when set, waives the cost for large orders.
type ShippingMethod struct {
	ID                string           `json:"id"`
	Name              string           `json:"name,omitempty"`
	FlatCost          decimal.Decimal  `json:"flat_cost"`
	FreeAboveSubtotal *decimal.Decimal `json:"free_above_subtotal,omitempty"`
}

// Tables holds the static coupon and shipping method lookup tables.
// They are read-only after construction; a future iteration should
// source them from the catalog service.
type Tables struct {
	coupons  map[string]Coupon
	shipping map[string]ShippingMethod
}

// NewTables builds lookup tables from coupon and shipping definitions.
// Coupon codes are matched case-insensitively.
func NewTables(coupons []Coupon, methods []ShippingMethod) *Tables {
	t := &Tables{
		coupons:  make(map[string]Coupon, len(coupons)),
		shipping: make(map[string]ShippingMethod, len(methods)),
	}
	for _, c := range coupons {
		t.coupons[strings.ToLower(c.Code)] = c
	}
	for _, m := range methods {
		t.shipping[m.ID] = m
	}
	return t
}

// LookupCoupon resolves a coupon code case-insensitively.
func (t *Tables) LookupCoupon(code string) (Coupon, bool) {
	c, ok := t.coupons[strings.ToLower(strings.TrimSpace(code))]
	return c, ok
}

// LookupShippingMethod resolves a shipping method by id.
func (t *Tables) LookupShippingMethod(id string) (ShippingMethod, bool) {
	m, ok := t.shipping[id]
	return m, ok
}

// ShippingMethods returns all configured methods sorted by id, for the
// enumeration endpoint.
func (t *Tables) ShippingMethods() []ShippingMethod {
	methods := make([]ShippingMethod, 0, len(t.shipping))
	for _, m := range t.shipping {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].ID < methods[j].ID })
	return methods
}
