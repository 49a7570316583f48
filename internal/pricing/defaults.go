package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Built-in lookup tables, used until the catalog service exposes
// coupon and shipping data.
func defaultCoupons() []Coupon {
	return []Coupon{
		{Code: "SAVE20", Kind: CouponFixed, Value: decimal.NewFromInt(20), MinimumSubtotal: decimal.NewFromInt(100)},
		{Code: "WELCOME10", Kind: CouponPercentage, Value: decimal.RequireFromString("0.10")},
		{Code: "FREESHIP", Kind: CouponFreeShipping, Value: decimal.Zero, MinimumSubtotal: decimal.NewFromInt(50)},
	}
}

func defaultShippingMethods() []ShippingMethod {
	freeAbove := decimal.NewFromInt(100)
	return []ShippingMethod{
		{ID: "standard", Name: "Standard (3-5 days)", FlatCost: decimal.RequireFromString("5.99"), FreeAboveSubtotal: &freeAbove},
		{ID: "express", Name: "Express (1-2 days)", FlatCost: decimal.RequireFromString("14.99")},
		{ID: "pickup", Name: "Store pickup", FlatCost: decimal.Zero},
	}
}

// LoadTables builds the lookup tables from the configured JSON
// overrides, falling back to the built-in tables when an override is
// empty.
func LoadTables(couponJSON, shippingJSON string) (*Tables, error) {
	coupons := defaultCoupons()
	if couponJSON != "" {
		coupons = nil
		if err := json.Unmarshal([]byte(couponJSON), &coupons); err != nil {
			return nil, fmt.Errorf("parse coupon table: %w", err)
		}
	}

	methods := defaultShippingMethods()
	if shippingJSON != "" {
		methods = nil
		if err := json.Unmarshal([]byte(shippingJSON), &methods); err != nil {
			return nil, fmt.Errorf("parse shipping table: %w", err)
		}
	}

	return NewTables(coupons, methods), nil
}
