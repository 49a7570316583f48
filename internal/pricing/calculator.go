package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// Calculator computes order totals from cart line items, an optional
// coupon code, and a shipping method selection. It holds no mutable
// state: identical inputs always produce identical totals.
type Calculator struct {
	tables          *Tables
	taxRate         decimal.Decimal
	defaultCurrency string
}

// NewCalculator creates a calculator over the given lookup tables.
func NewCalculator(tables *Tables, taxRate decimal.Decimal, defaultCurrency string) *Calculator {
	return &Calculator{
		tables:          tables,
		taxRate:         taxRate,
		defaultCurrency: defaultCurrency,
	}
}

// Tables exposes the coupon and shipping lookup tables.
func (c *Calculator) Tables() *Tables {
	return c.tables
}

// ComputeTotals derives the full pricing breakdown for a set of line
// items. An unknown or ineligible coupon contributes zero discount
// without failing; an unknown shipping method id is a validation
// error. Invalid items (negative price, quantity below one) abort the
// computation with a validation error and no partial result.
//
// An empty shippingMethodID means no method has been selected yet and
// contributes zero shipping cost, so cart views can show totals before
// checkout.
func (c *Calculator) ComputeTotals(items []models.LineItem, couponCode, shippingMethodID string) (models.OrderTotals, error) {
	currency, err := c.resolveCurrency(items)
	if err != nil {
		return models.OrderTotals{}, err
	}

	if err := validateItems(items); err != nil {
		return models.OrderTotals{}, err
	}

	var method *ShippingMethod
	if shippingMethodID != "" {
		m, ok := c.tables.LookupShippingMethod(shippingMethodID)
		if !ok {
			return models.OrderTotals{}, errors.NewValidationError("shipping_method_id", "unknown shipping method")
		}
		method = &m
	}

	subtotal := decimal.Zero
	itemDiscount := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal().Amount)

		if item.OriginalUnitPrice != nil && item.OriginalUnitPrice.Amount.GreaterThan(item.UnitPrice.Amount) {
			markdown := item.OriginalUnitPrice.Amount.Sub(item.UnitPrice.Amount)
			itemDiscount = itemDiscount.Add(markdown.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	// Markdowns on heavily discounted items can exceed what the cart
	// actually charges; the reported discount is capped at the subtotal.
	if itemDiscount.GreaterThan(subtotal) {
		itemDiscount = subtotal
	}

	coupon, couponApplies := c.resolveCoupon(couponCode, subtotal)

	couponDiscount := decimal.Zero
	freeShipping := false
	if couponApplies {
		switch coupon.Kind {
		case CouponPercentage:
			couponDiscount = subtotal.Mul(coupon.Value)
		case CouponFixed:
			couponDiscount = decimal.Min(coupon.Value, subtotal)
		case CouponFreeShipping:
			freeShipping = true
		}
	}

	// The combined discounts can never exceed the subtotal, so the tax
	// base and the grand total stay non-negative.
	if remaining := subtotal.Sub(itemDiscount); couponDiscount.GreaterThan(remaining) {
		couponDiscount = remaining
	}

	taxBase := subtotal.Sub(itemDiscount).Sub(couponDiscount)
	tax := taxBase.Mul(c.taxRate)

	shippingCost := decimal.Zero
	if method != nil && len(items) > 0 && !freeShipping {
		shippingCost = method.FlatCost
		if method.FreeAboveSubtotal != nil && subtotal.GreaterThanOrEqual(*method.FreeAboveSubtotal) {
			shippingCost = decimal.Zero
		}
	}

	// Round each component, then derive the grand total from the
	// rounded figures so the breakdown always adds up exactly.
	subtotal = subtotal.Round(2)
	itemDiscount = itemDiscount.Round(2)
	couponDiscount = couponDiscount.Round(2)
	tax = tax.Round(2)
	shippingCost = shippingCost.Round(2)
	grandTotal := subtotal.Sub(itemDiscount).Sub(couponDiscount).Add(tax).Add(shippingCost)

	return models.OrderTotals{
		Subtotal:       models.NewMoney(subtotal, currency),
		ItemDiscount:   models.NewMoney(itemDiscount, currency),
		CouponDiscount: models.NewMoney(couponDiscount, currency),
		Tax:            models.NewMoney(tax, currency),
		ShippingCost:   models.NewMoney(shippingCost, currency),
		GrandTotal:     models.NewMoney(grandTotal, currency),
	}, nil
}

// resolveCoupon looks up the coupon and checks eligibility. Unknown
// codes and subtotals below the coupon minimum resolve to "no coupon"
// rather than an error. The minimum is checked against the pre-discount
// subtotal, matching the storefront behavior.
func (c *Calculator) resolveCoupon(code string, subtotal decimal.Decimal) (Coupon, bool) {
	if code == "" {
		return Coupon{}, false
	}

	coupon, ok := c.tables.LookupCoupon(code)
	if !ok {
		return Coupon{}, false
	}

	if coupon.MinimumSubtotal.IsPositive() && subtotal.LessThan(coupon.MinimumSubtotal) {
		return Coupon{}, false
	}

	return coupon, true
}

func (c *Calculator) resolveCurrency(items []models.LineItem) (string, error) {
	if len(items) == 0 {
		return c.defaultCurrency, nil
	}

	currency := items[0].UnitPrice.Currency
	for _, item := range items {
		if item.UnitPrice.Currency != currency {
			return "", errors.NewValidationError("items", "all items must share one currency")
		}
	}
	if currency == "" {
		currency = c.defaultCurrency
	}
	return currency, nil
}

func validateItems(items []models.LineItem) error {
	for _, item := range items {
		if item.Quantity < 1 {
			return errors.NewValidationError("items", "quantity must be positive")
		}
		if item.UnitPrice.Amount.IsNegative() {
			return errors.NewValidationError("items", "unit price cannot be negative")
		}
		if item.OriginalUnitPrice != nil && item.OriginalUnitPrice.Amount.IsNegative() {
			return errors.NewValidationError("items", "original unit price cannot be negative")
		}
	}
	return nil
}
