package pricing

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

func testTables() *Tables {
	freeAbove := decimal.NewFromInt(100)
	return NewTables(
		[]Coupon{
			{Code: "SAVE20", Kind: CouponFixed, Value: decimal.NewFromInt(20), MinimumSubtotal: decimal.NewFromInt(100)},
			{Code: "WELCOME10", Kind: CouponPercentage, Value: decimal.RequireFromString("0.10")},
			{Code: "BIGSPENDER", Kind: CouponFixed, Value: decimal.NewFromInt(500)},
			{Code: "FREESHIP", Kind: CouponFreeShipping, Value: decimal.Zero, MinimumSubtotal: decimal.NewFromInt(50)},
		},
		[]ShippingMethod{
			{ID: "standard", Name: "Standard", FlatCost: decimal.RequireFromString("5.99"), FreeAboveSubtotal: &freeAbove},
			{ID: "express", Name: "Express", FlatCost: decimal.RequireFromString("14.99")},
			{ID: "pickup", Name: "Store pickup", FlatCost: decimal.Zero},
		},
	)
}

func testCalculator() *Calculator {
	return NewCalculator(testTables(), decimal.RequireFromString("0.18"), "USD")
}

func item(unitPrice float64, qty int) models.LineItem {
	return models.LineItem{
		ProductID: gofakeit.UUID(),
		UnitPrice: models.NewMoneyFromFloat(unitPrice, "USD"),
		Quantity:  qty,
	}
}

func discountedItem(unitPrice, originalPrice float64, qty int) models.LineItem {
	it := item(unitPrice, qty)
	orig := models.NewMoneyFromFloat(originalPrice, "USD")
	it.OriginalUnitPrice = &orig
	return it
}

func TestComputeTotals_FixedCouponWithShipping(t *testing.T) {
	calc := testCalculator()

	// Two units at 100 with SAVE20: 200 - 20 = 180 taxable,
	// tax 32.40, standard shipping free above 100.
	totals, err := calc.ComputeTotals([]models.LineItem{item(100, 2)}, "SAVE20", "standard")
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Amount.Equal(decimal.NewFromInt(200)), "subtotal: %s", totals.Subtotal.Amount)
	assert.True(t, totals.CouponDiscount.Amount.Equal(decimal.NewFromInt(20)), "coupon discount: %s", totals.CouponDiscount.Amount)
	assert.True(t, totals.Tax.Amount.Equal(decimal.RequireFromString("32.4")), "tax: %s", totals.Tax.Amount)
	assert.True(t, totals.ShippingCost.Amount.IsZero(), "shipping: %s", totals.ShippingCost.Amount)
	assert.True(t, totals.GrandTotal.Amount.Equal(decimal.RequireFromString("212.4")), "grand total: %s", totals.GrandTotal.Amount)
	assert.Equal(t, "USD", totals.GrandTotal.Currency)
}

func TestComputeTotals_FixedCouponWithFlatShipping(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{item(100, 2)}, "SAVE20", "express")
	require.NoError(t, err)

	assert.True(t, totals.ShippingCost.Amount.Equal(decimal.RequireFromString("14.99")))
	assert.True(t, totals.GrandTotal.Amount.Equal(decimal.RequireFromString("227.39")))
}

func TestComputeTotals_CouponCodeCaseInsensitive(t *testing.T) {
	calc := testCalculator()
	items := []models.LineItem{item(100, 2)}

	upper, err := calc.ComputeTotals(items, "SAVE20", "pickup")
	require.NoError(t, err)
	lower, err := calc.ComputeTotals(items, "save20", "pickup")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
}

func TestComputeTotals_UnknownCouponIsSilentlyIgnored(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{item(50, 1)}, "NOSUCHCODE", "pickup")
	require.NoError(t, err)

	assert.True(t, totals.CouponDiscount.Amount.IsZero())
}

func TestComputeTotals_CouponBelowMinimumSubtotal(t *testing.T) {
	calc := testCalculator()

	// SAVE20 requires a 100 subtotal; 99 does not qualify.
	totals, err := calc.ComputeTotals([]models.LineItem{item(99, 1)}, "SAVE20", "pickup")
	require.NoError(t, err)

	assert.True(t, totals.CouponDiscount.Amount.IsZero())
}

func TestComputeTotals_PercentageCoupon(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{item(80, 1)}, "welcome10", "pickup")
	require.NoError(t, err)

	assert.True(t, totals.CouponDiscount.Amount.Equal(decimal.NewFromInt(8)), "coupon discount: %s", totals.CouponDiscount.Amount)
	// tax = 0.18 * 72 = 12.96
	assert.True(t, totals.Tax.Amount.Equal(decimal.RequireFromString("12.96")))
	assert.True(t, totals.GrandTotal.Amount.Equal(decimal.RequireFromString("84.96")))
}

func TestComputeTotals_FixedCouponCannotExceedSubtotal(t *testing.T) {
	calc := testCalculator()

	// BIGSPENDER is worth 500 against a 30 subtotal.
	totals, err := calc.ComputeTotals([]models.LineItem{item(30, 1)}, "BIGSPENDER", "pickup")
	require.NoError(t, err)

	assert.True(t, totals.CouponDiscount.Amount.Equal(decimal.NewFromInt(30)))
	assert.True(t, totals.Tax.Amount.IsZero())
	assert.True(t, totals.GrandTotal.Amount.IsZero())
	assert.False(t, totals.GrandTotal.Amount.IsNegative())
}

func TestComputeTotals_ItemDiscount(t *testing.T) {
	calc := testCalculator()

	// Marked down from 60 to 50, three units: item discount 30.
	totals, err := calc.ComputeTotals([]models.LineItem{discountedItem(50, 60, 3)}, "", "pickup")
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Amount.Equal(decimal.NewFromInt(150)))
	assert.True(t, totals.ItemDiscount.Amount.Equal(decimal.NewFromInt(30)))
	// tax = 0.18 * 120 = 21.60
	assert.True(t, totals.Tax.Amount.Equal(decimal.RequireFromString("21.6")))
}

func TestComputeTotals_OriginalPriceBelowUnitPriceIgnored(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{discountedItem(50, 40, 2)}, "", "pickup")
	require.NoError(t, err)

	assert.True(t, totals.ItemDiscount.Amount.IsZero())
}

func TestComputeTotals_FreeShippingAboveThreshold(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{item(150, 1)}, "", "standard")
	require.NoError(t, err)

	assert.True(t, totals.ShippingCost.Amount.IsZero())
}

func TestComputeTotals_FlatShippingBelowThreshold(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{item(50, 1)}, "", "standard")
	require.NoError(t, err)

	assert.True(t, totals.ShippingCost.Amount.Equal(decimal.RequireFromString("5.99")))
}

func TestComputeTotals_FreeShippingCoupon(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{item(60, 1)}, "FREESHIP", "express")
	require.NoError(t, err)

	// No monetary discount, but express shipping is waived despite
	// having no free-above threshold.
	assert.True(t, totals.CouponDiscount.Amount.IsZero())
	assert.True(t, totals.ShippingCost.Amount.IsZero())
	// tax = 0.18 * 60 = 10.80
	assert.True(t, totals.GrandTotal.Amount.Equal(decimal.RequireFromString("70.8")))
}

func TestComputeTotals_FreeShippingCouponBelowMinimum(t *testing.T) {
	calc := testCalculator()

	// FREESHIP requires a 50 subtotal.
	totals, err := calc.ComputeTotals([]models.LineItem{item(40, 1)}, "FREESHIP", "express")
	require.NoError(t, err)

	assert.True(t, totals.ShippingCost.Amount.Equal(decimal.RequireFromString("14.99")))
}

func TestComputeTotals_UnknownShippingMethod(t *testing.T) {
	calc := testCalculator()

	_, err := calc.ComputeTotals([]models.LineItem{item(10, 1)}, "", "drone")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestComputeTotals_NoShippingMethodSelected(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals([]models.LineItem{item(10, 1)}, "", "")
	require.NoError(t, err)

	assert.True(t, totals.ShippingCost.Amount.IsZero())
}

func TestComputeTotals_RejectsInvalidItems(t *testing.T) {
	calc := testCalculator()

	tests := []struct {
		name string
		item models.LineItem
	}{
		{"negative quantity", item(10, -1)},
		{"zero quantity", item(10, 0)},
		{"negative unit price", item(-10, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.ComputeTotals([]models.LineItem{tt.item}, "", "pickup")
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestComputeTotals_CurrencyMismatchRejected(t *testing.T) {
	calc := testCalculator()

	eur := item(10, 1)
	eur.UnitPrice.Currency = "EUR"

	_, err := calc.ComputeTotals([]models.LineItem{item(10, 1), eur}, "", "pickup")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	calc := testCalculator()

	totals, err := calc.ComputeTotals(nil, "", "express")
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Amount.IsZero())
	assert.True(t, totals.ShippingCost.Amount.IsZero())
	assert.True(t, totals.GrandTotal.Amount.IsZero())
	assert.Equal(t, "USD", totals.Subtotal.Currency)
}

func TestComputeTotals_Idempotent(t *testing.T) {
	calc := testCalculator()

	for i := 0; i < 50; i++ {
		items := make([]models.LineItem, gofakeit.Number(1, 6))
		for j := range items {
			if gofakeit.Bool() {
				price := gofakeit.Price(1, 200)
				items[j] = discountedItem(price, price+gofakeit.Price(0, 50), gofakeit.Number(1, 5))
			} else {
				items[j] = item(gofakeit.Price(1, 200), gofakeit.Number(1, 5))
			}
		}
		coupon := gofakeit.RandomString([]string{"", "SAVE20", "welcome10", "FREESHIP", "BOGUS"})
		method := gofakeit.RandomString([]string{"standard", "express", "pickup"})

		first, err := calc.ComputeTotals(items, coupon, method)
		require.NoError(t, err)
		second, err := calc.ComputeTotals(items, coupon, method)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.False(t, first.GrandTotal.Amount.IsNegative())

		// The breakdown must always add up.
		sum := first.Subtotal.Amount.
			Sub(first.ItemDiscount.Amount).
			Sub(first.CouponDiscount.Amount).
			Add(first.Tax.Amount).
			Add(first.ShippingCost.Amount)
		assert.True(t, sum.Equal(first.GrandTotal.Amount))
	}
}
