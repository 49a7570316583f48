package service

import (
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/format"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// ValidateCreateCartRequest validates a cart creation request.
func ValidateCreateCartRequest(req *models.CreateCartRequest) error {
	if req.UserID == "" {
		return errors.NewValidationError("user_id", "user ID is required")
	}

	if req.Currency != "" && !format.ValidCurrencyCode(req.Currency) {
		return errors.NewValidationError("currency", "currency must be a valid ISO 4217 code")
	}

	return nil
}

// ValidateAddItemRequest validates an add-to-cart request.
func ValidateAddItemRequest(req *models.AddItemRequest) error {
	if req.ProductID == "" {
		return errors.NewValidationError("product_id", "product ID is required")
	}

	if req.Quantity < 1 {
		return errors.NewValidationError("quantity", "quantity must be positive")
	}

	return nil
}

// ValidateQuoteRequest validates a stateless quote request. Item-level
// price and quantity checks live in the calculator; this only rejects
// shapes the calculator never sees.
func ValidateQuoteRequest(req *models.QuoteRequest) error {
	if len(req.Items) == 0 {
		return errors.NewValidationError("items", "at least one item is required")
	}

	for _, item := range req.Items {
		if item.ProductID == "" {
			return errors.NewValidationError("items", "product ID is required for item")
		}
	}

	if req.Currency != "" && !format.ValidCurrencyCode(req.Currency) {
		return errors.NewValidationError("currency", "currency must be a valid ISO 4217 code")
	}

	return nil
}

// ValidateCancellationReason validates an order cancellation reason.
func ValidateCancellationReason(reason string) error {
	if reason == "" {
		return errors.NewValidationError("reason", "cancellation reason is required")
	}

	if len(reason) > 500 {
		return errors.NewValidationError("reason", "cancellation reason too long (max 500 characters)")
	}

	return nil
}
