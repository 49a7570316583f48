package service

import (
	"context"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
)

// CartService handles cart business logic. Every mutation recomputes
// the cart's totals through the calculator before the cart is saved,
// so persisted totals always match the persisted state.
type CartService struct {
	cartRepo   repository.CartRepository
	cartCache  repository.CartCache
	catalog    clients.CatalogClient
	calculator *pricing.Calculator
	config     *config.Config
	logger     *logging.LoggerV2
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	cartCache repository.CartCache,
	catalog clients.CatalogClient,
	calculator *pricing.Calculator,
	cfg *config.Config,
) *CartService {
	return &CartService{
		cartRepo:   cartRepo,
		cartCache:  cartCache,
		catalog:    catalog,
		calculator: calculator,
		config:     cfg,
		logger:     logging.NewLoggerV2("cart-service"),
	}
}

// Calculator exposes the order total calculator for stateless quoting.
func (s *CartService) Calculator() *pricing.Calculator {
	return s.calculator
}

// CreateCart opens a new empty cart for a user.
func (s *CartService) CreateCart(ctx context.Context, req *models.CreateCartRequest) (*models.Cart, error) {
	if err := ValidateCreateCartRequest(req); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.config.Pricing.DefaultCurrency
	}

	now := time.Now()
	cart := &models.Cart{
		ID:        repository.NewCartID(),
		UserID:    req.UserID,
		Currency:  currency,
		Items:     []models.LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.recomputeTotals(cart); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Create(ctx, cart); err != nil {
		s.logger.Error("Failed to create cart", logging.Fields{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.cacheSet(ctx, cart)

	s.logger.Info("Cart created", logging.Fields{
		"cart_id": cart.ID,
		"user_id": cart.UserID,
	})
	return cart, nil
}

// GetCart retrieves a cart by ID.
func (s *CartService) GetCart(ctx context.Context, id string) (*models.Cart, error) {
	if s.config.Features.EnableCartCaching {
		if cart, err := s.cartCache.Get(ctx, id); err == nil && cart != nil {
			return cart, nil
		}
	}

	cart, err := s.cartRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cart)
	return cart, nil
}

// GetActiveCart returns the user's most recently updated open cart.
func (s *CartService) GetActiveCart(ctx context.Context, userID string) (*models.Cart, error) {
	return s.cartRepo.GetActiveByUserID(ctx, userID)
}

// AddItem adds a product to the cart, merging quantities when the
// product is already present. Unit prices come from the catalog, never
// from the client.
func (s *CartService) AddItem(ctx context.Context, cartID string, req *models.AddItemRequest) (*models.Cart, error) {
	if err := ValidateAddItemRequest(req); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		s.logger.Error("Failed to resolve product", logging.Fields{
			"product_id": req.ProductID,
			"error":      err.Error(),
		})
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, errors.NewValidationError("product_id", "product not found or inactive")
	}
	if product.Currency != cart.Currency {
		return nil, errors.NewValidationError("product_id", "product currency does not match cart")
	}

	if idx := cart.FindItem(req.ProductID); idx >= 0 {
		cart.Items[idx].Quantity += req.Quantity
	} else {
		item := models.LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   models.NewMoney(product.Price, product.Currency),
			Quantity:    req.Quantity,
		}
		if product.ListPrice.GreaterThan(product.Price) {
			orig := models.NewMoney(product.ListPrice, product.Currency)
			item.OriginalUnitPrice = &orig
		}
		cart.Items = append(cart.Items, item)
	}

	return s.saveCart(ctx, cart)
}

// UpdateItemQuantity sets the quantity of an existing line item.
// Invalid quantities are rejected, not clamped; removal is its own
// operation.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, errors.NewValidationError("quantity", "quantity must be positive")
	}

	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, errors.ErrNotFound
	}
	cart.Items[idx].Quantity = quantity

	return s.saveCart(ctx, cart)
}

// RemoveItem deletes a line item from the cart.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, errors.ErrNotFound
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	return s.saveCart(ctx, cart)
}

// ApplyCoupon attaches a coupon code to the cart. An unknown or
// ineligible code is kept without error; it simply contributes no
// discount until it becomes applicable.
func (s *CartService) ApplyCoupon(ctx context.Context, cartID, code string) (*models.Cart, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.NewValidationError("code", "coupon code is required")
	}

	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.CouponCode = code

	if _, ok := s.calculator.Tables().LookupCoupon(code); !ok {
		s.logger.Info("Unknown coupon applied", logging.Fields{
			"cart_id": cartID,
			"code":    code,
		})
	}

	return s.saveCart(ctx, cart)
}

// RemoveCoupon detaches the coupon from the cart.
func (s *CartService) RemoveCoupon(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.CouponCode = ""

	return s.saveCart(ctx, cart)
}

// SelectShippingMethod sets the cart's shipping method. The id must be
// one of the enumerated methods.
func (s *CartService) SelectShippingMethod(ctx context.Context, cartID, methodID string) (*models.Cart, error) {
	if _, ok := s.calculator.Tables().LookupShippingMethod(methodID); !ok {
		return nil, errors.NewValidationError("method_id", "unknown shipping method")
	}

	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.ShippingMethodID = methodID

	return s.saveCart(ctx, cart)
}

// Quote computes totals for ad-hoc items without touching any stored
// cart. It backs the stateless quote endpoint used by the cart UI
// before a cart exists.
func (s *CartService) Quote(ctx context.Context, req *models.QuoteRequest) (models.OrderTotals, error) {
	if err := ValidateQuoteRequest(req); err != nil {
		return models.OrderTotals{}, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.config.Pricing.DefaultCurrency
	}

	items := make([]models.LineItem, len(req.Items))
	for i, qi := range req.Items {
		items[i] = models.LineItem{
			ProductID: qi.ProductID,
			UnitPrice: models.NewMoneyFromFloat(qi.UnitPrice, currency),
			Quantity:  qi.Quantity,
		}
		if qi.OriginalUnitPrice != 0 {
			orig := models.NewMoneyFromFloat(qi.OriginalUnitPrice, currency)
			items[i].OriginalUnitPrice = &orig
		}
	}

	return s.calculator.ComputeTotals(items, req.CouponCode, req.ShippingMethodID)
}

func (s *CartService) recomputeTotals(cart *models.Cart) error {
	totals, err := s.calculator.ComputeTotals(cart.Items, cart.CouponCode, cart.ShippingMethodID)
	if err != nil {
		return err
	}
	cart.Totals = totals
	return nil
}

// saveCart recomputes totals, persists the cart, and refreshes the
// cache in one place so no mutation path can skip a step.
func (s *CartService) saveCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := s.recomputeTotals(cart); err != nil {
		return nil, err
	}
	cart.UpdatedAt = time.Now()

	if err := s.cartRepo.Update(ctx, cart); err != nil {
		return nil, err
	}

	if s.config.Features.EnableCartCaching {
		s.cartCache.Delete(ctx, cart.ID)
	}
	s.cacheSet(ctx, cart)

	return cart, nil
}

func (s *CartService) cacheSet(ctx context.Context, cart *models.Cart) {
	if !s.config.Features.EnableCartCaching {
		return
	}
	if err := s.cartCache.Set(ctx, cart); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to cache cart", logging.Fields{
			"cart_id": cart.ID,
			"error":   err.Error(),
		})
	}
}
