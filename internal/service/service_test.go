package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	apperrors "github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/pricing"
)

// In-memory fakes for the repository, cache, client, and publisher
// ports so the services can be exercised without infrastructure.

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*models.Cart)}
}

func (r *fakeCartRepo) Create(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *cart
	r.carts[cart.ID] = &c
	return nil
}

func (r *fakeCartRepo) GetByID(_ context.Context, id string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *cart
	return &c, nil
}

func (r *fakeCartRepo) Update(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cart.ID]; !ok {
		return apperrors.ErrNotFound
	}
	c := *cart
	r.carts[cart.ID] = &c
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.carts, id)
	return nil
}

func (r *fakeCartRepo) GetActiveByUserID(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cart := range r.carts {
		if cart.UserID == userID {
			c := *cart
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeCartCache struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newFakeCartCache() *fakeCartCache {
	return &fakeCartCache{carts: make(map[string]*models.Cart)}
}

func (c *fakeCartCache) Get(_ context.Context, id string) (*models.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.carts[id], nil
}

func (c *fakeCartCache) Set(_ context.Context, cart *models.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[cart.ID] = cart
	return nil
}

func (c *fakeCartCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, id)
	return nil
}

type fakeCheckoutRepo struct {
	mu     sync.Mutex
	orders map[string]*models.CheckoutOrder
}

func newFakeCheckoutRepo() *fakeCheckoutRepo {
	return &fakeCheckoutRepo{orders: make(map[string]*models.CheckoutOrder)}
}

func (r *fakeCheckoutRepo) Create(_ context.Context, order *models.CheckoutOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := *order
	r.orders[order.ID] = &o
	return nil
}

func (r *fakeCheckoutRepo) GetByID(_ context.Context, id string) (*models.CheckoutOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	o := *order
	return &o, nil
}

func (r *fakeCheckoutRepo) UpdateStatus(_ context.Context, id string, status models.OrderStatus, notes string) (*models.CheckoutOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	order.Status = status
	if notes != "" {
		order.Notes = notes
	}
	o := *order
	return &o, nil
}

func (r *fakeCheckoutRepo) SetPaymentID(_ context.Context, id, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	order.PaymentID = paymentID
	return nil
}

func (r *fakeCheckoutRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*models.CheckoutOrder, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []*models.CheckoutOrder
	for _, order := range r.orders {
		if order.UserID == userID {
			o := *order
			orders = append(orders, &o)
		}
	}
	return orders, len(orders), nil
}

type fakeCatalog struct {
	products map[string]*clients.Product
}

func (c *fakeCatalog) GetProduct(_ context.Context, productID string) (*clients.Product, error) {
	return c.products[productID], nil
}

type fakePaymentClient struct {
	status  clients.PaymentStatus
	fail    bool
	charges []*clients.ChargeRequest
}

func (c *fakePaymentClient) Charge(_ context.Context, req *clients.ChargeRequest) (*clients.ChargeResponse, error) {
	if c.fail {
		return nil, errors.New("payment service unavailable")
	}
	c.charges = append(c.charges, req)
	status := c.status
	if status == "" {
		status = clients.PaymentStatusCompleted
	}
	return &clients.ChargeResponse{PaymentID: "pay_test", Status: status}, nil
}

func (c *fakePaymentClient) GetPaymentStatus(_ context.Context, _ string) (*clients.ChargeResponse, error) {
	return nil, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
}

func (p *fakePublisher) record(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
}

func (p *fakePublisher) PublishCheckoutCompleted(_ context.Context, _ *models.CheckoutOrder) error {
	p.record("checkout.completed")
	return nil
}

func (p *fakePublisher) PublishOrderStatusChanged(_ context.Context, _ *models.CheckoutOrder, _ models.OrderStatus) error {
	p.record("checkout.order_status_changed")
	return nil
}

func (p *fakePublisher) PublishOrderCancelled(_ context.Context, _ *models.CheckoutOrder, _ string) error {
	p.record("checkout.order_cancelled")
	return nil
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Features.EnableCartCaching = true
	cfg.Features.EnableCheckoutEvents = true
	return cfg
}

func testPricingCalculator() *pricing.Calculator {
	tables, _ := pricing.LoadTables("", "")
	return pricing.NewCalculator(tables, decimal.RequireFromString("0.18"), "USD")
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]*clients.Product{
		"prod_tea": {
			ID:        "prod_tea",
			Name:      "Loose Leaf Tea",
			Price:     decimal.NewFromInt(100),
			ListPrice: decimal.NewFromInt(100),
			Currency:  "USD",
			Active:    true,
		},
		"prod_mug": {
			ID:        "prod_mug",
			Name:      "Stoneware Mug",
			Price:     decimal.NewFromInt(50),
			ListPrice: decimal.NewFromInt(60),
			Currency:  "USD",
			Active:    true,
		},
		"prod_retired": {
			ID:       "prod_retired",
			Name:     "Retired Product",
			Price:    decimal.NewFromInt(10),
			Currency: "USD",
			Active:   false,
		},
	}}
}
