package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
)

// Product is the catalog view of a sellable item. ListPrice is the
// pre-markdown price and equals Price when the product is not on sale.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ListPrice decimal.Decimal `json:"list_price"`
	Currency  string          `json:"currency"`
	Active    bool            `json:"active"`
}

// CatalogClient provides product lookups.
type CatalogClient interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// Ensure HTTPCatalogClient implements CatalogClient
var _ CatalogClient = (*HTTPCatalogClient)(nil)

// HTTPCatalogClient implements CatalogClient using HTTP.
type HTTPCatalogClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logging.LoggerV2
}

// NewHTTPCatalogClient creates a new HTTP-based catalog client.
func NewHTTPCatalogClient(cfg config.ServiceConfig, logger *logging.LoggerV2) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// GetProduct retrieves a product by ID. Unknown products return
// (nil, nil).
func (c *HTTPCatalogClient) GetProduct(ctx context.Context, productID string) (*Product, error) {
	c.logger.Debug("Fetching product", logging.Fields{"product_id": productID})

	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch product", logging.Fields{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, err
	}

	return &product, nil
}

func (c *HTTPCatalogClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
