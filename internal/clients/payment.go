package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// PaymentStatus mirrors the payment service's lifecycle states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ChargeRequest asks the payment service to charge an order total.
type ChargeRequest struct {
	OrderID   string       `json:"order_id"`
	UserID    string       `json:"user_id"`
	Amount    models.Money `json:"amount"`
	CardToken string       `json:"card_token,omitempty"`
}

// ChargeResponse is the payment service's answer to a charge.
type ChargeResponse struct {
	PaymentID string        `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
}

// PaymentClient provides charge operations against the payment service.
type PaymentClient interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*ChargeResponse, error)
}

// Ensure HTTPPaymentClient implements PaymentClient
var _ PaymentClient = (*HTTPPaymentClient)(nil)

// HTTPPaymentClient implements PaymentClient using HTTP.
type HTTPPaymentClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logging.LoggerV2
}

// NewHTTPPaymentClient creates a new HTTP-based payment client.
func NewHTTPPaymentClient(cfg config.ServiceConfig, logger *logging.LoggerV2) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// Charge initiates a payment for a checkout order.
func (c *HTTPPaymentClient) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	c.logger.Debug("Charging payment", logging.Fields{
		"order_id": req.OrderID,
		"amount":   req.Amount.ToFloat(),
	})

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v2/payments", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Payment request failed", logging.Fields{
			"order_id": req.OrderID,
			"error":    err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("Payment request returned error", logging.Fields{
			"order_id":    req.OrderID,
			"status_code": resp.StatusCode,
		})
		return nil, fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}

	var result ChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	c.logger.Info("Payment charged", logging.Fields{
		"order_id":   req.OrderID,
		"payment_id": result.PaymentID,
		"status":     result.Status,
	})

	return &result, nil
}

// GetPaymentStatus retrieves the current status of a payment.
// Unknown payments return (nil, nil).
func (c *HTTPPaymentClient) GetPaymentStatus(ctx context.Context, paymentID string) (*ChargeResponse, error) {
	url := fmt.Sprintf("%s/api/v2/payments/%s", c.baseURL, paymentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}

	var result ChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *HTTPPaymentClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
