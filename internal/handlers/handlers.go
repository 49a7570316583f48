package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
)

// Handlers holds all HTTP handlers for the checkout service.
type Handlers struct {
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	config          *config.Config
	logger          *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		cartService:     cartService,
		checkoutService: checkoutService,
		config:          cfg,
		logger:          logging.NewLoggerV2("handlers"),
	}
}

func handleError(c *gin.Context, err error) {
	if err == errors.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if validationErr, ok := err.(*errors.ValidationError); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"details": validationErr.Details,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
