package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
)

// Checkout handles POST /api/v1/carts/:id/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.checkoutService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func (h *Handlers) CancelOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := service.ValidateCancellationReason(req.Reason); err != nil {
		handleError(c, err)
		return
	}

	order, err := h.checkoutService.CancelOrder(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetUserOrders handles GET /api/v1/users/:user_id/orders
func (h *Handlers) GetUserOrders(c *gin.Context) {
	userID := c.Param("user_id")

	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil {
			offset = o
		}
	}

	orders, total, err := h.checkoutService.GetUserOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Quote handles POST /api/v1/quotes
//
// Quotes are stateless: the caller supplies items and prices and gets
// the totals breakdown back without creating a cart.
func (h *Handlers) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	totals, err := h.cartService.Quote(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// ListShippingMethods handles GET /api/v1/shipping-methods
func (h *Handlers) ListShippingMethods(c *gin.Context) {
	methods := h.cartService.Calculator().Tables().ShippingMethods()

	c.JSON(http.StatusOK, gin.H{
		"shipping_methods": methods,
		"count":            len(methods),
	})
}
