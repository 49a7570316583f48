package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
)

// CreateCart handles POST /api/v1/carts
func (h *Handlers) CreateCart(c *gin.Context) {
	var req models.CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// Get user ID from context if not provided
	if req.UserID == "" {
		if userID, exists := c.Get("user_id"); exists {
			req.UserID = userID.(string)
		}
	}

	if err := service.ValidateCreateCartRequest(&req); err != nil {
		handleError(c, err)
		return
	}

	cart, err := h.cartService.CreateCart(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cart)
}

// GetCart handles GET /api/v1/carts/:id
func (h *Handlers) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// GetUserCart handles GET /api/v1/users/:user_id/cart
func (h *Handlers) GetUserCart(c *gin.Context) {
	cart, err := h.cartService.GetActiveCart(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /api/v1/carts/:id/items
func (h *Handlers) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := service.ValidateAddItemRequest(&req); err != nil {
		handleError(c, err)
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// UpdateItem handles PATCH /api/v1/carts/:id/items/:product_id
func (h *Handlers) UpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cart, err := h.cartService.UpdateItemQuantity(
		c.Request.Context(),
		c.Param("id"),
		c.Param("product_id"),
		req.Quantity,
	)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/v1/carts/:id/items/:product_id
func (h *Handlers) RemoveItem(c *gin.Context) {
	cart, err := h.cartService.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("product_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// ApplyCoupon handles PUT /api/v1/carts/:id/coupon
func (h *Handlers) ApplyCoupon(c *gin.Context) {
	var req models.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	cart, err := h.cartService.ApplyCoupon(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveCoupon handles DELETE /api/v1/carts/:id/coupon
func (h *Handlers) RemoveCoupon(c *gin.Context) {
	cart, err := h.cartService.RemoveCoupon(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// SelectShippingMethod handles PUT /api/v1/carts/:id/shipping-method
func (h *Handlers) SelectShippingMethod(c *gin.Context) {
	var req models.SelectShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cart, err := h.cartService.SelectShippingMethod(c.Request.Context(), c.Param("id"), req.MethodID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// GetCartTotals handles GET /api/v1/carts/:id/totals
func (h *Handlers) GetCartTotals(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart.Totals)
}
