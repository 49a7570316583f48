package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "checkout-service",
	})
}

// Ready handles GET /ready
func (h *Handlers) Ready(c *gin.Context) {
	// TODO(TEAM-PLATFORM): Add actual readiness checks (DB, Redis, Kafka)
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "checkout-service",
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    "1.0.0",
		"service":    "checkout-service",
		"go_version": runtime.Version(),
		"built_at":   startTime.Format(time.RFC3339),
	})
}

// Debug handles GET /debug
func (h *Handlers) Debug(c *gin.Context) {
	// TODO(TEAM-SEC): Disable in production
	c.JSON(http.StatusOK, gin.H{
		"features": gin.H{
			"enable_cart_caching":    h.config.Features.EnableCartCaching,
			"enable_checkout_events": h.config.Features.EnableCheckoutEvents,
		},
		"config": gin.H{
			"server_port":         h.config.Server.Port,
			"database_host":       h.config.Database.Host,
			"redis_host":          h.config.Redis.Host,
			"catalog_service_url": h.config.CatalogService.BaseURL,
			"payment_service_url": h.config.PaymentService.BaseURL,
		},
	})
}
