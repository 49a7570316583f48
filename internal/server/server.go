package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	logger   *logging.LoggerV2
	http     *http.Server
}

func NewServer(cfg *config.Config, h *handlers.Handlers) *Server {
	router := gin.Default()

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logging.NewLoggerV2("server"),
	}

	router.Use(requestMetrics())

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/debug", s.handlers.Debug)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/carts", s.handlers.CreateCart)
		v1.GET("/carts/:id", s.handlers.GetCart)
		v1.POST("/carts/:id/items", s.handlers.AddItem)
		v1.PATCH("/carts/:id/items/:product_id", s.handlers.UpdateItem)
		v1.DELETE("/carts/:id/items/:product_id", s.handlers.RemoveItem)
		v1.PUT("/carts/:id/coupon", s.handlers.ApplyCoupon)
		v1.DELETE("/carts/:id/coupon", s.handlers.RemoveCoupon)
		v1.PUT("/carts/:id/shipping-method", s.handlers.SelectShippingMethod)
		v1.GET("/carts/:id/totals", s.handlers.GetCartTotals)
		v1.POST("/carts/:id/checkout", s.handlers.Checkout)

		v1.GET("/orders/:id", s.handlers.GetOrder)
		v1.POST("/orders/:id/cancel", s.handlers.CancelOrder)
		v1.GET("/users/:user_id/orders", s.handlers.GetUserOrders)
		v1.GET("/users/:user_id/cart", s.handlers.GetUserCart)

		v1.POST("/quotes", s.handlers.Quote)
		v1.GET("/shipping-methods", s.handlers.ListShippingMethods)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Info("Starting server", logging.Fields{"addr": addr})
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
