package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLoggerV2("checkout-service")

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	calculator, err := initCalculator(cfg)
	if err != nil {
		logger.Fatal("Failed to load pricing tables", logging.Fields{"error": err.Error()})
	}

	cartRepo := repository.NewPostgresCartRepository(db, logger)
	checkoutRepo := repository.NewPostgresCheckoutRepository(db, logger)
	cartCache := repository.NewRedisCartCache(cfg.Redis)

	catalogClient := clients.NewHTTPCatalogClient(cfg.CatalogService, logger)
	paymentClient := clients.NewHTTPPaymentClient(cfg.PaymentService, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	cartService := service.NewCartService(cartRepo, cartCache, catalogClient, calculator, cfg)
	checkoutService := service.NewCheckoutService(
		cartRepo,
		checkoutRepo,
		cartCache,
		paymentClient,
		eventPublisher,
		calculator,
		cfg,
	)

	h := handlers.NewHandlers(cartService, checkoutService, cfg)

	srv := server.NewServer(cfg, h)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                   cfg.Server.Port,
			"enable_cart_caching":    cfg.Features.EnableCartCaching,
			"enable_checkout_events": cfg.Features.EnableCheckoutEvents,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	// Payment results arrive asynchronously over Kafka.
	eventConsumer := events.NewKafkaConsumer(cfg.Kafka, checkoutService, logger)
	go func() {
		if err := eventConsumer.Start(context.Background()); err != nil {
			logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eventConsumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *logging.LoggerV2) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return db, nil
}

func initCalculator(cfg *config.Config) (*pricing.Calculator, error) {
	tables, err := pricing.LoadTables(cfg.Pricing.CouponTableJSON, cfg.Pricing.ShippingTableJSON)
	if err != nil {
		return nil, err
	}

	taxRate, err := decimal.NewFromString(cfg.Pricing.TaxRate)
	if err != nil {
		return nil, err
	}

	return pricing.NewCalculator(tables, taxRate, cfg.Pricing.DefaultCurrency), nil
}
