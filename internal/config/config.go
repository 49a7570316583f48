package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	CatalogService ServiceConfig
	PaymentService ServiceConfig
	Pricing        PricingConfig
	Features       FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	CheckoutTopic string
	PaymentsTopic string
	ConsumerGroup string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// PricingConfig feeds the order total calculator. CouponTableJSON and
// ShippingTableJSON override the built-in lookup tables when set; the
// tables should eventually come from the catalog service instead.
type PricingConfig struct {
	TaxRate           string
	DefaultCurrency   string
	CouponTableJSON   string
	ShippingTableJSON string
}

type FeatureFlags struct {
	EnableCartCaching    bool
	EnableCheckoutEvents bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "acme"),
			Password:     getEnvString("DB_PASSWORD", "acme"),
			Name:         getEnvString("DB_NAME", "acme_checkout"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnvString("KAFKA_BROKERS", "localhost:9092"), ","),
			CheckoutTopic: getEnvString("KAFKA_CHECKOUT_TOPIC", "checkout-events"),
			PaymentsTopic: getEnvString("KAFKA_PAYMENTS_TOPIC", "payment-events"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "checkout-service"),
		},
		CatalogService: ServiceConfig{
			BaseURL: getEnvString("CATALOG_SERVICE_URL", "http://localhost:8081"),
			Timeout: time.Duration(getEnvInt("CATALOG_SERVICE_TIMEOUT", 10)) * time.Second,
			APIKey:  getEnvString("CATALOG_SERVICE_API_KEY", ""),
		},
		PaymentService: ServiceConfig{
			BaseURL: getEnvString("PAYMENT_SERVICE_URL", "http://localhost:8083"),
			Timeout: time.Duration(getEnvInt("PAYMENT_SERVICE_TIMEOUT", 30)) * time.Second,
			APIKey:  getEnvString("PAYMENT_SERVICE_API_KEY", ""),
		},
		Pricing: PricingConfig{
			TaxRate:           getEnvString("PRICING_TAX_RATE", "0.18"),
			DefaultCurrency:   getEnvString("PRICING_DEFAULT_CURRENCY", "USD"),
			CouponTableJSON:   getEnvString("PRICING_COUPON_TABLE", ""),
			ShippingTableJSON: getEnvString("PRICING_SHIPPING_TABLE", ""),
		},
		Features: FeatureFlags{
			EnableCartCaching:    getEnvBool("FEATURE_CART_CACHING", true),
			EnableCheckoutEvents: getEnvBool("FEATURE_CHECKOUT_EVENTS", true),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
