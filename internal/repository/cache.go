package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

const (
	cartKeyPrefix   = "cart:"
	defaultCacheTTL = 5 * time.Minute
)

// Ensure RedisCartCache implements CartCache
var _ CartCache = (*RedisCartCache)(nil)

// RedisCartCache implements CartCache using Redis. Entries are
// invalidated on every cart mutation so cached totals can never drift
// from the cart state they were derived from.
type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisCartCache creates a new Redis-based cart cache.
func NewRedisCartCache(cfg config.RedisConfig) *RedisCartCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisCartCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("cart-cache"),
	}
}

// Get retrieves a cart from cache. A cache miss returns (nil, nil).
func (c *RedisCartCache) Get(ctx context.Context, id string) (*models.Cart, error) {
	key := cartKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", logging.Fields{"cart_id": id})
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"cart_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}

	c.logger.Debug("Cache hit", logging.Fields{"cart_id": id})
	return &cart, nil
}

// Set stores a cart in cache.
func (c *RedisCartCache) Set(ctx context.Context, cart *models.Cart) error {
	key := cartKeyPrefix + cart.ID

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"cart_id": cart.ID,
			"error":   err.Error(),
		})
		return err
	}

	return nil
}

// Delete removes a cart from cache.
func (c *RedisCartCache) Delete(ctx context.Context, id string) error {
	key := cartKeyPrefix + id

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete error", logging.Fields{
			"cart_id": id,
			"error":   err.Error(),
		})
		return err
	}

	return nil
}
