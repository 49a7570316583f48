package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// Ensure PostgresCartRepository implements CartRepository
var _ CartRepository = (*PostgresCartRepository)(nil)

// PostgresCartRepository implements CartRepository using PostgreSQL.
// Line items and derived totals are stored as JSONB alongside the cart
// row, so totals are never written detached from the state they were
// computed from.
type PostgresCartRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresCartRepository creates a new PostgreSQL cart repository.
func NewPostgresCartRepository(db *sql.DB, logger *logging.LoggerV2) *PostgresCartRepository {
	return &PostgresCartRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new cart.
func (r *PostgresCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	r.logger.Debug("Creating cart", logging.Fields{"user_id": cart.UserID})

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}
	totalsJSON, err := json.Marshal(cart.Totals)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO carts (
			id, user_id, currency, items, coupon_code, shipping_method_id,
			totals, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		cart.ID,
		cart.UserID,
		cart.Currency,
		itemsJSON,
		nullString(cart.CouponCode),
		nullString(cart.ShippingMethodID),
		totalsJSON,
		cart.CreatedAt,
		cart.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create cart", logging.Fields{
			"user_id": cart.UserID,
			"error":   err.Error(),
		})
		return err
	}

	r.logger.Info("Cart created", logging.Fields{
		"cart_id": cart.ID,
		"user_id": cart.UserID,
	})
	return nil
}

// GetByID retrieves a cart by its unique identifier.
func (r *PostgresCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	query := `
		SELECT id, user_id, currency, items, coupon_code, shipping_method_id,
		       totals, created_at, updated_at
		FROM carts
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanCart(r.db.QueryRowContext(ctx, query, id))
}

// GetActiveByUserID retrieves the most recent cart for a user.
func (r *PostgresCartRepository) GetActiveByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	query := `
		SELECT id, user_id, currency, items, coupon_code, shipping_method_id,
		       totals, created_at, updated_at
		FROM carts
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return r.scanCart(r.db.QueryRowContext(ctx, query, userID))
}

// Update rewrites the cart state and its derived totals in one statement.
func (r *PostgresCartRepository) Update(ctx context.Context, cart *models.Cart) error {
	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}
	totalsJSON, err := json.Marshal(cart.Totals)
	if err != nil {
		return err
	}

	query := `
		UPDATE carts
		SET items = $2, coupon_code = $3, shipping_method_id = $4,
		    totals = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id
	`

	var returnedID string
	err = r.db.QueryRowContext(ctx, query,
		cart.ID,
		itemsJSON,
		nullString(cart.CouponCode),
		nullString(cart.ShippingMethodID),
		totalsJSON,
		cart.UpdatedAt,
	).Scan(&returnedID)

	if err == sql.ErrNoRows {
		return errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update cart", logging.Fields{
			"cart_id": cart.ID,
			"error":   err.Error(),
		})
		return err
	}

	return nil
}

// Delete soft-deletes a cart.
func (r *PostgresCartRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE carts
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, time.Now()).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to delete cart", logging.Fields{
			"cart_id": id,
			"error":   err.Error(),
		})
		return err
	}

	r.logger.Info("Cart deleted", logging.Fields{"cart_id": id})
	return nil
}

func (r *PostgresCartRepository) scanCart(row *sql.Row) (*models.Cart, error) {
	var cart models.Cart
	var itemsJSON, totalsJSON []byte
	var couponCode, shippingMethodID sql.NullString

	err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Currency,
		&itemsJSON,
		&couponCode,
		&shippingMethodID,
		&totalsJSON,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(totalsJSON, &cart.Totals); err != nil {
		return nil, err
	}

	if couponCode.Valid {
		cart.CouponCode = couponCode.String
	}
	if shippingMethodID.Valid {
		cart.ShippingMethodID = shippingMethodID.String
	}

	return &cart, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NewCartID generates a cart identifier.
func NewCartID() string {
	return "cart_" + uuid.NewString()
}

// NewOrderID generates a checkout order identifier.
func NewOrderID() string {
	return "ord_" + uuid.NewString()
}
