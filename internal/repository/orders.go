package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// Ensure PostgresCheckoutRepository implements CheckoutRepository
var _ CheckoutRepository = (*PostgresCheckoutRepository)(nil)

// PostgresCheckoutRepository implements CheckoutRepository using PostgreSQL.
type PostgresCheckoutRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresCheckoutRepository creates a new PostgreSQL checkout repository.
func NewPostgresCheckoutRepository(db *sql.DB, logger *logging.LoggerV2) *PostgresCheckoutRepository {
	return &PostgresCheckoutRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a checkout order snapshot.
func (r *PostgresCheckoutRepository) Create(ctx context.Context, order *models.CheckoutOrder) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	totalsJSON, err := json.Marshal(order.Totals)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO checkout_orders (
			id, cart_id, user_id, items, coupon_code, shipping_method_id,
			totals, status, payment_id, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.CartID,
		order.UserID,
		itemsJSON,
		nullString(order.CouponCode),
		order.ShippingMethodID,
		totalsJSON,
		order.Status,
		nullString(order.PaymentID),
		nullString(order.Notes),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create checkout order", logging.Fields{
			"cart_id": order.CartID,
			"error":   err.Error(),
		})
		return err
	}

	r.logger.Info("Checkout order created", logging.Fields{
		"order_id": order.ID,
		"cart_id":  order.CartID,
		"total":    order.Totals.GrandTotal.ToFloat(),
	})
	return nil
}

// GetByID retrieves a checkout order.
func (r *PostgresCheckoutRepository) GetByID(ctx context.Context, id string) (*models.CheckoutOrder, error) {
	query := `
		SELECT id, cart_id, user_id, items, coupon_code, shipping_method_id,
		       totals, status, payment_id, notes, created_at, updated_at
		FROM checkout_orders
		WHERE id = $1
	`

	var order models.CheckoutOrder
	var itemsJSON, totalsJSON []byte
	var couponCode, paymentID, notes sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CartID,
		&order.UserID,
		&itemsJSON,
		&couponCode,
		&order.ShippingMethodID,
		&totalsJSON,
		&order.Status,
		&paymentID,
		&notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(totalsJSON, &order.Totals); err != nil {
		return nil, err
	}

	if couponCode.Valid {
		order.CouponCode = couponCode.String
	}
	if paymentID.Valid {
		order.PaymentID = paymentID.String
	}
	if notes.Valid {
		order.Notes = notes.String
	}

	return &order, nil
}

// UpdateStatus updates the status of a checkout order.
func (r *PostgresCheckoutRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, notes string) (*models.CheckoutOrder, error) {
	query := `
		UPDATE checkout_orders
		SET status = $2, notes = COALESCE(NULLIF($3, ''), notes), updated_at = $4
		WHERE id = $1
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, status, notes, time.Now()).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update checkout order status", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	r.logger.Info("Checkout order status updated", logging.Fields{
		"order_id":   id,
		"new_status": status,
	})

	return r.GetByID(ctx, id)
}

// SetPaymentID records the payment reference returned by the payment
// service.
func (r *PostgresCheckoutRepository) SetPaymentID(ctx context.Context, id, paymentID string) error {
	query := `
		UPDATE checkout_orders
		SET payment_id = $2, updated_at = $3
		WHERE id = $1
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, paymentID, time.Now()).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return errors.ErrNotFound
	}
	return err
}

// GetByUserID retrieves a page of checkout orders for a user.
func (r *PostgresCheckoutRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.CheckoutOrder, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checkout_orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, cart_id, user_id, items, coupon_code, shipping_method_id,
		       totals, status, payment_id, notes, created_at, updated_at
		FROM checkout_orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*models.CheckoutOrder
	for rows.Next() {
		var order models.CheckoutOrder
		var itemsJSON, totalsJSON []byte
		var couponCode, paymentID, notes sql.NullString

		if err := rows.Scan(
			&order.ID,
			&order.CartID,
			&order.UserID,
			&itemsJSON,
			&couponCode,
			&order.ShippingMethodID,
			&totalsJSON,
			&order.Status,
			&paymentID,
			&notes,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}

		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(totalsJSON, &order.Totals); err != nil {
			return nil, 0, err
		}
		if couponCode.Valid {
			order.CouponCode = couponCode.String
		}
		if paymentID.Valid {
			order.PaymentID = paymentID.String
		}
		if notes.Valid {
			order.Notes = notes.String
		}

		orders = append(orders, &order)
	}

	return orders, total, rows.Err()
}
