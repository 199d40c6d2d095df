package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vandonov/storefront/internal/models"
	"github.com/vandonov/storefront/internal/utils"
)

type CartRepository interface {
	// GetCart returns the user's cart with its lines, creating the cart row
	// lazily if the user has none. Line prices are resolved live from the
	// product catalog at read time.
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	// AddProduct upserts the (cart, product) line. An existing line's
	// quantity is replaced by the supplied quantity, not incremented.
	AddProduct(ctx context.Context, userID, productID int64, quantity int) error
	// RemoveProduct deletes the (cart, product) line. Removing an absent
	// line is a no-op.
	RemoveProduct(ctx context.Context, userID, productID int64) error
	// ClearCart deletes all lines; the cart row itself persists.
	ClearCart(ctx context.Context, userID int64) error
}

type cartRepository struct {
	DB          *sql.DB
	lockTimeout time.Duration
}

func NewCartRepo(db *sql.DB, lockTimeout time.Duration) CartRepository {
	return &cartRepository{DB: db, lockTimeout: lockTimeout}
}

const (
	ensureCartQuery = `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	lockCartQuery = `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`

	cartLinesQuery = `
		SELECT cp.product_id, p.title, p.image, p.price, cp.quantity
		FROM cart_products cp
		JOIN products p ON p.id = cp.product_id
		WHERE cp.cart_id = $1
		ORDER BY cp.id
	`
)

// withLockedCart runs fn inside a transaction holding an exclusive row lock
// on the user's cart, creating the cart first if absent. The lock serializes
// concurrent mutations of the same cart so interleaved read-modify-write
// cannot lose an update. Lock waits are bounded by the configured timeout,
// and fn receives the timeout-bounded context so its statements share the
// same deadline as the transaction setup.
func (r *cartRepository) withLockedCart(ctx context.Context, userID int64, fn func(ctx context.Context, tx *sql.Tx, cartID int64) error) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(dbCtx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if _, err := tx.ExecContext(dbCtx, ensureCartQuery, userID); err != nil {
		return fmt.Errorf("failed to ensure cart exists: %w", err)
	}

	var cartID int64

	if err := tx.QueryRowContext(dbCtx, lockCartQuery, userID).Scan(&cartID); err != nil {
		return fmt.Errorf("failed to lock cart row: %w", err)
	}

	if err := fn(dbCtx, tx, cartID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart transaction: %w", err)
	}

	return nil
}

func (r *cartRepository) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(dbCtx, ensureCartQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure cart exists: %w", err)
	}

	cart := &models.Cart{UserID: userID, Products: []models.CartLine{}}

	query := `
		SELECT id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	if err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := r.DB.QueryContext(dbCtx, cartLinesQuery, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart lines: %w", err)
	}

	defer rows.Close()

	for rows.Next() {

		var line models.CartLine

		if err := rows.Scan(&line.ProductID, &line.Title, &line.Image, &line.Price, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}

		cart.Products = append(cart.Products, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) AddProduct(ctx context.Context, userID, productID int64, quantity int) error {

	return r.withLockedCart(ctx, userID, func(ctx context.Context, tx *sql.Tx, cartID int64) error {

		query := `
			INSERT INTO cart_products (cart_id, product_id, quantity, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
		`

		if _, err := tx.ExecContext(ctx, query, cartID, productID, quantity); err != nil {
			return fmt.Errorf("failed to upsert cart line: %w", err)
		}

		return nil
	})
}

func (r *cartRepository) RemoveProduct(ctx context.Context, userID, productID int64) error {

	return r.withLockedCart(ctx, userID, func(ctx context.Context, tx *sql.Tx, cartID int64) error {

		query := `DELETE FROM cart_products WHERE cart_id = $1 AND product_id = $2`

		if _, err := tx.ExecContext(ctx, query, cartID, productID); err != nil {
			return fmt.Errorf("failed to delete cart line: %w", err)
		}

		return nil
	})
}

func (r *cartRepository) ClearCart(ctx context.Context, userID int64) error {

	return r.withLockedCart(ctx, userID, func(ctx context.Context, tx *sql.Tx, cartID int64) error {

		query := `DELETE FROM cart_products WHERE cart_id = $1`

		if _, err := tx.ExecContext(ctx, query, cartID); err != nil {
			return fmt.Errorf("failed to clear cart lines: %w", err)
		}

		return nil
	})
}
