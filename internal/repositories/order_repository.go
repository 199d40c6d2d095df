package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vandonov/storefront/internal/models"
	"github.com/vandonov/storefront/internal/utils"
)

var (
	// ErrCartEmpty is returned when checkout finds no cart lines. A user
	// without a cart row counts as an empty cart.
	ErrCartEmpty = errors.New("cart has no products")

	ErrOrderNotFound = errors.New("order not found")
)

type OrderRepository interface {
	// CheckoutCart converts the user's cart into an order in one
	// transaction: reads current product prices, writes the order and its
	// line snapshots, clears the cart lines. All steps commit or none do.
	CheckoutCart(ctx context.Context, userID int64) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64, filters models.OrderFilters, sort models.SortParams, page, size int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error)
}

type orderRepository struct {
	DB          *sql.DB
	lockTimeout time.Duration
}

func NewOrderRepo(db *sql.DB, lockTimeout time.Duration) OrderRepository {
	return &orderRepository{DB: db, lockTimeout: lockTimeout}
}

func (r *orderRepository) CheckoutCart(ctx context.Context, userID int64) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(dbCtx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return nil, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	// Locking the cart row serializes checkout against concurrent cart
	// mutations and against a second checkout attempt: the loser of the
	// race observes an already-emptied cart and fails with ErrCartEmpty.
	var cartID int64

	err = tx.QueryRowContext(dbCtx, lockCartQuery, userID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartEmpty
	} else if err != nil {
		return nil, fmt.Errorf("failed to lock cart row: %w", err)
	}

	// Prices are read here, inside the transaction: the catalog price at
	// the moment of purchase is authoritative, not the price shown when
	// the item was added to the cart.
	linesQuery := `
		SELECT cp.product_id, p.title, cp.quantity, p.price
		FROM cart_products cp
		JOIN products p ON p.id = cp.product_id
		WHERE cp.cart_id = $1
		ORDER BY cp.id
	`

	rows, err := tx.QueryContext(dbCtx, linesQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}

	var lines []models.OrderLine

	total := decimal.Zero

	for rows.Next() {

		var line models.OrderLine

		if err := rows.Scan(&line.ProductID, &line.Title, &line.Quantity, &line.Price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}

		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		lines = append(lines, line)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	order := &models.Order{
		UserID:     userID,
		Status:     models.OrderStatusPending,
		TotalPrice: total,
		Products:   lines,
	}

	insertOrderQuery := `
		INSERT INTO orders (user_id, status, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, insertOrderQuery, order.UserID, order.Status, order.TotalPrice).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	insertLineQuery := `
		INSERT INTO order_products (order_id, product_id, quantity, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

	for _, line := range order.Products {
		// The line snapshot carries the same price used in the total, so
		// the stored total and the sum of the lines can never drift.
		if _, err := tx.ExecContext(dbCtx, insertLineQuery, order.ID, line.ProductID, line.Quantity, line.Price); err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_products WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{ID: orderID}

	query := `
		SELECT user_id, status, total_price, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, orderID).
		Scan(&order.UserID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	lines, err := r.orderLines(dbCtx, orderID)
	if err != nil {
		return nil, err
	}

	order.Products = lines

	return order, nil
}

func (r *orderRepository) orderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {

	query := `
		SELECT op.product_id, p.title, op.quantity, op.price
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY op.id
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}

	defer rows.Close()

	var lines []models.OrderLine

	for rows.Next() {

		var line models.OrderLine

		if err := rows.Scan(&line.ProductID, &line.Title, &line.Quantity, &line.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}

		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order lines: %w", err)
	}

	return lines, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID int64, filters models.OrderFilters, sort models.SortParams, page, size int) ([]models.Order, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	b := buildOrderWhere(userID, filters)

	var total int

	countQuery := `SELECT COUNT(*) FROM orders o` + b.where()

	if err := r.DB.QueryRowContext(dbCtx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * size

	query := fmt.Sprintf(`
		SELECT o.id, o.user_id, o.status, o.total_price, o.created_at, o.updated_at
		FROM orders o%s%s
		LIMIT $%d OFFSET $%d
	`, b.where(), orderBy(sort, orderSortFields, "created_at"), b.next(), b.next()+1)

	args := append(b.args, size, offset)

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {

		var order models.Order

		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read orders: %w", err)
	}

	for i := range orders {

		lines, err := r.orderLines(dbCtx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}

		orders[i].Products = lines
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.DB.ExecContext(dbCtx, query, status, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return nil, ErrOrderNotFound
	}

	return r.GetOrderByID(ctx, orderID)
}
