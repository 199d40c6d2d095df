package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandonov/storefront/internal/models"
	repository "github.com/vandonov/storefront/internal/repositories"
)

func TestOrderRepositoryCheckoutCart(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrderRepo(db, testLockTimeout)
	ctx := context.Background()

	t.Run("Success_SnapshotsCurrentPrices", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '3000ms'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM carts WHERE user_id = $1 FOR UPDATE")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectQuery(`SELECT cp.product_id, p.title, cp.quantity, p.price`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "price"}).
				AddRow(3, "Mug", 2, "9.99").
				AddRow(4, "Shirt", 1, "19.50"))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(int64(7), models.OrderStatusPending, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(100, now, now))
		mock.ExpectExec(`INSERT INTO order_products`).
			WithArgs(int64(100), int64(3), 2, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_products`).
			WithArgs(int64(100), int64(4), 1, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_products WHERE cart_id = $1")).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		// Act
		order, err := repo.CheckoutCart(ctx, 7)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(100), order.ID)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		// 2 * 9.99 + 1 * 19.50
		assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("39.48")),
			"expected total 39.48, got %s", order.TotalPrice)
		require.Len(t, order.Products, 2)
		assert.True(t, order.Products[0].Price.Equal(decimal.RequireFromString("9.99")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NoCartRow_IsEmptyCart", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '3000ms'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM carts WHERE user_id = $1 FOR UPDATE")).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		// Act
		order, err := repo.CheckoutCart(ctx, 8)

		// Assert
		require.ErrorIs(t, err, repository.ErrCartEmpty)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NoLines_IsEmptyCart", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '3000ms'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM carts WHERE user_id = $1 FOR UPDATE")).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(44))
		mock.ExpectQuery(`SELECT cp.product_id, p.title, cp.quantity, p.price`).
			WithArgs(int64(44)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "price"}))
		mock.ExpectRollback()

		// Act
		order, err := repo.CheckoutCart(ctx, 9)

		// Assert
		require.ErrorIs(t, err, repository.ErrCartEmpty)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_LineInsertFails_RollsBackEverything", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '3000ms'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM carts WHERE user_id = $1 FOR UPDATE")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectQuery(`SELECT cp.product_id, p.title, cp.quantity, p.price`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "price"}).
				AddRow(3, "Mug", 2, "9.99"))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(int64(7), models.OrderStatusPending, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(101, now, now))
		mock.ExpectExec(`INSERT INTO order_products`).
			WithArgs(int64(101), int64(3), 2, sqlmock.AnyArg()).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		// Act
		order, err := repo.CheckoutCart(ctx, 7)

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)
		assert.Contains(t, err.Error(), "failed to insert order line")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepositoryGetOrderByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrderRepo(db, testLockTimeout)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectQuery(`SELECT user_id, status, total_price`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "status", "total_price", "created_at", "updated_at"}).
				AddRow(7, "pending", "39.48", now, now))
		mock.ExpectQuery(`SELECT op.product_id, p.title, op.quantity, op.price`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "price"}).
				AddRow(3, "Mug", 2, "9.99"))

		// Act
		order, err := repo.GetOrderByID(ctx, 100)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(7), order.UserID)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		require.Len(t, order.Products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`SELECT user_id, status, total_price`).
			WithArgs(int64(999)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "status", "total_price", "created_at", "updated_at"}))

		// Act
		order, err := repo.GetOrderByID(ctx, 999)

		// Assert
		require.ErrorIs(t, err, repository.ErrOrderNotFound)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepositoryUpdateOrderStatus(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrderRepo(db, testLockTimeout)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectExec(`UPDATE orders`).
			WithArgs(models.OrderStatusProcessing, int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT user_id, status, total_price`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "status", "total_price", "created_at", "updated_at"}).
				AddRow(7, "processing", "39.48", now, now))
		mock.ExpectQuery(`SELECT op.product_id, p.title, op.quantity, op.price`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "price"}))

		// Act
		order, err := repo.UpdateOrderStatus(ctx, 100, models.OrderStatusProcessing)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusProcessing, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`UPDATE orders`).
			WithArgs(models.OrderStatusProcessing, int64(999)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		order, err := repo.UpdateOrderStatus(ctx, 999, models.OrderStatusProcessing)

		// Assert
		require.ErrorIs(t, err, repository.ErrOrderNotFound)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
