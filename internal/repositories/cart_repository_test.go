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

	repository "github.com/vandonov/storefront/internal/repositories"
)

const testLockTimeout = 3 * time.Second

func expectLockedCart(mock sqlmock.Sqlmock, userID, cartID int64) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '3000ms'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO carts`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM carts WHERE user_id = $1 FOR UPDATE")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID))
}

func TestCartRepositoryAddProduct(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCartRepo(db, testLockTimeout)
	ctx := context.Background()

	t.Run("Success_ReplacesQuantity", func(t *testing.T) {
		// Arrange
		expectLockedCart(mock, 7, 42)
		// The upsert replaces the stored quantity with the supplied one.
		mock.ExpectExec(regexp.QuoteMeta("DO UPDATE SET quantity = EXCLUDED.quantity")).
			WithArgs(int64(42), int64(3), 5).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		// Act
		err := repo.AddProduct(ctx, 7, 3, 5)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_UpsertFails_RollsBack", func(t *testing.T) {
		// Arrange
		expectLockedCart(mock, 7, 42)
		mock.ExpectExec(regexp.QuoteMeta("DO UPDATE SET quantity = EXCLUDED.quantity")).
			WithArgs(int64(42), int64(3), 5).
			WillReturnError(errors.New("insert failed"))
		mock.ExpectRollback()

		// Act
		err := repo.AddProduct(ctx, 7, 3, 5)

		// Assert
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_LockTimeout", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '3000ms'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO carts`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM carts WHERE user_id = $1 FOR UPDATE")).
			WithArgs(int64(7)).
			WillReturnError(errors.New("canceling statement due to lock timeout"))
		mock.ExpectRollback()

		// Act
		err := repo.AddProduct(ctx, 7, 3, 5)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to lock cart row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepositoryRemoveProduct(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCartRepo(db, testLockTimeout)
	ctx := context.Background()

	t.Run("Success_AbsentLineIsNoOp", func(t *testing.T) {
		// Arrange: zero rows affected is still a successful removal.
		expectLockedCart(mock, 7, 42)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_products WHERE cart_id = $1 AND product_id = $2")).
			WithArgs(int64(42), int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		// Act
		err := repo.RemoveProduct(ctx, 7, 99)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepositoryClearCart(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCartRepo(db, testLockTimeout)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		expectLockedCart(mock, 7, 42)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_products WHERE cart_id = $1")).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		// Act
		err := repo.ClearCart(ctx, 7)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepositoryGetCart(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCartRepo(db, testLockTimeout)
	ctx := context.Background()

	t.Run("Success_LivePrices", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectExec(`INSERT INTO carts`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT id, created_at, updated_at`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
		mock.ExpectQuery(`SELECT cp.product_id, p.title, p.image, p.price, cp.quantity`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "image", "price", "quantity"}).
				AddRow(3, "Mug", "mug.png", "9.99", 2).
				AddRow(4, "Shirt", "shirt.png", "19.50", 1))

		// Act
		cart, err := repo.GetCart(ctx, 7)

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Products, 2)
		assert.Equal(t, int64(42), cart.ID)
		assert.True(t, cart.Products[0].Price.Equal(decimal.RequireFromString("9.99")))
		assert.Equal(t, 2, cart.Products[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_EmptyCart", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectExec(`INSERT INTO carts`).
			WithArgs(int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT id, created_at, updated_at`).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(43, now, now))
		mock.ExpectQuery(`SELECT cp.product_id, p.title, p.image, p.price, cp.quantity`).
			WithArgs(int64(43)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "image", "price", "quantity"}))

		// Act
		cart, err := repo.GetCart(ctx, 8)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, cart.Products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
