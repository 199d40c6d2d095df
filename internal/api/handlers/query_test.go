package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
)

func TestParseProductFilters(t *testing.T) {
	t.Run("KnownKeys", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products?search=mug&categories=1,2&min_price=5&max_price=50&min_rating=4", nil)

		filters, err := parseProductFilters(r)

		require.NoError(t, err)
		assert.Equal(t, "mug", filters.Search)
		assert.Equal(t, []int64{1, 2}, filters.Categories)
		require.NotNil(t, filters.MinPrice)
		assert.Equal(t, "5", filters.MinPrice.String())
		require.NotNil(t, filters.MinRating)
		assert.Equal(t, 4.0, *filters.MinRating)
	})

	t.Run("ReservedKeysIgnored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products?page=2&size=20&sort=price&direction=asc", nil)

		filters, err := parseProductFilters(r)

		require.NoError(t, err)
		assert.Empty(t, filters.Search)
	})

	t.Run("UnknownKeyRejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products?catgories=1", nil)

		_, err := parseProductFilters(r)

		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
		assert.Contains(t, appErr.Message, "catgories")
	})

	t.Run("MalformedValueRejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products?min_price=abc", nil)

		_, err := parseProductFilters(r)

		require.Error(t, err)
	})
}

func TestParseOrderFilters(t *testing.T) {
	t.Run("StatusFilter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/orders?status=completed", nil)

		filters, err := parseOrderFilters(r)

		require.NoError(t, err)
		require.NotNil(t, filters.Status)
		assert.Equal(t, models.OrderStatusCompleted, *filters.Status)
	})

	t.Run("InvalidStatusRejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/orders?status=shipped", nil)

		_, err := parseOrderFilters(r)

		require.Error(t, err)
	})

	t.Run("DateRange", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/orders?date_from=2026-01-01T00:00:00Z&date_to=2026-02-01T00:00:00Z", nil)

		filters, err := parseOrderFilters(r)

		require.NoError(t, err)
		require.NotNil(t, filters.DateFrom)
		require.NotNil(t, filters.DateTo)
		assert.True(t, filters.DateFrom.Before(*filters.DateTo))
	})

	t.Run("UnknownKeyRejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/orders?user_id=2", nil)

		_, err := parseOrderFilters(r)

		require.Error(t, err)
	})
}

func TestParsePagination(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products", nil)

		page, size := parsePagination(r)

		assert.Equal(t, 1, page)
		assert.Equal(t, 10, size)
	})

	t.Run("OutOfRangeFallsBack", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products?page=-1&size=5000", nil)

		page, size := parsePagination(r)

		assert.Equal(t, 1, page)
		assert.Equal(t, 10, size)
	})

	t.Run("Explicit", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products?page=3&size=25", nil)

		page, size := parsePagination(r)

		assert.Equal(t, 3, page)
		assert.Equal(t, 25, size)
	})
}

func TestParseSort(t *testing.T) {
	t.Run("DirectionDefaultsToDesc", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/products?sort=price&direction=sideways", nil)

		sort := parseSort(r)

		assert.Equal(t, "price", sort.Field)
		assert.Equal(t, "desc", sort.Direction)
	})
}
