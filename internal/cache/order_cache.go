package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/vandonov/storefront/internal/models"
)

// OrderCache scopes the "single order" entries and the per-user "orders list"
// tag. List entries are keyed by a hash of their query context and grouped
// under the owning user's tag, so one invalidation clears every cached page
// and filter combination for that user.
type OrderCache struct {
	cache Cache
	ttl   time.Duration
}

func NewOrderCache(cache Cache, ttl time.Duration) *OrderCache {
	return &OrderCache{cache: cache, ttl: ttl}
}

func (c *OrderCache) orderKey(orderID int64) string {
	return Key(orderSinglePrefix, strconv.FormatInt(orderID, 10))
}

func (c *OrderCache) listTag(userID int64) string {
	return Key(orderListPrefix, strconv.FormatInt(userID, 10))
}

func (c *OrderCache) listKey(userID int64, contextHash string) string {
	return Key(orderListPrefix, strconv.FormatInt(userID, 10), contextHash)
}

func (c *OrderCache) GetOrder(ctx context.Context, orderID int64) (*models.Order, bool) {

	var order models.Order

	hit, err := c.cache.Get(ctx, c.orderKey(orderID), &order)
	if err != nil {
		slog.Warn("Order cache read failed", slog.Int64("orderId", orderID), slog.String("error", err.Error()))
		return nil, false
	}

	if !hit {
		return nil, false
	}

	return &order, true
}

func (c *OrderCache) SetOrder(ctx context.Context, order *models.Order) {

	if err := c.cache.Set(ctx, c.orderKey(order.ID), order, c.ttl); err != nil {
		slog.Warn("Order cache write failed", slog.Int64("orderId", order.ID), slog.String("error", err.Error()))
	}
}

func (c *OrderCache) GetList(ctx context.Context, userID int64, contextHash string) (*models.PaginatedResponse, bool) {

	var list models.PaginatedResponse

	hit, err := c.cache.Get(ctx, c.listKey(userID, contextHash), &list)
	if err != nil {
		slog.Warn("Orders list cache read failed", slog.Int64("userId", userID), slog.String("error", err.Error()))
		return nil, false
	}

	if !hit {
		return nil, false
	}

	return &list, true
}

func (c *OrderCache) SetList(ctx context.Context, userID int64, contextHash string, list *models.PaginatedResponse) {

	if err := c.cache.Set(ctx, c.listKey(userID, contextHash), list, c.ttl, c.listTag(userID)); err != nil {
		slog.Warn("Orders list cache write failed", slog.Int64("userId", userID), slog.String("error", err.Error()))
	}
}

func (c *OrderCache) InvalidateOrder(ctx context.Context, orderID int64) {

	if err := c.cache.Delete(ctx, c.orderKey(orderID)); err != nil {
		slog.Warn("Order cache invalidation failed", slog.Int64("orderId", orderID), slog.String("error", err.Error()))
	}
}

func (c *OrderCache) InvalidateUserLists(ctx context.Context, userID int64) {

	if err := c.cache.FlushTag(ctx, c.listTag(userID)); err != nil {
		slog.Warn("Orders list cache invalidation failed", slog.Int64("userId", userID), slog.String("error", err.Error()))
	}
}
