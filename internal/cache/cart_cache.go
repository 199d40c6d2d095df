package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/vandonov/storefront/internal/models"
)

// CartCache scopes the "single cart" cache region. Cache failures are logged
// and degrade to a miss or a skipped write; they never fail the request.
type CartCache struct {
	cache Cache
	ttl   time.Duration
}

func NewCartCache(cache Cache, ttl time.Duration) *CartCache {
	return &CartCache{cache: cache, ttl: ttl}
}

func (c *CartCache) cartKey(userID int64) string {
	return Key(cartSinglePrefix, strconv.FormatInt(userID, 10))
}

func (c *CartCache) GetCart(ctx context.Context, userID int64) (*models.Cart, bool) {

	var cart models.Cart

	hit, err := c.cache.Get(ctx, c.cartKey(userID), &cart)
	if err != nil {
		slog.Warn("Cart cache read failed", slog.Int64("userId", userID), slog.String("error", err.Error()))
		return nil, false
	}

	if !hit {
		return nil, false
	}

	return &cart, true
}

func (c *CartCache) SetCart(ctx context.Context, cart *models.Cart) {

	if err := c.cache.Set(ctx, c.cartKey(cart.UserID), cart, c.ttl); err != nil {
		slog.Warn("Cart cache write failed", slog.Int64("userId", cart.UserID), slog.String("error", err.Error()))
	}
}

// InvalidateCart drops the single-cart entry for a user. Called after every
// committed cart mutation and after checkout.
func (c *CartCache) InvalidateCart(ctx context.Context, userID int64) {

	if err := c.cache.Delete(ctx, c.cartKey(userID)); err != nil {
		slog.Warn("Cart cache invalidation failed", slog.Int64("userId", userID), slog.String("error", err.Error()))
	}
}
