package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/vandonov/storefront/internal/models"
)

// ProductCache scopes the "single product" entries, the global
// "products list" tag and the categories listing.
type ProductCache struct {
	cache Cache
	ttl   time.Duration
}

func NewProductCache(cache Cache, ttl time.Duration) *ProductCache {
	return &ProductCache{cache: cache, ttl: ttl}
}

func (c *ProductCache) productKey(productID int64) string {
	return Key(productSingle, strconv.FormatInt(productID, 10))
}

func (c *ProductCache) listKey(contextHash string) string {
	return Key(productListPrefix, contextHash)
}

func (c *ProductCache) GetProduct(ctx context.Context, productID int64) (*models.Product, bool) {

	var product models.Product

	hit, err := c.cache.Get(ctx, c.productKey(productID), &product)
	if err != nil {
		slog.Warn("Product cache read failed", slog.Int64("productId", productID), slog.String("error", err.Error()))
		return nil, false
	}

	if !hit {
		return nil, false
	}

	return &product, true
}

func (c *ProductCache) SetProduct(ctx context.Context, product *models.Product) {

	if err := c.cache.Set(ctx, c.productKey(product.ID), product, c.ttl); err != nil {
		slog.Warn("Product cache write failed", slog.Int64("productId", product.ID), slog.String("error", err.Error()))
	}
}

func (c *ProductCache) GetList(ctx context.Context, contextHash string) (*models.PaginatedResponse, bool) {

	var list models.PaginatedResponse

	hit, err := c.cache.Get(ctx, c.listKey(contextHash), &list)
	if err != nil {
		slog.Warn("Products list cache read failed", slog.String("error", err.Error()))
		return nil, false
	}

	if !hit {
		return nil, false
	}

	return &list, true
}

func (c *ProductCache) SetList(ctx context.Context, contextHash string, list *models.PaginatedResponse) {

	if err := c.cache.Set(ctx, c.listKey(contextHash), list, c.ttl, productListPrefix); err != nil {
		slog.Warn("Products list cache write failed", slog.String("error", err.Error()))
	}
}

func (c *ProductCache) GetCategories(ctx context.Context) ([]models.Category, bool) {

	var categories []models.Category

	hit, err := c.cache.Get(ctx, categoryListKey, &categories)
	if err != nil {
		slog.Warn("Categories cache read failed", slog.String("error", err.Error()))
		return nil, false
	}

	if !hit {
		return nil, false
	}

	return categories, true
}

func (c *ProductCache) SetCategories(ctx context.Context, categories []models.Category) {

	if err := c.cache.Set(ctx, categoryListKey, categories, c.ttl); err != nil {
		slog.Warn("Categories cache write failed", slog.String("error", err.Error()))
	}
}

func (c *ProductCache) InvalidateProduct(ctx context.Context, productID int64) {

	if err := c.cache.Delete(ctx, c.productKey(productID)); err != nil {
		slog.Warn("Product cache invalidation failed", slog.Int64("productId", productID), slog.String("error", err.Error()))
	}
}

func (c *ProductCache) InvalidateLists(ctx context.Context) {

	if err := c.cache.FlushTag(ctx, productListPrefix); err != nil {
		slog.Warn("Products list cache invalidation failed", slog.String("error", err.Error()))
	}

	if err := c.cache.Delete(ctx, categoryListKey); err != nil {
		slog.Warn("Categories cache invalidation failed", slog.String("error", err.Error()))
	}
}
