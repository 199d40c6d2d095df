package service

import (
	"context"

	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/metrics"
	"github.com/vandonov/storefront/internal/models"
	repository "github.com/vandonov/storefront/internal/repositories"
)

// CartService owns cart mutations. Each repository call runs in its own
// transaction under the cart row lock; on success the service explicitly
// invalidates the cached cart view for the user. Invalidation is a direct
// post-commit call, not a model-event hook.
type CartService struct {
	repo      repository.CartRepository
	cartCache *cache.CartCache
}

func NewCartService(repo repository.CartRepository, cartCache *cache.CartCache) *CartService {
	return &CartService{repo: repo, cartCache: cartCache}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {

	if cart, hit := s.cartCache.GetCart(ctx, userID); hit {
		return cart, nil
	}

	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to retrieve cart").WithError(err)
	}

	s.cartCache.SetCart(ctx, cart)

	return cart, nil
}

// AddProduct upserts the (cart, product) line with the supplied quantity.
// An existing line's quantity is replaced, not incremented.
func (s *CartService) AddProduct(ctx context.Context, userID, productID int64, quantity int) error {

	if err := s.repo.AddProduct(ctx, userID, productID, quantity); err != nil {
		metrics.ObserveCartOperation("add", "failure")
		return errors.CartOperationFailedError(err)
	}

	metrics.ObserveCartOperation("add", "success")
	s.cartCache.InvalidateCart(ctx, userID)

	return nil
}

// RemoveProduct deletes the line if present; removing an absent product is a
// successful no-op.
func (s *CartService) RemoveProduct(ctx context.Context, userID, productID int64) error {

	if err := s.repo.RemoveProduct(ctx, userID, productID); err != nil {
		metrics.ObserveCartOperation("remove", "failure")
		return errors.CartOperationFailedError(err)
	}

	metrics.ObserveCartOperation("remove", "success")
	s.cartCache.InvalidateCart(ctx, userID)

	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID int64) error {

	if err := s.repo.ClearCart(ctx, userID); err != nil {
		metrics.ObserveCartOperation("clear", "failure")
		return errors.CartOperationFailedError(err)
	}

	metrics.ObserveCartOperation("clear", "success")
	s.cartCache.InvalidateCart(ctx, userID)

	return nil
}
