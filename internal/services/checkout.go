package service

import (
	"context"
	"log/slog"
	"sync"

	stderrors "errors"

	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/config"
	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/metrics"
	"github.com/vandonov/storefront/internal/models"
	repository "github.com/vandonov/storefront/internal/repositories"
)

// CheckoutService converts carts into orders. The whole conversion is one
// database transaction owned by the repository; this layer maps the outcome
// to the error taxonomy, fires post-commit cache invalidation, and runs the
// background worker pool for deferred checkouts.
//
// There is no application-level idempotency key: a client retry after a
// committed but unacknowledged checkout would submit again and fail with
// CartEmpty on the now-empty cart.
type CheckoutService struct {
	orders     repository.OrderRepository
	cartCache  *cache.CartCache
	orderCache *cache.OrderCache
	cfg        *config.Checkout

	jobs chan int64
	wg   sync.WaitGroup
	once sync.Once
}

func NewCheckoutService(orders repository.OrderRepository, cartCache *cache.CartCache, orderCache *cache.OrderCache, cfg *config.Checkout) *CheckoutService {
	return &CheckoutService{
		orders:     orders,
		cartCache:  cartCache,
		orderCache: orderCache,
		cfg:        cfg,
		jobs:       make(chan int64, cfg.QueueSize),
	}
}

// Checkout runs the conversion synchronously. Safe to retry: a failed
// attempt leaves the cart untouched, and a second attempt on an already
// checked-out cart fails with CartEmpty.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64) (*models.Order, error) {

	order, err := s.orders.CheckoutCart(ctx, userID)
	if err != nil {

		if stderrors.Is(err, repository.ErrCartEmpty) {
			metrics.ObserveCheckout("empty_cart")
			return nil, errors.CartEmptyError()
		}

		metrics.ObserveCheckout("failure")

		return nil, errors.CheckoutFailedError(err)
	}

	metrics.ObserveCheckout("success")

	// Post-commit invalidation: the user's order listings changed and the
	// cart view is now empty.
	s.orderCache.InvalidateUserLists(ctx, userID)
	s.cartCache.InvalidateCart(ctx, userID)

	return order, nil
}

// Enqueue defers the checkout to the worker pool. It fails fast when the
// queue is full instead of blocking the request.
func (s *CheckoutService) Enqueue(userID int64) error {

	select {
	case s.jobs <- userID:
		metrics.SetCheckoutQueueDepth(len(s.jobs))
		return nil
	default:
		return errors.TooManyRequestsError("Checkout queue is full, try again shortly")
	}
}

// Start launches the checkout workers. They drain remaining jobs after the
// queue closes, so a graceful shutdown finishes accepted checkouts.
func (s *CheckoutService) Start() {

	for i := 0; i < s.cfg.Workers; i++ {

		s.wg.Add(1)

		go func() {
			defer s.wg.Done()

			for userID := range s.jobs {
				s.process(userID)
			}
		}()
	}
}

func (s *CheckoutService) process(userID int64) {

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTTL)
	defer cancel()

	metrics.SetCheckoutQueueDepth(len(s.jobs))

	order, err := s.Checkout(ctx, userID)
	if err != nil {
		slog.Error("Background checkout failed",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()))

		return
	}

	slog.Info("Background checkout completed",
		slog.Int64("userId", userID),
		slog.Int64("orderId", order.ID),
		slog.String("total", order.TotalPrice.String()))
}

// Stop closes the queue and waits for the workers to drain it.
func (s *CheckoutService) Stop() {

	s.once.Do(func() {
		close(s.jobs)
	})

	s.wg.Wait()
}
