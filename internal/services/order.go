package service

import (
	"context"
	stderrors "errors"

	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
	repository "github.com/vandonov/storefront/internal/repositories"
)

type OrderService struct {
	repo       repository.OrderRepository
	orderCache *cache.OrderCache
}

func NewOrderService(repo repository.OrderRepository, orderCache *cache.OrderCache) *OrderService {
	return &OrderService{repo: repo, orderCache: orderCache}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {

	if order, hit := s.orderCache.GetOrder(ctx, orderID); hit {
		return order, nil
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {

		if stderrors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve order").WithError(err)
	}

	s.orderCache.SetOrder(ctx, order)

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64, filters models.OrderFilters, sort models.SortParams, page, size int) (*models.PaginatedResponse, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 10
	}

	contextHash := cache.HashKey(filters, sort, page, size)

	if list, hit := s.orderCache.GetList(ctx, userID, contextHash); hit {
		return list, nil
	}

	orders, total, err := s.repo.ListOrdersByUser(ctx, userID, filters, sort, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	list := &models.PaginatedResponse{
		Data:     orders,
		Total:    total,
		Page:     page,
		PageSize: size,
	}

	s.orderCache.SetList(ctx, userID, contextHash, list)

	return list, nil
}

// UpdateOrderStatus validates the requested transition against the status
// machine before any write. The rejected target is named in the error.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, target models.OrderStatus) (*models.Order, error) {

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {

		if stderrors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve order").WithError(err)
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, errors.InvalidStatusTransitionError(string(target))
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, orderID, target)
	if err != nil {
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	// Post-commit invalidation for the single order entry and the owning
	// user's list tag.
	s.orderCache.InvalidateOrder(ctx, orderID)
	s.orderCache.InvalidateUserLists(ctx, updated.UserID)

	return updated, nil
}
