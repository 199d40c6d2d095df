package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/models"
)

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockCartRepository) AddProduct(ctx context.Context, userID, productID int64, quantity int) error {
	return m.Called(ctx, userID, productID, quantity).Error(0)
}

func (m *mockCartRepository) RemoveProduct(ctx context.Context, userID, productID int64) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *mockCartRepository) ClearCart(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) CheckoutCart(ctx context.Context, userID int64) (*models.Order, error) {
	args := m.Called(ctx, userID)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockOrderRepository) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockOrderRepository) ListOrdersByUser(ctx context.Context, userID int64, filters models.OrderFilters, sort models.SortParams, page, size int) ([]models.Order, int, error) {
	args := m.Called(ctx, userID, filters, sort, page, size)
	if orders, ok := args.Get(0).([]models.Order); ok {
		return orders, args.Int(1), args.Error(2)
	}

	return nil, args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, orderID, status)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) GetProductByID(ctx context.Context, productID int64) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockProductRepository) ListProducts(ctx context.Context, filters models.ProductFilters, sort models.SortParams, page, size int) ([]models.Product, int, error) {
	args := m.Called(ctx, filters, sort, page, size)
	if products, ok := args.Get(0).([]models.Product); ok {
		return products, args.Int(1), args.Error(2)
	}

	return nil, args.Int(1), args.Error(2)
}

func (m *mockProductRepository) UpdateProduct(ctx context.Context, productID int64, req *models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, productID, req)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockProductRepository) UpsertByExternalID(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if categories, ok := args.Get(0).([]models.Category); ok {
		return categories, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockCategoryRepository) FirstOrCreate(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if category, ok := args.Get(0).(*models.Category); ok {
		return category, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockRateLimitRepository struct {
	mock.Mock
}

func (m *mockRateLimitRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {
	args := m.Called(ctx, email)

	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

type mockTokenDenylistRepository struct {
	mock.Mock
}

func (m *mockTokenDenylistRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)

	return args.Error(0)
}

func (m *mockTokenDenylistRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)

	return args.Bool(0), args.Error(1)
}

func newTestCaches() (*cache.CartCache, *cache.OrderCache, *cache.ProductCache) {
	backend := cache.NewMemoryCache(time.Minute)

	return cache.NewCartCache(backend, time.Minute),
		cache.NewOrderCache(backend, time.Minute),
		cache.NewProductCache(backend, time.Minute)
}
