package service

import (
	"context"
	stderrors "errors"

	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
	repository "github.com/vandonov/storefront/internal/repositories"
)

type ProductService struct {
	products     repository.ProductRepository
	categories   repository.CategoryRepository
	productCache *cache.ProductCache
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, productCache *cache.ProductCache) *ProductService {
	return &ProductService{products: products, categories: categories, productCache: productCache}
}

func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {

	if product, hit := s.productCache.GetProduct(ctx, productID); hit {
		return product, nil
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {

		if stderrors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve product").WithError(err)
	}

	s.productCache.SetProduct(ctx, product)

	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, filters models.ProductFilters, sort models.SortParams, page, size int) (*models.PaginatedResponse, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 10
	}

	contextHash := cache.HashKey(filters, sort, page, size)

	if list, hit := s.productCache.GetList(ctx, contextHash); hit {
		return list, nil
	}

	products, total, err := s.products.ListProducts(ctx, filters, sort, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	list := &models.PaginatedResponse{
		Data:     products,
		Total:    total,
		Page:     page,
		PageSize: size,
	}

	s.productCache.SetList(ctx, contextHash, list)

	return list, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, productID int64, req *models.UpdateProductRequest) (*models.Product, error) {

	if req.Price != nil && !req.Price.IsPositive() {
		return nil, errors.BadRequestError("Price must be greater than zero")
	}

	product, err := s.products.UpdateProduct(ctx, productID, req)
	if err != nil {

		if stderrors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	s.productCache.InvalidateProduct(ctx, productID)
	s.productCache.InvalidateLists(ctx)

	return product, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {

	if categories, hit := s.productCache.GetCategories(ctx); hit {
		return categories, nil
	}

	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch categories").WithError(err)
	}

	s.productCache.SetCategories(ctx, categories)

	return categories, nil
}
