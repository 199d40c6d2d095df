package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vandonov/storefront/internal/models"
	"github.com/vandonov/storefront/internal/utils"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	GetProductByID(ctx context.Context, productID int64) (*models.Product, error)
	ListProducts(ctx context.Context, filters models.ProductFilters, sort models.SortParams, page, size int) ([]models.Product, int, error)
	UpdateProduct(ctx context.Context, productID int64, req *models.UpdateProductRequest) (*models.Product, error)
	// UpsertByExternalID inserts or updates a product keyed by its external
	// source id, so repeated catalog syncs stay idempotent.
	UpsertByExternalID(ctx context.Context, product *models.Product) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `
	p.id, p.external_id, p.title, p.description, p.image, p.price,
	p.rating, p.reviews_count, p.category_id, p.created_at, p.updated_at,
	c.id, c.name
`

func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {

	product := &models.Product{}
	category := &models.Category{}

	err := scanner.Scan(
		&product.ID, &product.ExternalID, &product.Title, &product.Description,
		&product.Image, &product.Price, &product.Rating, &product.ReviewsCount,
		&product.CategoryID, &product.CreatedAt, &product.UpdatedAt,
		&category.ID, &category.Name,
	)
	if err != nil {
		return nil, err
	}

	product.Category = category

	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, productID int64) (*models.Product, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

func (r *productRepository) ListProducts(ctx context.Context, filters models.ProductFilters, sort models.SortParams, page, size int) ([]models.Product, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	b := buildProductWhere(filters)

	var total int

	countQuery := `SELECT COUNT(*) FROM products p` + b.where()

	if err := r.DB.QueryRowContext(dbCtx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * size

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id%s%s
		LIMIT $%d OFFSET $%d
	`, productColumns, b.where(), orderBy(sort, productSortFields, "id"), b.next(), b.next()+1)

	args := append(b.args, size, offset)

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	var products []models.Product

	for rows.Next() {

		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, productID int64, req *models.UpdateProductRequest) (*models.Product, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    price = COALESCE($3, price),
		    image = COALESCE($4, image),
		    category_id = COALESCE($5, category_id),
		    updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.DB.ExecContext(dbCtx, query, req.Title, req.Description, req.Price, req.Image, req.CategoryID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return nil, ErrProductNotFound
	}

	return r.GetProductByID(ctx, productID)
}

func (r *productRepository) UpsertByExternalID(ctx context.Context, product *models.Product) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (external_id, title, description, image, price, rating, reviews_count, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (external_id)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			image = EXCLUDED.image,
			price = EXCLUDED.price,
			rating = EXCLUDED.rating,
			reviews_count = EXCLUDED.reviews_count,
			category_id = EXCLUDED.category_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query,
		product.ExternalID, product.Title, product.Description, product.Image,
		product.Price, product.Rating, product.ReviewsCount, product.CategoryID).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}
