package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vandonov/storefront/internal/models"
	"github.com/vandonov/storefront/internal/utils"
)

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	// FirstOrCreate resolves a category by name, creating it on first
	// sight. Used by the catalog sync job.
	FirstOrCreate(ctx context.Context, name string) (*models.Category, error)
}

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT c.id, c.name, COUNT(p.id), c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	defer rows.Close()

	var categories []models.Category

	for rows.Next() {

		var category models.Category

		if err := rows.Scan(&category.ID, &category.Name, &category.ProductsCount, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) FirstOrCreate(ctx context.Context, name string) (*models.Category, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// The upsert keeps the sync job race-free when two runs see the same
	// new category. DO UPDATE makes RETURNING yield the row either way.
	query := `
		INSERT INTO categories (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET updated_at = categories.updated_at
		RETURNING id, name, created_at, updated_at
	`

	category := &models.Category{}

	err := r.DB.QueryRowContext(dbCtx, query, name).
		Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}

	return category, nil
}
