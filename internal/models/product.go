package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ProductsCount int       `json:"products_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Product struct {
	ID           int64           `json:"id"`
	ExternalID   *int64          `json:"external_id,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price"`
	Rating       float64         `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
	CategoryID   int64           `json:"category_id"`
	Category     *Category       `json:"category,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type UpdateProductRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty"`
	// Price is decimal like every other money value; positivity is checked
	// in the service since validator tags cannot inspect decimal values.
	Price      *decimal.Decimal `json:"price,omitempty"`
	Image      *string          `json:"image,omitempty" validate:"omitempty,url"`
	CategoryID *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

// ProductFilters carries the supported catalog filters. Unknown filter keys
// are rejected at the query-parsing boundary, not silently ignored.
type ProductFilters struct {
	Search     string
	Categories []int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  *float64
}
