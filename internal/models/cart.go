package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a user's current, mutable pre-purchase selection. There is at most
// one cart per user; it is created lazily and never deleted, only emptied.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Products  []CartLine `json:"products"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine holds a (product, quantity) pair. No price is stored on the line:
// price is always resolved live from the product, right up to checkout.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type AddCartProductRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}
