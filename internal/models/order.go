package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the historical record of a checkout. Everything except Status is
// immutable after creation; TotalPrice is computed once, at checkout, and is
// never recomputed from the lines.
type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Products   []OrderLine     `json:"products"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderLine snapshots one product's quantity and price at the moment of
// checkout. Price here is deliberately decoupled from the live product price.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type UpdateOrderRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

// OrderFilters carries the supported order-list filters. Unknown filter keys
// are rejected at the query-parsing boundary.
type OrderFilters struct {
	Status   *OrderStatus
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	DateFrom *time.Time
	DateTo   *time.Time
}
