package repository

import (
	"fmt"
	"strings"

	"github.com/vandonov/storefront/internal/models"
)

// whereBuilder accumulates SQL predicates with positional arguments. Filter
// keys are mapped to builders explicitly at the HTTP boundary; by the time a
// filters struct reaches a repository every field is already validated.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) add(condition string, args ...any) {

	placeholders := make([]any, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", len(b.args)+i+1)
	}

	b.clauses = append(b.clauses, fmt.Sprintf(condition, placeholders...))
	b.args = append(b.args, args...)
}

func (b *whereBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(b.clauses, " AND ")
}

func (b *whereBuilder) next() int {
	return len(b.args) + 1
}

func buildProductWhere(f models.ProductFilters) *whereBuilder {

	b := &whereBuilder{}

	if f.Search != "" {
		b.add("(p.title ILIKE %s OR p.description ILIKE %s)", "%"+f.Search+"%", "%"+f.Search+"%")
	}

	if len(f.Categories) > 0 {

		placeholders := make([]string, len(f.Categories))
		for i, id := range f.Categories {
			placeholders[i] = fmt.Sprintf("$%d", len(b.args)+i+1)
			b.args = append(b.args, id)
		}

		b.clauses = append(b.clauses, fmt.Sprintf("p.category_id IN (%s)", strings.Join(placeholders, ", ")))
	}

	if f.MinPrice != nil {
		b.add("p.price >= %s", *f.MinPrice)
	}

	if f.MaxPrice != nil {
		b.add("p.price <= %s", *f.MaxPrice)
	}

	if f.MinRating != nil {
		b.add("p.rating >= %s", *f.MinRating)
	}

	return b
}

func buildOrderWhere(userID int64, f models.OrderFilters) *whereBuilder {

	b := &whereBuilder{}
	b.add("o.user_id = %s", userID)

	if f.Status != nil {
		b.add("o.status = %s", string(*f.Status))
	}

	if f.MinPrice != nil {
		b.add("o.total_price >= %s", *f.MinPrice)
	}

	if f.MaxPrice != nil {
		b.add("o.total_price <= %s", *f.MaxPrice)
	}

	if f.DateFrom != nil {
		b.add("o.created_at >= %s", *f.DateFrom)
	}

	if f.DateTo != nil {
		b.add("o.created_at <= %s", *f.DateTo)
	}

	return b
}

// orderBy validates the sort field against the per-entity whitelist and
// falls back to the default ordering rather than interpolating caller input.
func orderBy(sort models.SortParams, allowed map[string]string, defaultField string) string {

	column, ok := allowed[sort.Field]
	if !ok {
		column = allowed[defaultField]
	}

	direction := "ASC"
	if strings.EqualFold(sort.Direction, "desc") {
		direction = "DESC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

var productSortFields = map[string]string{
	"id":            "p.id",
	"price":         "p.price",
	"rating":        "p.rating",
	"reviews_count": "p.reviews_count",
	"created_at":    "p.created_at",
}

var orderSortFields = map[string]string{
	"id":          "o.id",
	"status":      "o.status",
	"total_price": "o.total_price",
	"created_at":  "o.created_at",
}
