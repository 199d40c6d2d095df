package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// reservedParams are the non-filter query keys every list endpoint accepts.
var reservedParams = map[string]bool{
	"page":      true,
	"size":      true,
	"sort":      true,
	"direction": true,
}

func parsePagination(r *http.Request) (page, size int) {

	page = defaultPage
	size = defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageSize {
			size = n
		}
	}

	return page, size
}

func parseSort(r *http.Request) models.SortParams {

	sort := models.SortParams{
		Field:     r.URL.Query().Get("sort"),
		Direction: strings.ToLower(r.URL.Query().Get("direction")),
	}

	if sort.Direction != "asc" && sort.Direction != "desc" {
		sort.Direction = "desc"
	}

	return sort
}

// parseProductFilters maps each known filter key to its predicate. Unknown
// keys are an error, not a silent no-op, so a typo like "catgories" cannot
// return an unfiltered result set.
func parseProductFilters(r *http.Request) (models.ProductFilters, error) {

	var filters models.ProductFilters

	for key, values := range r.URL.Query() {

		if reservedParams[key] {
			continue
		}

		value := values[0]

		switch key {
		case "search":
			filters.Search = value
		case "categories":
			for _, part := range strings.Split(value, ",") {
				id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					return filters, errors.BadRequestError(fmt.Sprintf("Invalid category id: %q", part))
				}
				filters.Categories = append(filters.Categories, id)
			}
		case "min_price":
			price, err := decimal.NewFromString(value)
			if err != nil {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid min_price: %q", value))
			}
			filters.MinPrice = &price
		case "max_price":
			price, err := decimal.NewFromString(value)
			if err != nil {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid max_price: %q", value))
			}
			filters.MaxPrice = &price
		case "min_rating":
			rating, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid min_rating: %q", value))
			}
			filters.MinRating = &rating
		default:
			return filters, errors.BadRequestError(fmt.Sprintf("Unknown filter: %q", key))
		}
	}

	return filters, nil
}

func parseOrderFilters(r *http.Request) (models.OrderFilters, error) {

	var filters models.OrderFilters

	for key, values := range r.URL.Query() {

		if reservedParams[key] {
			continue
		}

		value := values[0]

		switch key {
		case "status":
			status := models.OrderStatus(value)
			if !status.Valid() {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid status: %q", value))
			}
			filters.Status = &status
		case "min_price":
			price, err := decimal.NewFromString(value)
			if err != nil {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid min_price: %q", value))
			}
			filters.MinPrice = &price
		case "max_price":
			price, err := decimal.NewFromString(value)
			if err != nil {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid max_price: %q", value))
			}
			filters.MaxPrice = &price
		case "date_from":
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid date_from: %q", value))
			}
			filters.DateFrom = &ts
		case "date_to":
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return filters, errors.BadRequestError(fmt.Sprintf("Invalid date_to: %q", value))
			}
			filters.DateTo = &ts
		default:
			return filters, errors.BadRequestError(fmt.Sprintf("Unknown filter: %q", key))
		}
	}

	return filters, nil
}
