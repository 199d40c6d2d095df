package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vandonov/storefront/internal/api/middleware"
	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
	service "github.com/vandonov/storefront/internal/services"
	"github.com/vandonov/storefront/internal/utils"
	"github.com/vandonov/storefront/internal/utils/response"
)

type ProductHandler struct {
	productService *service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filters, err := parseProductFilters(r)
		if err != nil {
			response.Error(w, err)
			return
		}

		page, size := parsePagination(r)

		list, err := h.productService.ListProducts(r.Context(), filters, parseSort(r), page, size)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list products", "error", err)
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, list)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product ID"))
			return
		}

		product, err := h.productService.GetProduct(r.Context(), productID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product ID"))
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), productID, &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to update product", "error", err)
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categories, err := h.productService.ListCategories(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list categories", "error", err)
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, categories)
	}
}
