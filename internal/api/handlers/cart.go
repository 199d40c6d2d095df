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

type CartHandler struct {
	cartService *service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to get cart", "error", err)
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product ID"))
			return
		}

		var req models.AddCartProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.cartService.AddProduct(r.Context(), claims.UserID, productID, req.Quantity); err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to add product to cart", "error", err)
			response.Error(w, err)

			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) RemoveProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product ID"))
			return
		}

		if err := h.cartService.RemoveProduct(r.Context(), claims.UserID, productID); err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to remove product from cart", "error", err)
			response.Error(w, err)

			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		if err := h.cartService.ClearCart(r.Context(), claims.UserID); err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to clear cart", "error", err)
			response.Error(w, err)

			return
		}

		response.NoContent(w)
	}
}
