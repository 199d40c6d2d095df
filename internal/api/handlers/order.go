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

type OrderHandler struct {
	orderService    *service.OrderService
	checkoutService *service.CheckoutService
	validator       *validator.Validate
}

func NewOrderHandler(orderService *service.OrderService, checkoutService *service.CheckoutService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		checkoutService: checkoutService,
		validator:       validator.New(),
	}
}

func (h *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		// async=true defers the conversion to the checkout workers; the
		// client polls their order list for the result.
		if r.URL.Query().Get("async") == "true" {

			if err := h.checkoutService.Enqueue(claims.UserID); err != nil {
				response.Error(w, err)
				return
			}

			response.Success(w, http.StatusAccepted, nil)

			return
		}

		order, err := h.checkoutService.Checkout(r.Context(), claims.UserID)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Checkout failed", "error", err)
			response.Error(w, err)

			return
		}

		middleware.LoggerFromContext(r.Context()).Info("Checkout complete",
			"order_id", order.ID,
			"total_price", order.TotalPrice.String(),
		)

		response.Success(w, http.StatusCreated, order)
	}
}

func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		filters, err := parseOrderFilters(r)
		if err != nil {
			response.Error(w, err)
			return
		}

		page, size := parsePagination(r)

		list, err := h.orderService.ListOrders(r.Context(), claims.UserID, filters, parseSort(r), page, size)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list orders", "error", err)
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, list)
	}
}

func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid order ID"))
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		// Orders are private to their owner.
		if order.UserID != claims.UserID {
			response.Error(w, errors.ForbiddenError("You do not have access to this order"))
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) UpdateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid order ID"))
			return
		}

		var req models.UpdateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		if order.UserID != claims.UserID {
			response.Error(w, errors.ForbiddenError("You do not have access to this order"))
			return
		}

		updated, err := h.orderService.UpdateOrderStatus(r.Context(), orderID, req.Status)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to update order status", "error", err)
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, updated)
	}
}
