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

type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Registration failed", "error", err)
			response.Error(w, err)

			return
		}

		middleware.LoggerFromContext(r.Context()).Info("User registered", "user_id", user.ID)

		response.Success(w, http.StatusCreated, user)
	}
}

func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.userService.Login(r.Context(), &req)
		if err != nil {

			// Rate-limited and failed attempts still carry a structured
			// body so clients can show the remaining tries.
			if appErr, ok := errors.IsAppError(err); ok && result != nil {
				response.WriteJson(w, appErr.StatusCode, result)
				return
			}

			middleware.LoggerFromContext(r.Context()).Error("Login failed", "error", err)
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *UserHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		if err := h.userService.Logout(r.Context(), claims); err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Logout failed", "error", err)
			response.Error(w, err)

			return
		}

		response.NoContent(w)
	}
}

func (h *UserHandler) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		user, err := h.userService.GetUser(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}
