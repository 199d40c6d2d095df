package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/vandonov/storefront/internal/utils/response"
)

func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		slog.Warn("Invalid request", slog.String("error", err.Error()))
		response.Error(w, err)

		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		slog.Warn("Validation failed", slog.String("error", err.Error()))
		response.Error(w, err)

		return false
	}

	return true
}
