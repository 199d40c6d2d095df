package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
	"github.com/vandonov/storefront/internal/utils/response"
)

type authContextKey string

const UserContextKey = authContextKey("user")

// TokenDenylist reports whether a token id has been revoked by logout.
type TokenDenylist interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtKey   []byte
	denylist TokenDenylist
}

func NewAuthMiddleware(jwtKey []byte, denylist TokenDenylist) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey, denylist: denylist}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		// Token is of format: "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			response.Error(w, errors.UnauthorizedError("Invalid authorization header format"))
			return
		}

		claims := &models.Claims{}

		token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, stderrors.New("unexpected signing method")
			}

			return m.jwtKey, nil
		})

		if err != nil || !token.Valid {
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		if claims.ID != "" {

			revoked, err := m.denylist.IsTokenRevoked(r.Context(), claims.ID)
			if err != nil {
				response.Error(w, errors.InternalError("Failed to verify token").WithError(err))
				return
			}

			if revoked {
				response.Error(w, errors.UnauthorizedError("Token has been revoked"))
				return
			}
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the authenticated user's claims, or false when
// the request did not pass through Authenticate.
func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)

	return claims, ok
}
