package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vandonov/storefront/internal/config"
	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
	repository "github.com/vandonov/storefront/internal/repositories"
)

type UserService struct {
	repo      repository.UserRepository
	rateLimit repository.RateLimitRepository
	denylist  repository.TokenDenylistRepository
	security  *config.Security
}

func NewUserService(repo repository.UserRepository, rateLimit repository.RateLimitRepository, denylist repository.TokenDenylistRepository, security *config.Security) *UserService {
	return &UserService{repo: repo, rateLimit: rateLimit, denylist: denylist, security: security}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	_, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, errors.DuplicateEntryError("A user with this email already exists")
	}

	if !stderrors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.DatabaseError("Failed to check existing user").WithError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("Failed to hash password").WithError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, errors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateLimit.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, errors.InternalError("Failed to check rate limit").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			RetryAfter: retryAfter,
			Message:    fmt.Sprintf("Too many login attempts. Try again in %d seconds", retryAfter),
		}, errors.TooManyRequestsError("Too many login attempts")
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {

		if stderrors.Is(err, repository.ErrUserNotFound) {
			return &models.LoginResponse{
				Success:        false,
				RemainingTries: remaining,
				Message:        "Invalid email or password",
			}, errors.UnauthorizedError("Invalid email or password")
		}

		return nil, errors.DatabaseError("Failed to retrieve user").WithError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return &models.LoginResponse{
			Success:        false,
			RemainingTries: remaining,
			Message:        "Invalid email or password",
		}, errors.UnauthorizedError("Invalid email or password")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, errors.InternalError("Failed to generate token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int(s.security.TokenTTL.Seconds()),
	}, nil
}

// Logout revokes the presented token by placing its id on the denylist until
// the token would have expired anyway. Tokens without an id or already past
// expiry are treated as logged out.
func (s *UserService) Logout(ctx context.Context, claims *models.Claims) error {

	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)

	if err := s.denylist.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return errors.InternalError("Failed to revoke token").WithError(err)
	}

	return nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {

		if stderrors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.NotFoundError("User not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve user").WithError(err)
	}

	return user, nil
}

func (s *UserService) generateToken(user *models.User) (string, error) {

	now := time.Now()

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.security.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.security.JWTKey))
}
