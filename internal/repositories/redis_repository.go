package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vandonov/storefront/internal/config"
)

type RateLimitRepository interface {
	// CheckLoginRateLimit reports whether a login attempt for the given
	// email is allowed, plus the attempts remaining and, when denied, the
	// seconds to wait before retrying.
	CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error)
}

type redisRepository struct {
	client *redis.Client
	cfg    *config.RateConfig
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	opt, err := redis.ParseURL(cfg.RedisConnect.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// TokenDenylistRepository tracks revoked JWT ids until their natural expiry,
// so logout invalidates a token that would otherwise stay valid until its
// exp claim.
type TokenDenylistRepository interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

func NewRateLimitRepo(client *redis.Client, cfg *config.RateConfig) RateLimitRepository {
	return &redisRepository{client: client, cfg: cfg}
}

func NewTokenDenylistRepo(client *redis.Client) TokenDenylistRepository {
	return &redisRepository{client: client}
}

func (r *redisRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {

	if ttl <= 0 {
		// Already past its exp claim; nothing to deny.
		return nil
	}

	key := fmt.Sprintf("revoked_tokens:%s", tokenID)

	if err := r.client.Set(ctx, key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (r *redisRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {

	key := fmt.Sprintf("revoked_tokens:%s", tokenID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return exists > 0, nil
}

// Sliding window over a sorted set of attempt timestamps.
func (r *redisRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {

	key := fmt.Sprintf("login_attempts:%s", email)

	now := time.Now().Unix()
	windowStart := now - int64(r.cfg.WindowSize.Seconds())

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, r.cfg.WindowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	remaining := r.cfg.MaxAttempts - attempts

	if attempts >= r.cfg.MaxAttempts {

		scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
			Key: key, Start: 0, Stop: 0,
		}).Result()
		if err != nil || len(scores) == 0 {
			return false, 0, int(r.cfg.WindowSize.Seconds()), fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		oldestTimestamp := int64(scores[0].Score)
		retryAfter := max((oldestTimestamp+int64(r.cfg.WindowSize.Seconds()))-now, 0)

		slog.Warn("Login rate limit exceeded", slog.String("email", email), slog.Int64("attempts", attempts))

		return false, 0, int(retryAfter), nil
	}

	return true, int(remaining), 0, nil
}
