package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cache is the read-through store used by the list/detail endpoints. Backends
// are selected at configuration time; the memory backend has no tag support
// and degrades FlushTag to a full flush, so callers must tolerate tag
// invalidation being coarser than requested.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key. Any tags associate the key with a
	// tag-scoped region that FlushTag can invalidate in bulk.
	Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error
	Delete(ctx context.Context, key string) error
	FlushTag(ctx context.Context, tag string) error
	Flush(ctx context.Context) error
	Close() error
}

const (
	cartSinglePrefix  = "carts:single"
	orderSinglePrefix = "orders:single"
	orderListPrefix   = "orders:list"
	productSingle     = "products:single"
	productListPrefix = "products:list"
	categoryListKey   = "categories:list"
)

// HashKey derives a stable cache key suffix from an arbitrary query context
// (filters, sort, page). The context is serialized through JSON so pointer
// fields hash by the value they point at, never by address: two structurally
// equal filter sets always produce the same key.
func HashKey(context ...any) string {

	payload, err := json.Marshal(context)
	if err != nil {
		payload = []byte(fmt.Sprint(context...))
	}

	sum := sha256.Sum256(payload)

	return hex.EncodeToString(sum[:16])
}

func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
