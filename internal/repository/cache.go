package repository

import (
	"context"
	"time"
)

// Cache is the subset of the Redis client the repositories use. A nil Cache
// disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
