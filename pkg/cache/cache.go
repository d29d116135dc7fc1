package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache: key not found")

// Cache defines the interface for the key-value store backing OAuth state
// and the per-device email remembered for magic-link sign-in.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take returns the value for key and removes it in one step, or ErrMiss.
	Take(ctx context.Context, key string) (string, error)
	Close() error
}
