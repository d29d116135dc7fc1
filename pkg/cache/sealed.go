package cache

import (
	"context"
	"fmt"
	"time"
)

// Sealer encrypts and decrypts stored values.
type Sealer interface {
	Seal(plainText string) (string, error)
	Open(sealed string) (string, error)
}

// SealedCache wraps a Cache so values are encrypted at rest.
type SealedCache struct {
	inner  Cache
	sealer Sealer
}

// NewSealedCache wraps inner with sealer.
func NewSealedCache(inner Cache, sealer Sealer) *SealedCache {
	return &SealedCache{inner: inner, sealer: sealer}
}

func (s *SealedCache) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed value for key %s: %w", key, err)
	}
	return plain, nil
}

func (s *SealedCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal value for key %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed, expiration)
}

func (s *SealedCache) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SealedCache) Take(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Take(ctx, key)
	if err != nil {
		return "", err
	}
	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed value for key %s: %w", key, err)
	}
	return plain, nil
}

func (s *SealedCache) Close() error {
	return s.inner.Close()
}
