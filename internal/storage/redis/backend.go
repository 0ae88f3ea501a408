package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/storage"
)

// Backend keeps each namespace key as one Redis string with no expiry.
type Backend struct {
	client *goredis.Client
}

// NewBackend wraps an already connected client.
func NewBackend(client *goredis.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error { return b.client.Ping(ctx).Err() }
func (b *Backend) Close() error                   { return b.client.Close() }
func (b *Backend) Name() string                   { return "redis" }
