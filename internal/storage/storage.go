package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Backend is device-local key/value storage holding raw serialized values.
type Backend interface {
	// Get returns the raw value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value at key.
	Set(ctx context.Context, key string, value []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection.
	Close() error
	// Name identifies the backend in logs and status output.
	Name() string
}
