package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/seed"
	"github.com/MrSnakeDoc/shelf/internal/storage"
)

// DefaultKey is the namespace key the collection is stored under.
const DefaultKey = "shelf:resources"

// Store owns the persisted resource collection. Load and Save are its only
// way in and out; nothing else reads the namespace key.
type Store struct {
	backend storage.Backend
	key     string
	logger  logger.Logger
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithKey overrides the namespace key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock overrides the time source used for seeding and repair.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store over backend.
func New(backend storage.Backend, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the namespace key.
func (s *Store) Key() string { return s.key }

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.now() }

// Load returns the persisted collection.
//
// A missing key, an empty collection or an unreadable payload is replaced by
// a fresh seed catalog, which is persisted before being returned. Backend
// read errors are returned as-is and never trigger reseeding.
func (s *Store) Load(ctx context.Context) ([]domain.ResourceItem, error) {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("no stored directory, seeding defaults",
				logger.String("key", s.key))
			return s.ResetToDefault(ctx)
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	records, ok := decode(data)
	if !ok {
		s.logger.Warn("stored directory is corrupt, reseeding defaults",
			logger.String("key", s.key),
			logger.Int("bytes", len(data)))
		return s.ResetToDefault(ctx)
	}
	if len(records) == 0 {
		s.logger.Info("stored directory is empty, seeding defaults",
			logger.String("key", s.key))
		return s.ResetToDefault(ctx)
	}

	items, repaired := migrateAll(records, s.now())
	if len(items) == 0 {
		s.logger.Warn("stored directory has no usable records, reseeding defaults",
			logger.String("key", s.key),
			logger.Int("records", len(records)))
		return s.ResetToDefault(ctx)
	}
	if repaired > 0 {
		s.logger.Info("repaired legacy records",
			logger.Int("repaired", repaired),
			logger.Int("total", len(items)))
		// regenerated ids must survive the next load
		if err := s.Save(ctx, items); err != nil {
			s.logger.Warn("failed to persist repaired records", logger.Error(err))
		}
	}
	return items, nil
}

// Save serializes and writes the whole collection.
func (s *Store) Save(ctx context.Context, items []domain.ResourceItem) error {
	if items == nil {
		items = []domain.ResourceItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal directory: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save directory: %w", err)
	}
	return nil
}

// ResetToDefault replaces the collection with a fresh seed catalog and
// persists it. Callers are responsible for obtaining user confirmation.
func (s *Store) ResetToDefault(ctx context.Context) ([]domain.ResourceItem, error) {
	items := seed.Catalog(s.now())
	if err := s.Save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}
