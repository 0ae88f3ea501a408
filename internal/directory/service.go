package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

var (
	// ErrInvalidResource is returned when a draft has no name or no URL
	// after trimming. Nothing is persisted.
	ErrInvalidResource = errors.New("directory: name and url are required")

	// ErrConfirmationRequired is returned by ResetToDefault when the caller
	// did not confirm the destructive reset.
	ErrConfirmationRequired = errors.New("directory: reset requires confirmation")
)

// Store is the persistence the directory needs.
type Store interface {
	Load(ctx context.Context) ([]domain.ResourceItem, error)
	Save(ctx context.Context, items []domain.ResourceItem) error
	ResetToDefault(ctx context.Context) ([]domain.ResourceItem, error)
	Now() time.Time
}

// View is the ranked, filtered list shown to the user.
type View struct {
	Items      []domain.ResourceItem `json:"items"`
	Categories []string              `json:"categories"`
	Filter     domain.Filter         `json:"filter"`
	Total      int                   `json:"total"`
}

// Service is the mutation API over the persisted collection.
//
// Every mutation is a full load-modify-save cycle. The mutex serializes
// cycles inside this process only; separate processes writing the same
// key still race and the last save wins.
type Service struct {
	mu     sync.Mutex
	store  Store
	logger logger.Logger
}

// New creates the directory service.
func New(store Store, log logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// View loads the collection and ranks it through f.
func (s *Service) View(ctx context.Context, f domain.Filter) (View, error) {
	items, err := s.load(ctx)
	if err != nil {
		return View{}, err
	}
	return View{
		Items:      domain.Rank(items, f),
		Categories: domain.Categories(items),
		Filter:     f,
		Total:      len(items),
	}, nil
}

// Get returns the item with id, if any.
func (s *Service) Get(ctx context.Context, id string) (*domain.ResourceItem, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(items, id); i >= 0 {
		item := items[i]
		return &item, nil
	}
	return nil, nil
}

// Categories returns the selectable filter categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Categories(items), nil
}

// All returns the whole collection, unranked.
func (s *Service) All(ctx context.Context) ([]domain.ResourceItem, error) {
	return s.load(ctx)
}

// Create appends a new item built from d.
func (s *Service) Create(ctx context.Context, d domain.Draft) (*domain.ResourceItem, error) {
	d = d.Normalize()
	if !d.Valid() {
		return nil, ErrInvalidResource
	}

	var created domain.ResourceItem
	err := s.mutate(ctx, func(items []domain.ResourceItem) ([]domain.ResourceItem, bool) {
		created = domain.ResourceItem{
			ID:        uniqueID(items),
			CreatedAt: domain.NextCreatedAt(items, s.store.Now()),
		}
		d.Apply(&created)
		return append(items, created), true
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource created",
		logger.String("id", created.ID),
		logger.String("url", created.URL),
		logger.String("category", created.Category))
	return &created, nil
}

// Update replaces the editable fields of the item with id. It returns nil
// when no such item exists.
func (s *Service) Update(ctx context.Context, id string, d domain.Draft) (*domain.ResourceItem, error) {
	d = d.Normalize()
	if !d.Valid() {
		return nil, ErrInvalidResource
	}
	return s.modify(ctx, id, func(item *domain.ResourceItem) { d.Apply(item) })
}

// TogglePin flips the pinned flag of the item with id.
func (s *Service) TogglePin(ctx context.Context, id string) (*domain.ResourceItem, error) {
	return s.modify(ctx, id, func(item *domain.ResourceItem) { item.IsPinned = !item.IsPinned })
}

// IncrementClick records one visit of the item with id.
func (s *Service) IncrementClick(ctx context.Context, id string) (*domain.ResourceItem, error) {
	return s.modify(ctx, id, func(item *domain.ResourceItem) { item.ClickCount++ })
}

// Delete removes the item with id and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.BatchDelete(ctx, []string{id})
	return n > 0, err
}

// BatchDelete removes every item whose id is in ids with a single save and
// returns how many were removed. Unknown ids are skipped.
func (s *Service) BatchDelete(ctx context.Context, ids []string) (int, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	removed := 0
	err := s.mutate(ctx, func(items []domain.ResourceItem) ([]domain.ResourceItem, bool) {
		kept := items[:0]
		for _, item := range items {
			if drop[item.ID] {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		return kept, removed > 0
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("resources deleted",
			logger.Int("requested", len(ids)),
			logger.Int("removed", removed))
	}
	return removed, nil
}

// ResetToDefault discards the collection and restores the seed catalog.
// confirmed must be true; it stands for the user's explicit consent.
func (s *Service) ResetToDefault(ctx context.Context, confirmed bool) ([]domain.ResourceItem, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.ResetToDefault(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("directory reset to defaults", logger.Int("count", len(items)))
	return items, nil
}

func (s *Service) load(ctx context.Context) ([]domain.ResourceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// mutate runs one load-modify-save cycle. fn reports whether it changed
// anything; unchanged collections are not written back.
func (s *Service) mutate(ctx context.Context, fn func([]domain.ResourceItem) ([]domain.ResourceItem, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	next, changed := fn(items)
	if !changed {
		return nil
	}
	return s.store.Save(ctx, next)
}

// modify applies fn to the item with id. It returns nil, nil when the item
// does not exist.
func (s *Service) modify(ctx context.Context, id string, fn func(*domain.ResourceItem)) (*domain.ResourceItem, error) {
	var updated *domain.ResourceItem
	err := s.mutate(ctx, func(items []domain.ResourceItem) ([]domain.ResourceItem, bool) {
		i := indexOf(items, id)
		if i < 0 {
			return items, false
		}
		fn(&items[i])
		item := items[i]
		updated = &item
		return items, true
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		s.logger.Debug("resource not found", logger.String("id", id))
	}
	return updated, nil
}

func indexOf(items []domain.ResourceItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueID draws ids until one is unused in items.
func uniqueID(items []domain.ResourceItem) string {
	for {
		id := domain.NewID()
		if indexOf(items, id) < 0 {
			return id
		}
	}
}
