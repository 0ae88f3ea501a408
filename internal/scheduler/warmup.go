package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Loader is anything that can load the collection.
type Loader interface {
	All(ctx context.Context) ([]domain.ResourceItem, error)
}

// Warmup loads the collection once at startup so seeding and legacy repair
// happen before the first request, and storage problems show up early.
type Warmup struct {
	dir    Loader
	logger logger.Logger
}

// NewWarmup creates a warmup over dir.
func NewWarmup(dir Loader, log logger.Logger) *Warmup {
	return &Warmup{dir: dir, logger: log}
}

// Run loads the collection and logs its size.
func (w *Warmup) Run(ctx context.Context) error {
	items, err := w.dir.All(ctx)
	if err != nil {
		return err
	}

	pinned := 0
	for _, item := range items {
		if item.IsPinned {
			pinned++
		}
	}
	w.logger.Info("directory loaded",
		logger.Int("count", len(items)),
		logger.Int("pinned", pinned),
		logger.Int("categories", len(domain.Categories(items))))
	return nil
}
