package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/sources/homepage"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Directory is the part of the mutation API the importer writes through.
type Directory interface {
	All(ctx context.Context) ([]domain.ResourceItem, error)
	Create(ctx context.Context, d domain.Draft) (*domain.ResourceItem, error)
}

// FileKind tells which Homepage schema a file uses.
type FileKind string

const (
	KindBookmarks FileKind = "bookmarks"
	KindServices  FileKind = "services"
)

// ImportFile is one Homepage file to import from.
type ImportFile struct {
	Kind FileKind
	Path string
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Read    int `json:"read"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// HomepageImporter copies Homepage bookmarks and services into the directory.
// Entries whose URL is already present are skipped, so repeated runs never
// duplicate or overwrite anything.
type HomepageImporter struct {
	files         []ImportFile
	dir           Directory
	logger        logger.Logger
	interval      time.Duration
	watch         bool
	debounce      time.Duration
	manualTrigger chan struct{}

	mu       sync.Mutex // one import at a time
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewHomepageImporter creates an importer. interval <= 0 disables periodic
// runs; watch enables re-imports on file changes.
func NewHomepageImporter(
	files []ImportFile,
	dir Directory,
	log logger.Logger,
	interval time.Duration,
	watch bool,
	manualTrigger chan struct{},
) *HomepageImporter {
	return &HomepageImporter{
		files:         files,
		dir:           dir,
		logger:        log,
		interval:      interval,
		watch:         watch,
		debounce:      DefaultDebounce,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
	}
}

// Start runs a first import, then keeps importing on the ticker, on manual
// triggers and on file changes until Stop or ctx is done.
func (hi *HomepageImporter) Start(ctx context.Context) error {
	if _, err := hi.Import(ctx); err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}

	var watcher *fsnotify.Watcher
	if hi.watch {
		w, err := hi.newWatcher()
		if err != nil {
			hi.logger.Warn("file watching disabled", logger.Error(err))
		} else {
			watcher = w
		}
	}

	hi.doneCh = make(chan struct{})
	go hi.loop(ctx, watcher)
	return nil
}

// Stop ends the background loop and waits for it.
func (hi *HomepageImporter) Stop() {
	hi.stopOnce.Do(func() {
		close(hi.stopCh)
		if hi.doneCh != nil {
			<-hi.doneCh
		}
	})
}

func (hi *HomepageImporter) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(hi.doneCh)

	var tick <-chan time.Time
	if hi.interval > 0 {
		ticker := time.NewTicker(hi.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher != nil {
		defer func() { _ = watcher.Close() }()
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	var settle <-chan time.Time
	for {
		select {
		case <-tick:
			hi.run(ctx, "interval")
		case <-hi.manualTrigger:
			hi.logger.Info("manual import triggered")
			hi.run(ctx, "manual")
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if hi.relevant(ev) {
				settle = time.After(hi.debounce)
			}
		case <-settle:
			settle = nil
			hi.run(ctx, "file change")
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			hi.logger.Warn("file watcher error", logger.Error(err))
		case <-hi.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (hi *HomepageImporter) run(ctx context.Context, reason string) {
	if _, err := hi.Import(ctx); err != nil {
		hi.logger.Error("failed to import homepage files",
			logger.String("reason", reason),
			logger.Error(err))
	}
}

// Import runs one import over every configured file. A file that cannot be
// read does not stop the others; its error is joined into the result.
func (hi *HomepageImporter) Import(ctx context.Context) (ImportResult, error) {
	hi.mu.Lock()
	defer hi.mu.Unlock()

	var res ImportResult
	items, err := hi.dir.All(ctx)
	if err != nil {
		return res, err
	}
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.URL] = true
	}

	var errs []error
	for _, f := range hi.files {
		drafts, err := load(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
			continue
		}
		res.Read += len(drafts)

		for _, d := range drafts {
			if known[d.URL] {
				res.Skipped++
				continue
			}
			if _, err := hi.dir.Create(ctx, d); err != nil {
				errs = append(errs, fmt.Errorf("create %s: %w", d.URL, err))
				continue
			}
			known[d.URL] = true
			res.Created++
		}
	}

	hi.logger.Info("homepage import finished",
		logger.Int("read", res.Read),
		logger.Int("created", res.Created),
		logger.Int("skipped", res.Skipped))
	return res, errors.Join(errs...)
}

func load(f ImportFile) ([]domain.Draft, error) {
	loader := homepage.NewLoader(f.Path)
	switch f.Kind {
	case KindServices:
		cfg, err := loader.Services()
		if err != nil {
			return nil, err
		}
		return homepage.MapServices(cfg)
	default:
		cfg, err := loader.Bookmarks()
		if err != nil {
			return nil, err
		}
		return homepage.MapBookmarks(cfg)
	}
}

// newWatcher watches the parent directories of the files, since editors
// usually replace a file rather than write it in place.
func (hi *HomepageImporter) newWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dirs := make(map[string]bool)
	for _, f := range hi.files {
		dir := filepath.Dir(filepath.Clean(f.Path))
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

func (hi *HomepageImporter) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	for _, f := range hi.files {
		if filepath.Clean(f.Path) == name {
			return true
		}
	}
	return false
}
