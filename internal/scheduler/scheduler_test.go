package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDirectory records creates in memory.
type fakeDirectory struct {
	mu    sync.Mutex
	items []domain.ResourceItem
	err   error
}

func (f *fakeDirectory) All(context.Context) ([]domain.ResourceItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.ResourceItem(nil), f.items...), nil
}

func (f *fakeDirectory) Create(_ context.Context, d domain.Draft) (*domain.ResourceItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := domain.ResourceItem{ID: domain.NewID(), CreatedAt: time.Now()}
	d.Normalize().Apply(&item)
	f.items = append(f.items, item)
	return &item, nil
}

func (f *fakeDirectory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

const bookmarksYAML = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go:
        - href: https://go.dev/
`

const servicesYAML = `---
- Infrastructure:
    - Traefik:
        href: https://traefik.home.lan
        description: proxy
    - Github mirror:
        href: https://github.com/
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestImportSkipsKnownURLs(t *testing.T) {
	dir := t.TempDir()
	bookmarks := filepath.Join(dir, "bookmarks.yaml")
	services := filepath.Join(dir, "services.yaml")
	writeFile(t, bookmarks, bookmarksYAML)
	writeFile(t, services, servicesYAML)

	fake := &fakeDirectory{items: []domain.ResourceItem{{ID: "x", Name: "Go", URL: "https://go.dev/"}}}
	hi := NewHomepageImporter([]ImportFile{
		{Kind: KindBookmarks, Path: bookmarks},
		{Kind: KindServices, Path: services},
	}, fake, logger.Nop(), 0, false, nil)

	res, err := hi.Import(context.Background())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	want := ImportResult{Read: 4, Created: 2, Skipped: 2}
	if res != want {
		t.Errorf("Import() = %+v, want %+v", res, want)
	}

	// second run is a no-op
	res, err = hi.Import(context.Background())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Created != 0 || fake.count() != 3 {
		t.Errorf("second Import() created %d, directory has %d items", res.Created, fake.count())
	}
}

func TestImportKeepsGoingPastBadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "bookmarks.yaml")
	writeFile(t, good, bookmarksYAML)

	fake := &fakeDirectory{}
	hi := NewHomepageImporter([]ImportFile{
		{Kind: KindServices, Path: filepath.Join(dir, "missing.yaml")},
		{Kind: KindBookmarks, Path: good},
	}, fake, logger.Nop(), 0, false, nil)

	res, err := hi.Import(context.Background())
	if err == nil {
		t.Fatal("Import() should report the missing file")
	}
	if res.Created != 2 {
		t.Errorf("Import() created %d, want 2", res.Created)
	}
}

func TestStartFailsWhenDirectoryUnavailable(t *testing.T) {
	fake := &fakeDirectory{err: errors.New("storage down")}
	hi := NewHomepageImporter(nil, fake, logger.Nop(), time.Hour, false, nil)

	if err := hi.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail")
	}
	hi.Stop()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestManualTrigger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookmarks.yaml")
	writeFile(t, path, bookmarksYAML)

	fake := &fakeDirectory{}
	trigger := make(chan struct{}, 1)
	hi := NewHomepageImporter([]ImportFile{{Kind: KindBookmarks, Path: path}}, fake, logger.Nop(), 0, false, trigger)

	if err := hi.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer hi.Stop()
	if fake.count() != 2 {
		t.Fatalf("initial import created %d, want 2", fake.count())
	}

	writeFile(t, path, bookmarksYAML+`    - Docs:
        - href: https://docs.example
`)
	trigger <- struct{}{}
	waitFor(t, func() bool { return fake.count() == 3 })
}

func TestWatchReimportsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookmarks.yaml")
	writeFile(t, path, bookmarksYAML)

	fake := &fakeDirectory{}
	hi := NewHomepageImporter([]ImportFile{{Kind: KindBookmarks, Path: path}}, fake, logger.Nop(), 0, true, nil)
	hi.debounce = 20 * time.Millisecond

	if err := hi.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer hi.Stop()

	writeFile(t, path, bookmarksYAML+`    - Docs:
        - href: https://docs.example
`)
	waitFor(t, func() bool { return fake.count() == 3 })
}

func TestStopIsIdempotent(t *testing.T) {
	hi := NewHomepageImporter(nil, &fakeDirectory{}, logger.Nop(), time.Millisecond, false, nil)
	if err := hi.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	hi.Stop()
	hi.Stop()
}

func TestWarmup(t *testing.T) {
	fake := &fakeDirectory{items: []domain.ResourceItem{{ID: "a", IsPinned: true}, {ID: "b"}}}
	if err := NewWarmup(fake, logger.Nop()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	fake.err = errors.New("down")
	if err := NewWarmup(fake, logger.Nop()).Run(context.Background()); err == nil {
		t.Fatal("Run() should surface load errors")
	}
}
