package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/directory"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/favicon"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metadata"
	"github.com/MrSnakeDoc/shelf/internal/seed"
	"github.com/MrSnakeDoc/shelf/internal/storage"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/task"
)

type stubSource struct {
	m   metadata.Metadata
	err error
}

func (s stubSource) Lookup(context.Context, string) (metadata.Metadata, error) {
	return s.m, s.err
}

type harness struct {
	router  http.Handler
	mem     *storage.Memory
	trigger chan struct{}
}

func newHarness(t *testing.T, opts ...func(*deps.Deps)) *harness {
	t.Helper()
	log := logger.Nop()
	mem := storage.NewMemory()
	dir := directory.New(store.New(mem, log), log)
	src := stubSource{m: metadata.Metadata{Title: "Scraped", Description: "From page"}}
	trigger := make(chan struct{}, 1)

	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Directory:     dir,
		Storage:       mem,
		Favicons:      favicon.NewResolver(favicon.Config{Service: "https://icons.example/s2/favicons", Size: 64}, time.Second, log),
		Metadata:      src,
		Autofill:      metadata.NewAutofiller(src, log),
		Tasks:         task.NewRegistry(),
		ImportTrigger: trigger,
		ScrapeBurst:   100,
		ScrapePerMin:  100,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return &harness{router: NewRouter(5*time.Second, log, d), mem: mem, trigger: trigger}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = h.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready":true`)
}

func TestListSeedsAndFilters(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[directory.View](t, rec)
	assert.Len(t, view.Items, seed.Len())
	assert.Equal(t, domain.DefaultCategories, view.Categories)

	rec = h.do(t, http.MethodGet, "/api/resources?category=ai", nil)
	view = decode[directory.View](t, rec)
	require.NotEmpty(t, view.Items)
	for _, item := range view.Items {
		assert.Equal(t, domain.CategoryAI, item.Category)
	}
	assert.Equal(t, seed.Len(), view.Total)
}

func TestCreateUpdateDeleteFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/resources", domain.Draft{Name: "Foo", URL: "bar.com", Tags: []string{"zz-tag"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[domain.ResourceItem](t, rec)
	assert.Equal(t, "https://bar.com", item.URL)

	rec = h.do(t, http.MethodGet, "/api/resources?tag=zz-tag", nil)
	view := decode[directory.View](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, item.ID, view.Items[0].ID)

	rec = h.do(t, http.MethodPut, "/api/resources/"+item.ID, domain.Draft{Name: "Foo 2", URL: "bar.com/2"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.ResourceItem](t, rec)
	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, "Foo 2", updated.Name)

	for i := 0; i < 3; i++ {
		rec = h.do(t, http.MethodPost, "/api/resources/"+item.ID+"/click", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/api/resources", nil)
	view = decode[directory.View](t, rec)
	assert.Equal(t, item.ID, view.Items[0].ID)

	rec = h.do(t, http.MethodDelete, "/api/resources/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/resources/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/resources", domain.Draft{Name: " ", URL: "bar.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/resources", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundMutations(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/resources/nope/pin", "/api/resources/nope/click"} {
		rec := h.do(t, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := h.do(t, http.MethodPut, "/api/resources/nope", domain.Draft{Name: "a", URL: "b"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = h.do(t, http.MethodDelete, "/api/resources/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPinAndBatchDelete(t *testing.T) {
	h := newHarness(t)

	view := decode[directory.View](t, h.do(t, http.MethodGet, "/api/resources", nil))
	last := view.Items[len(view.Items)-1]

	rec := h.do(t, http.MethodPost, "/api/resources/"+last.ID+"/pin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.ResourceItem](t, rec).IsPinned)

	view = decode[directory.View](t, h.do(t, http.MethodGet, "/api/resources", nil))
	assert.Equal(t, last.ID, view.Items[0].ID)

	rec = h.do(t, http.MethodPost, "/api/resources/batch-delete", map[string][]string{"ids": {last.ID, "missing"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"requested":2,"removed":1}`, rec.Body.String())
}

func TestResetRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/resources", domain.Draft{Name: "Mine", URL: "mine.example"})

	rec := h.do(t, http.MethodPost, "/api/resources/reset", nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/resources/reset", map[string]bool{"confirm": false})
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/resources/reset", map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"count":%d}`, seed.Len()), rec.Body.String())
}

func TestWriteFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/resources", nil) // seed first
	h.mem.SetErr = errors.New("disk full")

	rec := h.do(t, http.MethodPost, "/api/resources", domain.Draft{Name: "Foo", URL: "bar.com"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResourceFavicon(t *testing.T) {
	h := newHarness(t)
	item := decode[domain.ResourceItem](t, h.do(t, http.MethodPost, "/api/resources", domain.Draft{Name: "go", URL: "https://go.dev/doc"}))
	base := "/api/resources/" + item.ID + "/favicon"

	src := decode[favicon.Source](t, h.do(t, http.MethodGet, base, nil))
	assert.Equal(t, "service", src.Kind)
	assert.Equal(t, "https://icons.example/s2/favicons?domain=go.dev&sz=64", src.URL)

	src = decode[favicon.Source](t, h.do(t, http.MethodGet, base+"?failed=service", nil))
	assert.Equal(t, "origin", src.Kind)
	assert.Equal(t, "https://go.dev/favicon.ico", src.URL)

	src = decode[favicon.Source](t, h.do(t, http.MethodGet, base+"?failed=origin", nil))
	assert.Equal(t, "placeholder", src.Kind)
	assert.Equal(t, "G", src.Text)

	// an unknown step must not advance the chain
	rec := h.do(t, http.MethodGet, base+"?failed=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown favicon step")

	rec = h.do(t, http.MethodGet, "/api/resources/nope/favicon", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetadataEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/metadata?url=example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"Scraped","description":"From page"}`, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/metadata", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestAutofillFillsGaps(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/autofill", map[string]any{
		"form":  "new-resource",
		"draft": domain.Draft{Name: "Typed", URL: "example.com"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Draft  domain.Draft `json:"draft"`
		Filled bool         `json:"filled"`
	}](t, rec)
	assert.True(t, resp.Filled)
	assert.Equal(t, "Typed", resp.Draft.Name)
	assert.Equal(t, "From page", resp.Draft.Description)

	// nothing in flight anymore
	rec = h.do(t, http.MethodDelete, "/api/autofill/new-resource", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusAndImport(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mode":"ok"`)
	assert.Contains(t, rec.Body.String(), `"backend":"memory"`)

	rec = h.do(t, http.MethodPost, "/import", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = h.do(t, http.MethodPost, "/import", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	<-h.trigger
}

func TestAccessGuard(t *testing.T) {
	h := newHarness(t, func(d *deps.Deps) {
		d.AllowedHosts = []string{"shelf.lan"}
		d.AllowedCIDRS = []string{"192.0.2.0/24"}
	})

	get := func(path, host, remote string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Host = host
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/api/resources", "shelf.lan", "192.0.2.10:1"))
	assert.Equal(t, http.StatusForbidden, get("/api/resources", "evil.example", "192.0.2.10:1"))
	assert.Equal(t, http.StatusForbidden, get("/api/resources", "shelf.lan", "198.51.100.1:1"))

	// liveness stays open, readiness only checks the client address
	assert.Equal(t, http.StatusOK, get("/healthz", "evil.example", "198.51.100.1:1"))
	assert.Equal(t, http.StatusOK, get("/readyz", "evil.example", "192.0.2.10:1"))
	assert.Equal(t, http.StatusForbidden, get("/readyz", "shelf.lan", "198.51.100.1:1"))
}
