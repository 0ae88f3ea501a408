package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool     `json:"ok"`
	Backend    string   `json:"backend,omitempty"`
	Items      *int     `json:"items,omitempty"`
	Pinned     *int     `json:"pinned,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type statusResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Status reports storage health and a summary of the directory.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"storage":   checkStorage(r.Context(), d),
			"directory": summarizeDirectory(r.Context(), d),
			"import":    {OK: true, Enabled: ptr(d.ImportTrigger != nil)},
		}
		writeJSON(w, d.Logger, http.StatusOK, statusResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["storage"].OK {
		return "critical"
	}
	if !components["directory"].OK {
		return "degraded"
	}
	return "ok"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	if d.Storage == nil {
		return componentStatus{OK: false, Error: "backend not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Storage.Ping(ctx); err != nil {
		return componentStatus{OK: false, Backend: d.Storage.Name(), Error: err.Error()}
	}
	return componentStatus{OK: true, Backend: d.Storage.Name()}
}

func summarizeDirectory(ctx context.Context, d deps.Deps) componentStatus {
	items, err := d.Directory.All(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	pinned := 0
	for _, item := range items {
		if item.IsPinned {
			pinned++
		}
	}
	cats, _ := d.Directory.Categories(ctx)
	return componentStatus{
		OK:         true,
		Items:      ptr(len(items)),
		Pinned:     ptr(pinned),
		Categories: cats,
	}
}

func ptr[T any](v T) *T { return &v }
