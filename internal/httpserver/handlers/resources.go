package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/directory"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// filterFromQuery reads ?category=&q=&tag=. A tag overrides both, the way
// clicking a tag chip does.
func filterFromQuery(r *http.Request) domain.Filter {
	q := r.URL.Query()
	if tag := strings.TrimSpace(q.Get("tag")); tag != "" {
		return domain.TagFilter(tag)
	}
	category := strings.ToLower(strings.TrimSpace(q.Get("category")))
	if category == "" {
		category = domain.CategoryAll
	}
	return domain.Filter{Category: category, Query: q.Get("q")}
}

// ListResources returns the ranked, filtered view.
func ListResources(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := d.Directory.View(r.Context(), filterFromQuery(r))
		if err != nil {
			storageError(w, d, err)
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, view)
	}
}

func CreateResource(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.Draft
		if err := decodeBody(r, &draft); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid json body")
			return
		}
		item, err := d.Directory.Create(r.Context(), draft)
		if err != nil {
			mutationError(w, d, err)
			return
		}
		writeJSON(w, d.Logger, http.StatusCreated, item)
	}
}

func GetResource(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := d.Directory.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storageError(w, d, err)
			return
		}
		respondItem(w, d, item)
	}
}

func UpdateResource(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.Draft
		if err := decodeBody(r, &draft); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid json body")
			return
		}
		item, err := d.Directory.Update(r.Context(), chi.URLParam(r, "id"), draft)
		if err != nil {
			mutationError(w, d, err)
			return
		}
		respondItem(w, d, item)
	}
}

func DeleteResource(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := d.Directory.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storageError(w, d, err)
			return
		}
		if !found {
			writeError(w, d.Logger, http.StatusNotFound, "resource not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type batchDeleteRequest struct {
	IDs []string `json:"ids"`
}

type batchDeleteResponse struct {
	Requested int `json:"requested"`
	Removed   int `json:"removed"`
}

func BatchDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchDeleteRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid json body")
			return
		}
		n, err := d.Directory.BatchDelete(r.Context(), req.IDs)
		if err != nil {
			storageError(w, d, err)
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, batchDeleteResponse{Requested: len(req.IDs), Removed: n})
	}
}

func TogglePin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := d.Directory.TogglePin(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storageError(w, d, err)
			return
		}
		respondItem(w, d, item)
	}
}

func IncrementClick(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := d.Directory.IncrementClick(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storageError(w, d, err)
			return
		}
		respondItem(w, d, item)
	}
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

type resetResponse struct {
	Count int `json:"count"`
}

// Reset restores the seed catalog. The body must carry {"confirm": true}.
func Reset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid json body")
			return
		}
		items, err := d.Directory.ResetToDefault(r.Context(), req.Confirm)
		if err != nil {
			mutationError(w, d, err)
			return
		}
		d.Logger.Info("directory reset via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, d.Logger, http.StatusOK, resetResponse{Count: len(items)})
	}
}

func respondItem(w http.ResponseWriter, d deps.Deps, item *domain.ResourceItem) {
	if item == nil {
		writeError(w, d.Logger, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(w, d.Logger, http.StatusOK, item)
}

func mutationError(w http.ResponseWriter, d deps.Deps, err error) {
	switch {
	case errors.Is(err, directory.ErrInvalidResource):
		writeError(w, d.Logger, http.StatusUnprocessableEntity, "name and url are required")
	case errors.Is(err, directory.ErrConfirmationRequired):
		writeError(w, d.Logger, http.StatusPreconditionRequired, "reset requires {\"confirm\": true}")
	default:
		storageError(w, d, err)
	}
}

func storageError(w http.ResponseWriter, d deps.Deps, err error) {
	d.Logger.Error("directory operation failed", logger.Error(err))
	writeError(w, d.Logger, http.StatusServiceUnavailable, "storage unavailable")
}
