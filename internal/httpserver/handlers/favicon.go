package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/favicon"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

// ResourceFavicon returns the favicon source of one resource.
//
// ?failed=<step> reports that the client could not load the image of that
// step and asks for the next one. ?check=true makes the server check the
// images itself and answer with the first one that loads.
func ResourceFavicon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := d.Directory.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			storageError(w, d, err)
			return
		}
		if item == nil {
			writeError(w, d.Logger, http.StatusNotFound, "resource not found")
			return
		}

		chain := d.Favicons.Chain(*item)
		if failed := r.URL.Query().Get("failed"); failed != "" {
			step, ok := favicon.ParseStep(failed)
			if !ok {
				writeError(w, d.Logger, http.StatusBadRequest, "unknown favicon step")
				return
			}
			chain.Advance(step)
			chain.Fail()
		}

		src := chain.Current()
		if check, _ := strconv.ParseBool(r.URL.Query().Get("check")); check {
			src, err = d.Favicons.Resolve(r.Context(), chain)
			if err != nil {
				// client went away, nobody is left to read the answer
				if errors.Is(err, context.Canceled) {
					return
				}
				writeError(w, d.Logger, http.StatusGatewayTimeout, "favicon check timed out")
				return
			}
		}
		writeJSON(w, d.Logger, http.StatusOK, src)
	}
}

// Favicons resolves every resource of the requested view at once.
func Favicons(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := d.Directory.View(r.Context(), filterFromQuery(r))
		if err != nil {
			storageError(w, d, err)
			return
		}
		sources, err := d.Favicons.ResolveAll(r.Context(), view.Items)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			writeError(w, d.Logger, http.StatusGatewayTimeout, "favicon check timed out")
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, sources)
	}
}
