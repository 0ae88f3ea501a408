package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metadata"
)

// Metadata is the page-metadata collaborator: GET ?url= answers with
// {title, description} or {error}.
func Metadata(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidate := domain.NormalizeURL(r.URL.Query().Get("url"))
		if candidate == "" {
			writeJSON(w, d.Logger, http.StatusBadRequest, metadata.Response{Error: "url is required"})
			return
		}

		m, err := d.Metadata.Lookup(r.Context(), candidate)
		if err != nil {
			d.Logger.Debug("metadata lookup failed",
				logger.String("url", candidate),
				logger.Error(err))
			writeJSON(w, d.Logger, http.StatusBadGateway, metadata.Response{Error: err.Error()})
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, metadata.Response{Metadata: m})
	}
}

type autofillRequest struct {
	Form  string       `json:"form"`
	Draft domain.Draft `json:"draft"`
}

type autofillResponse struct {
	Draft  domain.Draft `json:"draft"`
	Filled bool         `json:"filled"`
}

// Autofill pre-fills the empty fields of a form draft. A newer request for
// the same form cancels this one, which then answers 409 with the draft
// untouched.
func Autofill(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req autofillRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid json body")
			return
		}

		ctx := r.Context()
		if form := strings.TrimSpace(req.Form); form != "" {
			var done func()
			ctx, done = d.Tasks.Start(ctx, form)
			defer done()
		}

		draft, filled := d.Autofill.Fill(ctx, req.Draft)
		if ctx.Err() != nil {
			writeJSON(w, d.Logger, http.StatusConflict, autofillResponse{Draft: req.Draft})
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, autofillResponse{Draft: draft, Filled: filled})
	}
}

// CancelAutofill tears down the in-flight autofill of a form.
func CancelAutofill(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Tasks.Cancel(chi.URLParam(r, "form")) {
			writeError(w, d.Logger, http.StatusNotFound, "no autofill in flight")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
