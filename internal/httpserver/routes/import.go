package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
)

func init() { RegisterGuarded(registerImport) }

func registerImport(r chi.Router, d deps.Deps) {
	r.Post("/import", handlers.Import(d))
}
