package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
)

func init() { RegisterGuarded(registerResources) }

func registerResources(r chi.Router, d deps.Deps) {
	r.Route("/api/resources", func(r chi.Router) {
		r.Get("/", handlers.ListResources(d))
		r.Post("/", handlers.CreateResource(d))
		r.Post("/batch-delete", handlers.BatchDelete(d))
		r.Post("/reset", handlers.Reset(d))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetResource(d))
			r.Put("/", handlers.UpdateResource(d))
			r.Delete("/", handlers.DeleteResource(d))
			r.Post("/pin", handlers.TogglePin(d))
			r.Post("/click", handlers.IncrementClick(d))
			r.Get("/favicon", handlers.ResourceFavicon(d))
		})
	})
	r.Get("/api/favicons", handlers.Favicons(d))
}
