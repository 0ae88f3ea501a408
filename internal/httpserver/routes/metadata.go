package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { RegisterGuarded(registerMetadata) }

// registerMetadata mounts the endpoints that fetch third-party pages; both
// share one per-client token bucket.
func registerMetadata(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.ScrapeBurst,
		RefillPerIPPerMin: d.ScrapePerMin,
		MaxEntries:        4096,
		TrustProxy:        d.TrustProxy,
		Logger:            d.Logger,
	})

	r.With(limit).Get("/api/metadata", handlers.Metadata(d))
	r.With(limit).Post("/api/autofill", handlers.Autofill(d))
	r.Delete("/api/autofill/{form}", handlers.CancelAutofill(d))
}
