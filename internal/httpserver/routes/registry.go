package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

// Registrar mounts a group of routes.
type Registrar func(r chi.Router, d deps.Deps)

type entry struct {
	reg     Registrar
	guarded bool
}

var registry []entry

// Register adds routes reachable by anyone. Only health checks belong here.
func Register(reg Registrar) {
	registry = append(registry, entry{reg: reg})
}

// RegisterGuarded adds routes that sit behind the access guard.
func RegisterGuarded(reg Registrar) {
	registry = append(registry, entry{reg: reg, guarded: true})
}

// RegisterAll mounts every registrar. Called once from httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if !e.guarded {
			e.reg(r, d)
			continue
		}
		r.Group(func(g chi.Router) {
			g.Use(guard(d)...)
			e.reg(g, d)
		})
	}
}

// guard is the access policy of every non-health route: client CIDR first,
// then Host header.
func guard(d deps.Deps) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
}
