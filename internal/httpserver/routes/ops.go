package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/handlers"
)

func init() {
	Register(registerReload, allowCIDRS, enforceHost)
	Register(registerMetrics, allowCIDRS)
}

func registerReload(r chi.Router, d deps.Deps) {
	r.Post("/reload", handlers.Reload(d))
}

func registerMetrics(r chi.Router, d deps.Deps) {
	if d.Metrics != nil {
		r.Method("GET", "/metrics", d.Metrics.Handler())
	}
}
