package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/handlers"
)

func init() { RegisterIn(APIPrefix, registerTemplates) }

func registerTemplates(r chi.Router, d deps.Deps) {
	r.Get("/templates", handlers.ListTemplates(d))
	r.Post("/templates/{name}", handlers.CreateFromTemplate(d))
}
