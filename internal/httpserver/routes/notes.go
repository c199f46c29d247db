package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/handlers"
)

func init() { RegisterIn(APIPrefix, registerNotes) }

func registerNotes(r chi.Router, d deps.Deps) {
	r.Route("/notes", func(n chi.Router) {
		n.Get("/", handlers.ListNotes(d))
		n.Post("/", handlers.CreateNote(d))
		n.Get("/search/{query}", handlers.SearchNotes(d))
		n.Get("/stats/overview", handlers.NoteStats(d))
		n.Get("/categories/list", handlers.ListCategories(d))
		n.Get("/tags/list", handlers.ListTags(d))

		n.Get("/{id}", handlers.GetNote(d))
		n.Put("/{id}", handlers.UpdateNote(d))
		n.Patch("/{id}/pin", handlers.TogglePin(d))
		n.Delete("/{id}", handlers.DeleteNote(d))
	})
}
