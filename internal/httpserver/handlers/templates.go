package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/respond"
	"github.com/cloudnotes/cloudnotes/internal/identity"
)

func ListTemplates(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, d.Templates.All())
	}
}

// CreateFromTemplate creates a note from a named template through the
// regular create path, so quota and validation apply.
func CreateFromTemplate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.ToLower(chi.URLParam(r, "name"))
		tpl, ok := d.Templates.Get(name)
		if !ok {
			respond.Message(w, http.StatusNotFound, "Template not found")
			return
		}
		n, err := d.Notes.Create(r.Context(), identity.OwnerFrom(r.Context()), tpl.Input())
		if err != nil {
			countQuota(d, err)
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusCreated, n)
	}
}
