package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/respond"
	"github.com/cloudnotes/cloudnotes/internal/logger"
)

type readyzResponse struct {
	Ready     bool   `json:"ready"`
	Store     string `json:"store"`
	Templates int    `json:"templates"`
	Error     string `json:"error,omitempty"`
}

// Readyz pings the note store. It answers 503 while the store is unreachable.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := readyzResponse{Ready: true, Store: d.StoreKind}
		if d.Templates != nil {
			resp.Templates = d.Templates.Count()
		}

		status := http.StatusOK
		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("store not ready", logger.String("store", d.StoreKind), logger.Error(err))
			resp.Ready = false
			resp.Error = "store unreachable"
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		respond.JSON(w, status, resp)
	}
}
