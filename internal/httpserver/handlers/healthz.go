package handlers

import (
	"net/http"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/respond"
	"github.com/cloudnotes/cloudnotes/internal/version"
)

type healthzResponse struct {
	Status    string       `json:"status"`
	Uptime    string       `json:"uptime"`
	StartedAt time.Time    `json:"started_at"`
	Build     version.Info `json:"build"`
}

// Healthz reports liveness only; it never touches the store.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		respond.JSON(w, http.StatusOK, healthzResponse{
			Status:    "ok",
			Uptime:    time.Since(d.StartTime).Truncate(time.Second).String(),
			StartedAt: d.StartTime.UTC(),
			Build:     d.Build,
		})
	}
}
