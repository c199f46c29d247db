package handlers

import (
	"net/http"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/respond"
	"github.com/cloudnotes/cloudnotes/internal/logger"
)

// Reload asks the template reloader to run now. The trigger channel is
// buffered by one, so a pending reload makes further requests return 429.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual template reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			respond.Message(w, http.StatusAccepted, "Reload triggered")
		default:
			d.Logger.Warn("template reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			respond.Message(w, http.StatusTooManyRequests, "Reload already in progress, please wait")
		}
	}
}
