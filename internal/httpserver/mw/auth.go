package mw

import (
	"net/http"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/respond"
	"github.com/cloudnotes/cloudnotes/internal/identity"
	"github.com/cloudnotes/cloudnotes/internal/logger"
)

// Authenticate resolves the owner from the bearer token and stores it in
// the request context. Requests without a valid token never reach the handler.
func Authenticate(v *identity.Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := v.FromHeader(r.Header.Get("Authorization"))
			if err != nil {
				log.Debug("authentication failed",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				respond.Message(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithOwner(r.Context(), owner)))
		})
	}
}
