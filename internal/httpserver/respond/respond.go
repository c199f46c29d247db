// Package respond writes JSON responses and maps note errors to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/cloudnotes/cloudnotes/internal/domain"
	"github.com/cloudnotes/cloudnotes/internal/logger"
)

// MessageBody is the shape of every error response.
type MessageBody struct {
	Message string `json:"message"`
}

// QuotaBody is returned when a create is rejected by the storage quota.
type QuotaBody struct {
	Message string  `json:"message"`
	UsedMB  float64 `json:"usedMB"`
	LimitMB int64   `json:"limitMB"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// Error maps err to a status code and writes it. Internal failures are
// logged with the request id and hidden behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal("Server error", err)
	}

	switch de.Kind {
	case domain.KindValidation:
		Message(w, http.StatusBadRequest, de.Message)
	case domain.KindQuotaExceeded:
		JSON(w, http.StatusBadRequest, QuotaBody{Message: de.Message, UsedMB: de.UsedMB, LimitMB: de.LimitMB})
	case domain.KindUnauthorized:
		Message(w, http.StatusUnauthorized, "Not authorized")
	case domain.KindForbidden:
		Message(w, http.StatusForbidden, "Forbidden")
	case domain.KindNotFound:
		Message(w, http.StatusNotFound, "Note not found")
	default:
		log.Error("request failed",
			logger.RequestID(middleware.GetReqID(r.Context())),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		Message(w, http.StatusInternalServerError, "Server error")
	}
}
