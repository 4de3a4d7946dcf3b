package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrClaimNotFound),
		domain.IsKind(err, domain.ErrAccountNotFound),
		domain.IsKind(err, domain.ErrCardNotActive):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError maps err to a status. Server-side failures are logged and
// answered with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
			writeError(w, status, "service temporarily unavailable")
			return
		}
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
