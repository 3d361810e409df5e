package handlers

import (
	"errors"
	"net/http"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	pkghttp "github.com/sadh911122-sudo/Dark-Triad/pkg/http"
)

// writeServiceError maps service sentinel errors onto the JSON error
// envelope. Anything unrecognized is a 500 with no detail leaked.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrNoSession),
		errors.Is(err, models.ErrSessionExpired):
		pkghttp.WriteUnauthorized(w, "Invalid credentials or no active session")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Insufficient permissions")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
