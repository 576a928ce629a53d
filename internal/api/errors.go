package api

import (
	"errors"
	"net/http"

	respond "github.com/daymark/daymark/internal/api/respond"
	"github.com/daymark/daymark/internal/model"
)

// writeDomainError maps the sentinel error taxonomy onto HTTP statuses.
// Anything unclassified is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteConflict(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
