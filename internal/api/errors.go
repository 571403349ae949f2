package api

import (
	"errors"
	"net/http"

	"github.com/thinkex/clusters-api/internal/service"
	"github.com/thinkex/clusters-api/internal/store"
)

// MapErrorToStatusCode maps coordinator errors to HTTP status codes:
// validation failures to 400, missing entities to 404, everything else to
// an opaque 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case service.IsValidationError(err):
		return http.StatusBadRequest

	case service.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate), errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message to expose to the client.
// Validation and not-found errors carry caller-safe messages naming the
// offending list/cluster/card; anything else is replaced with a generic
// message so internals never leak.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	var nfe *service.NotFoundError
	if errors.As(err, &nfe) {
		return nfe.Message
	}

	switch {
	case errors.Is(err, store.ErrClusterListNotFound):
		return "Cluster list not found"
	case errors.Is(err, store.ErrClusterNotFound):
		return "Cluster not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Q/A not found"
	case errors.Is(err, store.ErrClusterTitleExists):
		return "A cluster with this title already exists in the list"
	default:
		return "An unexpected error occurred"
	}
}
