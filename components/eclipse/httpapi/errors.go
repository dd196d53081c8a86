package httpapi

import (
	"errors"
	"net/http"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
	"github.com/goliatone/go-eclipse/components/eclipse/commands"
)

// ErrBadRequest wraps payload decoding failures.
var ErrBadRequest = errors.New("httpapi: malformed request body")

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, eclipse.ErrSessionNotFound), errors.Is(err, eclipse.ErrUnknownMetric):
		return http.StatusNotFound
	case errors.Is(err, eclipse.ErrInvalidTransition), errors.Is(err, eclipse.ErrGateLocked):
		return http.StatusConflict
	case errors.Is(err, eclipse.ErrInvalidEmail):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrBadRequest), errors.Is(err, commands.ErrUnknownAction), errors.Is(err, eclipse.ErrSessionRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
