package errors

import (
	stderrors "errors"
	"net/http"
)

// MapToHTTPStatus translates a domain error into an HTTP status code.
// Called once at the HTTP boundary; services never deal with status codes.
func MapToHTTPStatus(err error) int {
	switch {
	case stderrors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, ErrAlreadyJoined),
		stderrors.Is(err, ErrSessionFull),
		stderrors.Is(err, ErrAlreadyFriends),
		stderrors.Is(err, ErrAlreadyRequested),
		stderrors.Is(err, ErrUsernameTaken):
		return http.StatusConflict
	case stderrors.Is(err, ErrInvalidToken),
		stderrors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		// Includes ErrStore: persistence failures surface as opaque 500s.
		return http.StatusInternalServerError
	}
}
