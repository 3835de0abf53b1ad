package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// StatusOf maps a domain error to its HTTP status code.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrUnauthenticated),
		errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrInactiveAccount),
		errors.Is(err, shared.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInvalidCredentialFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var problemTitles = map[int]string{
	http.StatusUnauthorized: "Unauthorized",
	http.StatusForbidden:    "Forbidden",
	http.StatusNotFound:     "Not Found",
	http.StatusConflict:     "Duplicate",
	http.StatusBadRequest:   "Validation Failed",
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Internal errors never leak their message.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	title, ok := problemTitles[status]
	if !ok {
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	Problem(w, status, title, err.Error())
}
