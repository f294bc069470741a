package communication

import (
	"errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"net/http"
)

// StatusFor maps an error of the apperror taxonomy to its HTTP status
func StatusFor(err error) int {
	var validationErr *apperror.ValidationError
	var notFoundErr *apperror.NotFoundError
	var insufficientErr *apperror.InsufficientDataError
	var authErr *apperror.AuthError
	var conflictErr *apperror.ConflictError
	var forbiddenErr *apperror.ForbiddenError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &insufficientErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
