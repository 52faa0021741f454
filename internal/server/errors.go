// Package server provides the HTTP REST API of the profile wizard.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/worker-profile-wizard/internal/schemas"
	"github.com/jonathan/worker-profile-wizard/internal/service"
	"github.com/jonathan/worker-profile-wizard/internal/uploads"
	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrInvalidID indicates a path parameter that is not a UUID
type ErrInvalidID struct {
	Param string
	Value string
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("invalid %s: %q is not a UUID", e.Param, e.Value)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	var (
		valErr    *ErrValidation
		idErr     *ErrInvalidID
		schemaErr *schemas.ValidationError
	)
	switch {
	case errors.As(err, &valErr), errors.As(err, &idErr):
		return http.StatusBadRequest
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, wizard.ErrExperienceNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, wizard.ErrStepNotCompleted):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrInvalidStep),
		errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrInvalidNumber),
		errors.Is(err, wizard.ErrInvalidWorkDay),
		errors.Is(err, wizard.ErrMissingEntryID),
		errors.Is(err, wizard.ErrDuplicateEntryID),
		errors.Is(err, uploads.ErrUnknownKind),
		errors.Is(err, uploads.ErrUnsupportedContent):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUploadsDisabled),
		errors.Is(err, service.ErrProfilesDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
