package wizard

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the reducer. They are wrapped with context, so
// compare with errors.Is.
var (
	ErrInvalidStep        = errors.New("invalid step")
	ErrStepNotCompleted   = errors.New("step not completed")
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidNumber      = errors.New("invalid number")
	ErrInvalidWorkDay     = errors.New("invalid work day")
	ErrExperienceNotFound = errors.New("experience entry not found")
	ErrMissingEntryID     = errors.New("experience entry has no id")
	ErrDuplicateEntryID   = errors.New("duplicate experience entry id")
	ErrUnknownAction      = errors.New("unknown action")
)

// FieldError reports a failed field update
type FieldError struct {
	Field string
	Value string
	Cause error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("field %s: %v: %q", e.Field, e.Cause, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}
