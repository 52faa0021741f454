package db

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no profile exists for the owner.
var ErrNotFound = errors.New("profile not found")

// ProfileRecord is a saved worker profile. Document holds the form data as
// JSON; the scalar columns are copies used for filtering.
type ProfileRecord struct {
	OwnerID         uuid.UUID       `json:"owner_id"`
	SessionID       uuid.UUID       `json:"session_id"`
	Document        json.RawMessage `json:"document"`
	CompletedSteps  []int           `json:"completed_steps"`
	Progress        int             `json:"progress"`
	VisaType        *string         `json:"visa_type,omitempty"`
	Nationality     *string         `json:"nationality,omitempty"`
	DesiredProvince *string         `json:"desired_province,omitempty"`
	SavedAt         time.Time       `json:"saved_at"`
}

// Revision is one historical save of a profile.
type Revision struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	Document  json.RawMessage `json:"document"`
	SavedAt   time.Time       `json:"saved_at"`
}
