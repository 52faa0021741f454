//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Badge is an achievement label derived from the wizard state. Badges are
// computed on every read and never stored.
type Badge struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// StepView describes one node of the wizard timeline.
type StepView struct {
	Index     int      `json:"index"`
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Completed bool     `json:"completed"`
	Current   bool     `json:"current"`
	Summary   string   `json:"summary,omitempty"`
	Missing   []string `json:"missing,omitempty"`
}

// SessionView is the full read model of a wizard session returned by the API.
type SessionView struct {
	SessionID      uuid.UUID  `json:"session_id"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	CurrentStep    int        `json:"current_step"`
	CompletedSteps []int      `json:"completed_steps"`
	IsLoading      bool       `json:"is_loading"`
	Progress       int        `json:"progress"`
	NextLabel      string     `json:"next_label"`
	Badges         []Badge    `json:"badges"`
	Steps          []StepView `json:"steps"`
	FormData       FormData   `json:"form_data"`
	SavedAt        *time.Time `json:"saved_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// UpdateFieldRequest sets one scalar form field. An empty value clears it.
type UpdateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// UpdateFieldsRequest applies several field updates in order.
type UpdateFieldsRequest struct {
	Updates []UpdateFieldRequest `json:"updates" validate:"required,min=1,dive"`
}

// ExperienceInput is the client shape of an experience entry. ID is optional;
// entries without one are treated as new.
type ExperienceInput struct {
	ID          string  `json:"id,omitempty" validate:"omitempty,uuid"`
	Company     string  `json:"company" validate:"required"`
	Position    string  `json:"position"`
	StartDate   string  `json:"startDate" validate:"omitempty,datetime=2006-01"`
	EndDate     *string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01"`
	IsCurrent   bool    `json:"isCurrent"`
	Description string  `json:"description" validate:"max=2000"`
}

// ReplaceExperiencesRequest replaces the whole experience list.
type ReplaceExperiencesRequest struct {
	Experiences []ExperienceInput `json:"experiences" validate:"dive"`
}

// PresignUploadRequest describes an attachment the client is about to upload.
type PresignUploadRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
}

// UploadResponse carries a presigned upload target for an attachment.
type UploadResponse struct {
	Field     string    `json:"field"`
	ObjectKey string    `json:"object_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToEntry converts the input into an experience entry. A missing or
// malformed ID yields uuid.Nil so the caller can assign a fresh one.
func (in ExperienceInput) ToEntry() ExperienceEntry {
	id, err := uuid.Parse(in.ID)
	if err != nil {
		id = uuid.Nil
	}
	return ExperienceEntry{
		ID:          id,
		Company:     in.Company,
		Position:    in.Position,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsCurrent:   in.IsCurrent,
		Description: in.Description,
	}
}

// Validate validates the UpdateFieldsRequest using the validator.
func (r *UpdateFieldsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ReplaceExperiencesRequest using the validator.
func (r *ReplaceExperiencesRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ExperienceInput using the validator.
func (in *ExperienceInput) Validate() error {
	validate := validator.New()
	return validate.Struct(in)
}

// Validate validates the PresignUploadRequest using the validator.
func (r *PresignUploadRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
