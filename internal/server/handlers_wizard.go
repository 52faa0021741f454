package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/worker-profile-wizard/internal/server/middleware"
	"github.com/jonathan/worker-profile-wizard/internal/types"
	"github.com/jonathan/worker-profile-wizard/internal/uploads"
	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

const maxBodyBytes = 1 << 20

// StepResponse describes one wizard step for clients building the form.
type StepResponse struct {
	Index       int                `json:"index"`
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	Recommended []string           `json:"recommended"`
	Fields      []wizard.FieldInfo `json:"fields"`
}

// handleListSteps returns the step registry with the fields of each step.
func (s *Server) handleListSteps(w http.ResponseWriter, _ *http.Request) {
	defs := wizard.Steps()
	steps := make([]StepResponse, len(defs))
	for i, def := range defs {
		steps[i] = StepResponse{
			Index:       int(def.Index),
			ID:          def.ID,
			Label:       def.Label,
			Recommended: append([]string{}, def.Recommended...),
			Fields:      []wizard.FieldInfo{},
		}
	}
	for _, f := range wizard.Fields() {
		steps[f.Step].Fields = append(steps[f.Step].Fields, f)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"steps": steps,
		"count": len(steps),
	})
}

// handleReferenceData returns visa types, provinces and other option lists.
func (s *Server) handleReferenceData(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.refData)
}

// handleStartSession opens a new wizard session for the caller
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := s.wizard.Start(r.Context(), owner)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/wizard/sessions/"+view.SessionID.String())
	s.jsonResponse(w, http.StatusCreated, view)
}

// handleGetSession returns the current view of a session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	s.respondView(w, r)(s.wizard.Get(r.Context(), owner, id))
}

// handleNext completes the current step and advances
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	s.respondView(w, r)(s.wizard.Next(r.Context(), owner, id))
}

// handlePrev moves back one step
func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	s.respondView(w, r)(s.wizard.Prev(r.Context(), owner, id))
}

// handleGoTo jumps to a step given by index or id ("visa")
func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}

	step, err := parseStep(r.PathValue("step"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.respondView(w, r)(s.wizard.GoTo(r.Context(), owner, id, step))
}

// handleUpdateFields applies scalar field updates. Either all apply or none.
func (s *Server) handleUpdateFields(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}

	var req types.UpdateFieldsRequest
	if err := s.decode(r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, r, validationError(err))
		return
	}
	s.respondView(w, r)(s.wizard.UpdateFields(r.Context(), owner, id, req.Updates))
}

// handleReplaceExperiences replaces the experience list
func (s *Server) handleReplaceExperiences(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}

	var req types.ReplaceExperiencesRequest
	if err := s.decode(r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, r, validationError(err))
		return
	}
	s.respondView(w, r)(s.wizard.ReplaceExperiences(r.Context(), owner, id, req.Experiences))
}

// handleAddExperience appends one experience entry
func (s *Server) handleAddExperience(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}

	var in types.ExperienceInput
	if err := s.decode(r, &in); err != nil {
		s.serviceError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.serviceError(w, r, validationError(err))
		return
	}

	view, err := s.wizard.AddExperience(r.Context(), owner, id, in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, view)
}

// handleRemoveExperience deletes one experience entry by id
func (s *Server) handleRemoveExperience(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}

	entryIDStr := r.PathValue("entry_id")
	entryID, err := uuid.Parse(entryIDStr)
	if err != nil {
		s.serviceError(w, r, &ErrInvalidID{Param: "entry_id", Value: entryIDStr})
		return
	}
	s.respondView(w, r)(s.wizard.RemoveExperience(r.Context(), owner, id, entryID))
}

// handleToggleWorkDay adds or removes a desired work day
func (s *Server) handleToggleWorkDay(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	s.respondView(w, r)(s.wizard.ToggleWorkDay(r.Context(), owner, id, r.PathValue("day")))
}

// handleSave validates and persists the profile
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}
	s.respondView(w, r)(s.wizard.Save(r.Context(), owner, id))
}

// handlePresignUpload issues an upload URL for an attachment slot
func (s *Server) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}

	kind, err := uploads.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	var req types.PresignUploadRequest
	if err := s.decode(r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, r, validationError(err))
		return
	}

	resp, err := s.wizard.PresignUpload(r.Context(), owner, id, kind, req.FileName, req.ContentType)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// sessionParams reads the caller and the session id of a session route.
// It writes the error response itself and reports false on failure.
func (s *Server) sessionParams(w http.ResponseWriter, r *http.Request) (owner, id uuid.UUID, ok bool) {
	owner, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	idStr := r.PathValue("id")
	id, err = uuid.Parse(idStr)
	if err != nil {
		s.serviceError(w, r, &ErrInvalidID{Param: "id", Value: idStr})
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}

// respondView returns a writer for the (view, error) pair of a service call.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request) func(types.SessionView, error) {
	return func(view types.SessionView, err error) {
		if err != nil {
			s.serviceError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, view)
	}
}

// decode reads a JSON body into dst. Unknown fields are rejected.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// validationError converts validator output into an ErrValidation naming the
// first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ErrValidation{Field: fe.Namespace(), Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

func parseStep(raw string) (wizard.Step, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		step := wizard.Step(n)
		if !step.Valid() {
			return 0, fmt.Errorf("%w: %d", wizard.ErrInvalidStep, n)
		}
		return step, nil
	}
	if step, ok := wizard.StepByID(raw); ok {
		return step, nil
	}
	return 0, fmt.Errorf("%w: %q", wizard.ErrInvalidStep, raw)
}
