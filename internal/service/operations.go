package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/worker-profile-wizard/internal/events"
	"github.com/jonathan/worker-profile-wizard/internal/logging"
	"github.com/jonathan/worker-profile-wizard/internal/session"
	"github.com/jonathan/worker-profile-wizard/internal/types"
	"github.com/jonathan/worker-profile-wizard/internal/uploads"
	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

// Start opens a new session for owner on the first step.
func (w *WizardService) Start(ctx context.Context, ownerID uuid.UUID) (types.SessionView, error) {
	s := session.New(ownerID, w.now())
	if err := w.store.Put(ctx, s); err != nil {
		return types.SessionView{}, err
	}

	w.metrics.RecordSessionStarted()
	w.logger.Info("wizard session started",
		zap.String(logging.FieldSessionID, s.ID.String()),
		zap.String(logging.FieldOwnerID, ownerID.String()),
	)
	w.publish(ctx, events.NewEvent(events.TypeSessionStarted, s.ID, ownerID, w.now()))
	return View(s), nil
}

// Get returns the current view of a session. It does not take the session
// lock, so callers observe the loading state of an in-flight Next or Save.
func (w *WizardService) Get(ctx context.Context, ownerID, sessionID uuid.UUID) (types.SessionView, error) {
	s, err := w.load(ctx, ownerID, sessionID)
	if err != nil {
		return types.SessionView{}, err
	}
	return View(s), nil
}

// Next marks the current step completed and advances. The loading state is
// stored and visible for StepCommitDelay before the commit.
func (w *WizardService) Next(ctx context.Context, ownerID, sessionID uuid.UUID) (types.SessionView, error) {
	unlock := w.locks.Lock(sessionID)
	defer unlock()

	s, err := w.load(ctx, ownerID, sessionID)
	if err != nil {
		return types.SessionView{}, err
	}

	if err := w.setLoading(ctx, s, true); err != nil {
		return types.SessionView{}, err
	}
	if err := wait(ctx, w.stepDelay); err != nil {
		w.clearLoading(s)
		return types.SessionView{}, err
	}

	prev := s.State
	committed := prev.CurrentStep
	next, err := wizard.Reduce(prev, wizard.Next{})
	w.metrics.RecordAction(wizard.Next{}.Name(), err)
	if err != nil {
		w.clearLoading(s)
		return types.SessionView{}, err
	}
	next.IsLoading = false
	s.State = next
	if err := w.persist(ctx, s); err != nil {
		s.State = prev
		w.clearLoading(s)
		return types.SessionView{}, err
	}

	w.metrics.RecordStepCompleted(committed.String())
	w.logger.Info("step completed",
		zap.String(logging.FieldSessionID, sessionID.String()),
		zap.String(logging.FieldStep, committed.String()),
		zap.Int("progress", wizard.Progress(next.CompletedSteps)),
	)

	e := events.NewEvent(events.TypeStepCompleted, s.ID, s.OwnerID, w.now())
	e.Step = committed.String()
	e.Progress = wizard.Progress(next.CompletedSteps)
	w.publish(ctx, e)

	return View(s), nil
}

// Prev moves back one step.
func (w *WizardService) Prev(ctx context.Context, ownerID, sessionID uuid.UUID) (types.SessionView, error) {
	return w.apply(ctx, ownerID, sessionID, wizard.Prev{})
}

// GoTo jumps to a completed step.
func (w *WizardService) GoTo(ctx context.Context, ownerID, sessionID uuid.UUID, step wizard.Step) (types.SessionView, error) {
	return w.apply(ctx, ownerID, sessionID, wizard.GoTo{Step: step})
}

// UpdateFields applies field updates in order. Either all of them are stored
// or, when one is rejected, none.
func (w *WizardService) UpdateFields(ctx context.Context, ownerID, sessionID uuid.UUID, updates []types.UpdateFieldRequest) (types.SessionView, error) {
	actions := make([]wizard.Action, len(updates))
	for i, u := range updates {
		actions[i] = wizard.UpdateField{Field: u.Field, Value: u.Value}
	}
	return w.apply(ctx, ownerID, sessionID, actions...)
}

// ReplaceExperiences replaces the experience list. Entries without an id are
// given one.
func (w *WizardService) ReplaceExperiences(ctx context.Context, ownerID, sessionID uuid.UUID, inputs []types.ExperienceInput) (types.SessionView, error) {
	entries := make([]types.ExperienceEntry, len(inputs))
	for i, in := range inputs {
		entries[i] = in.ToEntry()
	}
	return w.apply(ctx, ownerID, sessionID, wizard.UpdateExperiences{Entries: wizard.AssignIDs(entries)})
}

// AddExperience appends one entry with a fresh id unless the input carries one.
func (w *WizardService) AddExperience(ctx context.Context, ownerID, sessionID uuid.UUID, input types.ExperienceInput) (types.SessionView, error) {
	entry := wizard.AssignIDs([]types.ExperienceEntry{input.ToEntry()})[0]
	return w.apply(ctx, ownerID, sessionID, wizard.AddExperience{Entry: entry})
}

// RemoveExperience deletes one entry by id.
func (w *WizardService) RemoveExperience(ctx context.Context, ownerID, sessionID, entryID uuid.UUID) (types.SessionView, error) {
	return w.apply(ctx, ownerID, sessionID, wizard.RemoveExperience{ID: entryID})
}

// ToggleWorkDay flips one desired work day.
func (w *WizardService) ToggleWorkDay(ctx context.Context, ownerID, sessionID uuid.UUID, day string) (types.SessionView, error) {
	return w.apply(ctx, ownerID, sessionID, wizard.ToggleWorkDay{Day: day})
}

// PresignUpload issues an upload URL for an attachment and records the object
// key in the matching form field.
func (w *WizardService) PresignUpload(ctx context.Context, ownerID, sessionID uuid.UUID, kind uploads.Kind, fileName, contentType string) (types.UploadResponse, error) {
	if w.uploader == nil {
		return types.UploadResponse{}, ErrUploadsDisabled
	}

	unlock := w.locks.Lock(sessionID)
	defer unlock()

	s, err := w.load(ctx, ownerID, sessionID)
	if err != nil {
		return types.UploadResponse{}, err
	}

	up, err := w.uploader.Presign(ctx, uploads.Request{
		OwnerID:     ownerID,
		SessionID:   sessionID,
		Kind:        kind,
		FileName:    fileName,
		ContentType: contentType,
	})
	if err != nil {
		return types.UploadResponse{}, err
	}

	act := wizard.UpdateField{Field: kind.Field(), Value: up.ObjectKey}
	next, err := wizard.Reduce(s.State, act)
	w.metrics.RecordAction(act.Name(), err)
	if err != nil {
		return types.UploadResponse{}, fmt.Errorf("record upload key: %w", err)
	}
	s.State = next
	if err := w.persist(ctx, s); err != nil {
		return types.UploadResponse{}, err
	}

	w.metrics.RecordUpload(string(kind))
	return types.UploadResponse{
		Field:     kind.Field(),
		ObjectKey: up.ObjectKey,
		UploadURL: up.URL,
		ExpiresAt: up.ExpiresAt,
	}, nil
}

func (w *WizardService) setLoading(ctx context.Context, s *session.Session, loading bool) error {
	next, err := wizard.Reduce(s.State, wizard.SetLoading{Loading: loading})
	if err != nil {
		return err
	}
	s.State = next
	return w.persist(ctx, s)
}

// clearLoading drops the loading flag after an aborted operation. The request
// context may already be done, so a detached one is used.
func (w *WizardService) clearLoading(s *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := w.setLoading(ctx, s, false); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("failed to clear loading state",
			zap.String(logging.FieldSessionID, s.ID.String()),
			zap.Error(err),
		)
	}
}
