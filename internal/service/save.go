package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/worker-profile-wizard/internal/db"
	"github.com/jonathan/worker-profile-wizard/internal/events"
	"github.com/jonathan/worker-profile-wizard/internal/logging"
	"github.com/jonathan/worker-profile-wizard/internal/schemas"
	"github.com/jonathan/worker-profile-wizard/internal/session"
	"github.com/jonathan/worker-profile-wizard/internal/types"
	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

const persistTimeout = 5 * time.Second

// ProfileDocument is the serialized form of a saved profile. It is what the
// JSON Schema validates, what the database stores and what the
// profile.saved event carries.
type ProfileDocument struct {
	OwnerID        uuid.UUID      `json:"ownerId"`
	SessionID      uuid.UUID      `json:"sessionId"`
	CompletedSteps []int          `json:"completedSteps"`
	Progress       int            `json:"progress"`
	FormData       types.FormData `json:"formData"`
}

// NewProfileDocument builds the document for a session.
func NewProfileDocument(s *session.Session) ProfileDocument {
	return ProfileDocument{
		OwnerID:        s.OwnerID,
		SessionID:      s.ID,
		CompletedSteps: s.State.CompletedSteps.Ints(),
		Progress:       wizard.Progress(s.State.CompletedSteps),
		FormData:       s.State.FormData.Clone(),
	}
}

// Save validates the form and persists it. The loading state is stored for
// at least SaveDelay. Validation failures return *schemas.ValidationError and
// leave the session unsaved. profile.saved is published only once the
// repository has stored the profile.
func (w *WizardService) Save(ctx context.Context, ownerID, sessionID uuid.UUID) (types.SessionView, error) {
	start := w.now()

	unlock := w.locks.Lock(sessionID)
	defer unlock()

	s, err := w.load(ctx, ownerID, sessionID)
	if err != nil {
		return types.SessionView{}, err
	}

	if err := w.setLoading(ctx, s, true); err != nil {
		return types.SessionView{}, err
	}

	if err := w.save(ctx, s); err != nil {
		w.clearLoading(s)
		w.metrics.ObserveSave(w.now().Sub(start), failureReason(err))
		w.logger.Warn("profile save failed",
			zap.String(logging.FieldSessionID, sessionID.String()),
			zap.Error(err),
		)
		return types.SessionView{}, err
	}

	savedAt := w.now()
	s.SavedAt = &savedAt
	s.State.IsLoading = false
	if err := w.persist(ctx, s); err != nil {
		w.clearLoading(s)
		return types.SessionView{}, err
	}

	w.metrics.ObserveSave(w.now().Sub(start), "")
	w.logger.Info("profile saved",
		zap.String(logging.FieldSessionID, sessionID.String()),
		zap.String(logging.FieldOwnerID, ownerID.String()),
		zap.Int("progress", wizard.Progress(s.State.CompletedSteps)),
	)
	return View(s), nil
}

func (w *WizardService) save(ctx context.Context, s *session.Session) error {
	doc := NewProfileDocument(s)
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal profile document: %w", err)
	}

	// The commit delay and schema validation overlap; a rejected document
	// ends the wait early.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wait(gctx, w.saveDelay)
	})
	if w.validator != nil {
		g.Go(func() error {
			return w.validator.Validate(raw)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if w.profiles != nil {
		if err := w.profiles.SaveProfile(ctx, profileRecord(doc, raw, w.now())); err != nil {
			return err
		}
	}

	e := events.NewEvent(events.TypeProfileSaved, s.ID, s.OwnerID, w.now())
	e.Progress = doc.Progress
	e.Profile = raw
	w.publish(ctx, e)
	return nil
}

func profileRecord(doc ProfileDocument, raw []byte, savedAt time.Time) db.ProfileRecord {
	f := doc.FormData
	return db.ProfileRecord{
		OwnerID:         doc.OwnerID,
		SessionID:       doc.SessionID,
		Document:        raw,
		CompletedSteps:  doc.CompletedSteps,
		Progress:        doc.Progress,
		VisaType:        f.VisaType,
		Nationality:     f.Nationality,
		DesiredProvince: f.DesiredProvince,
		SavedAt:         savedAt,
	}
}

func failureReason(err error) string {
	var valErr *schemas.ValidationError
	switch {
	case errors.As(err, &valErr):
		return "validation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "persistence"
	}
}
