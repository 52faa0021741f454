// Package service runs wizard sessions: it loads a session, applies reducer
// actions under a per-session lock, persists the result and emits events.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jonathan/worker-profile-wizard/internal/db"
	"github.com/jonathan/worker-profile-wizard/internal/events"
	"github.com/jonathan/worker-profile-wizard/internal/logging"
	"github.com/jonathan/worker-profile-wizard/internal/metrics"
	"github.com/jonathan/worker-profile-wizard/internal/session"
	"github.com/jonathan/worker-profile-wizard/internal/types"
	"github.com/jonathan/worker-profile-wizard/internal/uploads"
	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("wizard session not found")
	// ErrForbidden is returned when a caller touches another owner's session.
	ErrForbidden = errors.New("session belongs to another user")
	// ErrUploadsDisabled is returned when no object storage is configured.
	ErrUploadsDisabled = errors.New("file uploads are not configured")
	// ErrProfilesDisabled is returned when no database is configured.
	ErrProfilesDisabled = errors.New("profile storage is not configured")
	// ErrProfileNotFound is returned when the owner has never saved.
	ErrProfileNotFound = errors.New("saved profile not found")
)

// ProfileRepository persists saved profiles.
type ProfileRepository interface {
	SaveProfile(ctx context.Context, p db.ProfileRecord) error
	GetProfile(ctx context.Context, ownerID uuid.UUID) (*db.ProfileRecord, error)
	ListRevisions(ctx context.Context, ownerID uuid.UUID, limit int) ([]db.Revision, error)
	DeleteProfile(ctx context.Context, ownerID uuid.UUID) error
}

// DocumentValidator checks a serialized profile before it is stored.
type DocumentValidator interface {
	Validate(document []byte) error
}

// Dependencies wires the service to its backends. Store is required; every
// other backend is optional and the matching feature degrades when absent.
type Dependencies struct {
	Store     session.Store
	Profiles  ProfileRepository
	Validator DocumentValidator
	Uploader  uploads.Uploader
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Options tunes timing.
type Options struct {
	// StepCommitDelay is how long Next shows the loading state before committing.
	StepCommitDelay time.Duration
	// SaveDelay is how long Save shows the loading state before persisting.
	SaveDelay time.Duration
}

// WizardService coordinates wizard sessions. It is safe for concurrent use.
type WizardService struct {
	store     session.Store
	profiles  ProfileRepository
	validator DocumentValidator
	uploader  uploads.Uploader
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	stepDelay time.Duration
	saveDelay time.Duration
	now       func() time.Time

	locks keyedMutex
}

// New creates a WizardService.
func New(deps Dependencies, opts Options) (*WizardService, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &WizardService{
		store:     deps.Store,
		profiles:  deps.Profiles,
		validator: deps.Validator,
		uploader:  deps.Uploader,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger.With(zap.String("component", "wizard_service")),
		stepDelay: opts.StepCommitDelay,
		saveDelay: opts.SaveDelay,
		now:       time.Now,
		locks:     keyedMutex{entries: make(map[uuid.UUID]*lockEntry)},
	}, nil
}

// View builds the read model of a session.
func View(s *session.Session) types.SessionView {
	st := s.State
	var savedAt *time.Time
	if s.SavedAt != nil {
		t := *s.SavedAt
		savedAt = &t
	}
	return types.SessionView{
		SessionID:      s.ID,
		OwnerID:        s.OwnerID,
		CurrentStep:    int(st.CurrentStep),
		CompletedSteps: st.CompletedSteps.Ints(),
		IsLoading:      st.IsLoading,
		Progress:       wizard.Progress(st.CompletedSteps),
		NextLabel:      st.NextLabel(),
		Badges:         wizard.Badges(st.CompletedSteps, st.FormData),
		Steps:          wizard.Timeline(st),
		FormData:       st.FormData.Clone(),
		SavedAt:        savedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// load fetches a session and checks ownership.
func (w *WizardService) load(ctx context.Context, ownerID, sessionID uuid.UUID) (*session.Session, error) {
	s, err := w.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	if s.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return s, nil
}

func (w *WizardService) persist(ctx context.Context, s *session.Session) error {
	s.UpdatedAt = w.now()
	return w.store.Put(ctx, s)
}

// apply runs one reducer action against a locked session and stores the
// result. A rejected action leaves the stored session untouched.
func (w *WizardService) apply(ctx context.Context, ownerID, sessionID uuid.UUID, actions ...wizard.Action) (types.SessionView, error) {
	unlock := w.locks.Lock(sessionID)
	defer unlock()

	s, err := w.load(ctx, ownerID, sessionID)
	if err != nil {
		return types.SessionView{}, err
	}

	next := s.State
	for _, a := range actions {
		next, err = wizard.Reduce(next, a)
		w.metrics.RecordAction(a.Name(), err)
		if err != nil {
			w.logger.Debug("action rejected",
				zap.String(logging.FieldSessionID, sessionID.String()),
				zap.String(logging.FieldAction, a.Name()),
				zap.Error(err),
			)
			return types.SessionView{}, err
		}
	}

	s.State = next
	if err := w.persist(ctx, s); err != nil {
		return types.SessionView{}, err
	}
	return View(s), nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// publish sends an event. Delivery failures are logged and counted but never
// fail the calling operation.
func (w *WizardService) publish(ctx context.Context, e events.Event) {
	if err := w.publisher.Publish(ctx, e); err != nil {
		w.metrics.RecordEventFailure()
		w.logger.Warn("failed to publish event",
			zap.String("event_type", e.Type),
			zap.String(logging.FieldSessionID, e.SessionID.String()),
			zap.Error(err),
		)
	}
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per session id and drops it once no caller
// holds or waits for it.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

func (k *keyedMutex) Lock(id uuid.UUID) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[id]
	if !ok {
		e = &lockEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
