package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/worker-profile-wizard/internal/db"
	"github.com/jonathan/worker-profile-wizard/internal/logging"
)

// Profile returns the last saved profile of owner.
func (w *WizardService) Profile(ctx context.Context, ownerID uuid.UUID) (*db.ProfileRecord, error) {
	if w.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	p, err := w.profiles.GetProfile(ctx, ownerID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// Revisions lists the save history of owner, newest first.
func (w *WizardService) Revisions(ctx context.Context, ownerID uuid.UUID, limit int) ([]db.Revision, error) {
	if w.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	revs, err := w.profiles.ListRevisions(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	if revs == nil {
		revs = []db.Revision{}
	}
	return revs, nil
}

// DeleteProfile removes the saved profile of owner with its history.
func (w *WizardService) DeleteProfile(ctx context.Context, ownerID uuid.UUID) error {
	if w.profiles == nil {
		return ErrProfilesDisabled
	}
	if err := w.profiles.DeleteProfile(ctx, ownerID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	w.logger.Info("profile deleted", zap.String(logging.FieldOwnerID, ownerID.String()))
	return nil
}
