// Package session stores wizard sessions between HTTP requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

// Common store errors.
var (
	ErrNotFound    = errors.New("session not found")
	ErrStoreClosed = errors.New("session store is closed")
)

// Session is one worker's pass through the wizard.
type Session struct {
	ID        uuid.UUID    `json:"id"`
	OwnerID   uuid.UUID    `json:"owner_id"`
	State     wizard.State `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	SavedAt   *time.Time   `json:"saved_at,omitempty"`
}

// New creates a session for owner positioned on the first step.
func New(ownerID uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		State:     wizard.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	out := *s
	out.State = s.State.Clone()
	if s.SavedAt != nil {
		t := *s.SavedAt
		out.SavedAt = &t
	}
	return &out
}

// Store is the interface for session storage backends.
type Store interface {
	// Get returns the session with the given id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// Put stores the session, refreshing its TTL.
	Put(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases backend resources.
	Close() error
}

// StoreError wraps a backend failure with the operation that caused it.
type StoreError struct {
	Op        string
	SessionID uuid.UUID
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session %s %s: %v", e.Op, e.SessionID, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
