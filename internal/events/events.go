// Package events publishes wizard lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeSessionStarted = "session.started"
	TypeStepCompleted  = "step.completed"
	TypeProfileSaved   = "profile.saved"
)

// Event is the payload written to the events topic.
type Event struct {
	ID         uuid.UUID       `json:"message_id"`
	Type       string          `json:"type"`
	SessionID  uuid.UUID       `json:"session_id"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	Step       string          `json:"step,omitempty"`
	Progress   int             `json:"progress"`
	OccurredAt time.Time       `json:"occurred_at"`
	Profile    json.RawMessage `json:"profile,omitempty"`
}

// NewEvent fills in the message id and timestamp.
func NewEvent(typ string, sessionID, ownerID uuid.UUID, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		SessionID:  sessionID,
		OwnerID:    ownerID,
		OccurredAt: now.UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
