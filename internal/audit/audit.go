// Package audit captures the screening audit trail. Events are
// transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"
)

// Action names the audited operation.
type Action string

const (
	ActionScreeningStarted   Action = "screening.started"
	ActionScreeningCompleted Action = "screening.completed"
	ActionScreeningFailed    Action = "screening.failed"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp      time.Time `json:"timestamp"`
	Action         Action    `json:"action"`
	RunID          string    `json:"run_id"`
	RegistrationID string    `json:"registration_id"`
	CallerID       string    `json:"caller_id,omitempty"`
	Outcome        string    `json:"outcome,omitempty"`
	Detail         string    `json:"detail,omitempty"`
}

// Store persists audit events. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCompany(ctx context.Context, registrationID string) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// store layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	return p.store.Append(ctx, base)
}

func (p *Publisher) List(ctx context.Context, registrationID string) ([]Event, error) {
	return p.store.ListByCompany(ctx, registrationID)
}
