// Package events publishes ledger change notifications after commits.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"workledger/pkg/domain"
)

// Event describes one committed record mutation.
type Event struct {
	Type       string            `json:"type"`
	WorkID     string            `json:"workId,omitempty"`
	Entity     domain.EntityType `json:"entity"`
	Action     domain.Action     `json:"action"`
	EntityID   string            `json:"entityId"`
	Version    uint64            `json:"version"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// TypeOf returns the event type and routing key for an entity mutation.
func TypeOf(entity domain.EntityType, action domain.Action) string {
	return fmt.Sprintf("workledger.%s.%s", entity, action)
}

// FromChange builds the event for a committed change.
func FromChange(c domain.Change, version uint64, at time.Time) Event {
	id, workID := domain.ChangeRef(c)
	return Event{
		Type:       TypeOf(c.Entity, c.Action),
		WorkID:     workID,
		Entity:     c.Entity,
		Action:     c.Action,
		EntityID:   id,
		Version:    version,
		OccurredAt: at,
	}
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Publish appends event. Publishing after Close fails.
func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recorder closed")
	}
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}
