// Package events carries domain events between the stores and their
// listeners. Delivery is synchronous and in publish order: Publish returns only
// after every subscriber has handled the event.
package events

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type names a domain event.
type Type string

const (
	ModuleCompleted Type = "module.completed"
	ProfileUpdated  Type = "profile.updated"
	PasswordUpdated Type = "password.updated"
)

// Event is a single domain occurrence.
type Event struct {
	Type       Type      `json:"type"`
	ModuleID   string    `json:"module_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Normalize trims identifiers and stamps a missing timestamp.
func (e *Event) Normalize(now time.Time) {
	if e == nil {
		return
	}
	e.Type = Type(strings.TrimSpace(string(e.Type)))
	e.ModuleID = strings.TrimSpace(e.ModuleID)
	if e.OccurredAt.IsZero() {
		if now.IsZero() {
			now = time.Now()
		}
		e.OccurredAt = now.UTC()
	}
}

// Validate enforces the per-type payload requirements.
func (e Event) Validate() error {
	switch e.Type {
	case "":
		return errors.New("type is required")
	case ModuleCompleted:
		if e.ModuleID == "" {
			return errors.New("module_id is required for module.completed")
		}
	case ProfileUpdated, PasswordUpdated:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

// Processor consumes validated events.
type Processor interface {
	HandleEvent(Event) error
}

// ProcessorFunc adapts a function into a Processor.
type ProcessorFunc func(Event) error

// HandleEvent executes f(e).
func (f ProcessorFunc) HandleEvent(e Event) error {
	if f == nil {
		return nil
	}
	return f(e)
}

// Publisher is the narrow interface stores depend on.
type Publisher interface {
	Publish(Event) error
}
