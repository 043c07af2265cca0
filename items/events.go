package items

import (
	"time"

	"github.com/google/uuid"
)

// EventKind labels the lifecycle occurrence an event describes.
type EventKind string

const (
	EventItemCreated EventKind = "created"
	EventItemUpdated EventKind = "updated"
	EventItemDeleted EventKind = "deleted"
)

// LifecycleEvent is the value handed to subscribers after a lifecycle
// operation commits. It is ephemeral: produced once, never persisted, and
// carries just enough identifiers for subscribers to re-fetch state.
type LifecycleEvent struct {
	Kind        EventKind  `json:"kind"`
	OccurredAt  time.Time  `json:"occurred_at"`
	InitiatorID *uuid.UUID `json:"initiator_id,omitempty"`
	ItemID      uuid.UUID  `json:"item_id"`
	Scope       string     `json:"scope"`
	Name        string     `json:"name"`
	ItemKind    Kind       `json:"item_kind"`
	// VersionID identifies the new current version for created/updated
	// events. It is uuid.Nil for deletions.
	VersionID uuid.UUID `json:"version_id,omitempty"`
}

// LifecycleEventMessageType routes lifecycle events through the go-command
// dispatcher. All kinds share one message type; Kind discriminates.
const LifecycleEventMessageType = "content.item.lifecycle"

// Type implements command.Message so events can ride the go-command
// dispatcher.
func (e LifecycleEvent) Type() string { return LifecycleEventMessageType }

// Validate implements the go-command validation hook. Events are built from
// committed state, so there is nothing for subscribers to reject.
func (e LifecycleEvent) Validate() error { return nil }

// NewLifecycleEvent assembles an event from a committed item state. Callers
// outside the lifecycle service should have no reason to use it.
func NewLifecycleEvent(kind EventKind, item *Item, versionID uuid.UUID, initiator *uuid.UUID, occurredAt time.Time) *LifecycleEvent {
	ev := &LifecycleEvent{
		Kind:        kind,
		OccurredAt:  occurredAt,
		InitiatorID: initiator,
		VersionID:   versionID,
	}
	if item != nil {
		ev.ItemID = item.ID
		ev.Scope = item.Scope
		ev.Name = item.Name
		ev.ItemKind = item.Kind
	}
	return ev
}
