package interfaces

import (
	"context"

	"github.com/goliatone/go-content/items"
)

// EventEmitter delivers lifecycle events to subscribers. Emit is invoked only
// after the originating storage transaction committed; a failing subscriber
// surfaces its error to the caller but cannot roll the operation back.
type EventEmitter interface {
	Emit(ctx context.Context, event *items.LifecycleEvent) error
}

// EventHandler consumes a single lifecycle event.
type EventHandler func(ctx context.Context, event *items.LifecycleEvent) error

// EventSubscriber registers handlers with an emitter implementation.
type EventSubscriber interface {
	Subscribe(handler EventHandler)
}
