package events

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-content/internal/logging"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/interfaces"
)

// Option configures the emitter at construction time.
type Option func(*Emitter)

// WithLogger overrides the emitter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Emitter fans lifecycle events out to registered handlers synchronously, in
// registration order. Every handler sees every event; failures are collected
// and joined rather than short-circuiting delivery.
type Emitter struct {
	mu       sync.RWMutex
	handlers []interfaces.EventHandler
	logger   interfaces.Logger
}

var _ interfaces.EventEmitter = (*Emitter)(nil)
var _ interfaces.EventSubscriber = (*Emitter)(nil)

// New constructs an emitter with no subscribers.
func New(opts ...Option) *Emitter {
	e := &Emitter{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers a handler. Nil handlers are ignored.
func (e *Emitter) Subscribe(handler interfaces.EventHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// Emit delivers the event to every handler. The event describes an already
// committed mutation, so delivery continues past failing handlers.
func (e *Emitter) Emit(ctx context.Context, event *items.LifecycleEvent) error {
	if event == nil {
		return nil
	}

	e.mu.RLock()
	handlers := make([]interfaces.EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			e.logger.Error("event handler failed",
				"kind", event.Kind,
				"item_id", event.ItemID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
