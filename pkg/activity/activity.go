package activity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event is the host-facing audit payload describing one domain action. String
// identifiers keep the type transport-friendly; consumers parse them into
// richer types when needed.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events. Implementations must be safe for concurrent
// use.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// Hooks is a convenience ordered collection of hooks.
type Hooks []Hook

// Config controls emitter behaviour.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter fans events out to registered hooks. A nil or disabled emitter drops
// events silently so call sites stay unconditional.
type Emitter struct {
	mu    sync.RWMutex
	hooks Hooks
	cfg   Config
}

// NewEmitter constructs an emitter over the supplied hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	return &Emitter{
		hooks: append(Hooks(nil), hooks...),
		cfg:   cfg,
	}
}

// Enabled reports whether the emitter delivers events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled
}

// AddHook registers an additional hook after construction.
func (e *Emitter) AddHook(hook Hook) {
	if e == nil || hook == nil {
		return
	}
	e.mu.Lock()
	e.hooks = append(e.hooks, hook)
	e.mu.Unlock()
}

// Emit delivers the event to every hook. Hook failures do not stop delivery to
// the remaining hooks; the joined error is returned for observability.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}

	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	e.mu.RLock()
	hooks := append(Hooks(nil), e.hooks...)
	e.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook records events in memory for tests and debugging.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify appends the event to the captured slice.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	h.Events = append(h.Events, event)
	h.mu.Unlock()
	return nil
}
