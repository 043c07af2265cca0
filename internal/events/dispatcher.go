package events

import (
	"context"

	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// DispatcherEmitter forwards lifecycle events onto the go-command dispatcher
// so host applications can consume them alongside their own commands. At
// least one subscriber must be registered before the first Emit.
type DispatcherEmitter struct{}

var _ interfaces.EventEmitter = DispatcherEmitter{}

// NewDispatcherEmitter constructs the dispatcher-backed emitter.
func NewDispatcherEmitter() DispatcherEmitter {
	return DispatcherEmitter{}
}

// Emit dispatches the event under its lifecycle message type.
func (DispatcherEmitter) Emit(ctx context.Context, event *items.LifecycleEvent) error {
	if event == nil {
		return nil
	}
	return dispatcher.Dispatch(ctx, event)
}

// lifecycleCommander adapts an EventHandler to go-command's Commander shape.
type lifecycleCommander struct {
	handler interfaces.EventHandler
}

func (c lifecycleCommander) Execute(ctx context.Context, event *items.LifecycleEvent) error {
	return c.handler(ctx, event)
}

// Subscription detaches a dispatcher-registered handler.
type Subscription interface {
	Unsubscribe()
}

// SubscribeDispatcher registers a handler for lifecycle events dispatched via
// the go-command dispatcher. The returned subscription detaches the handler.
func SubscribeDispatcher(handler interfaces.EventHandler, opts ...runner.Option) Subscription {
	return dispatcher.SubscribeCommand(lifecycleCommander{handler: handler}, opts...)
}
