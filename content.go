package content

import (
	"context"

	"github.com/goliatone/go-content/internal/di"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/interfaces"
)

// ItemService exports the item lifecycle contract for consumers of the
// content package.
type ItemService = items.Service

// Item exports the content item record.
type Item = items.Item

// Version exports the immutable version record.
type Version = items.Version

// VersionPayload exports the author-editable version fields.
type VersionPayload = items.VersionPayload

// Kind exports the item kind enumeration.
type Kind = items.Kind

// LifecycleEvent exports the event payload emitted after mutations.
type LifecycleEvent = items.LifecycleEvent

// MarkdownService exports the filesystem ingestion contract.
type MarkdownService = interfaces.MarkdownService

// ActivityEmitter exports the audit-trail emitter.
type ActivityEmitter = activity.Emitter

// Module is the top level runtime façade over the content services.
type Module struct {
	container *di.Container
}

// New constructs a content module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}

// Items returns the configured item lifecycle service.
func (m *Module) Items() ItemService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Items()
}

// Markdown returns the markdown service when configured.
func (m *Module) Markdown() MarkdownService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Markdown()
}

// Activity returns the audit-trail emitter.
func (m *Module) Activity() *ActivityEmitter {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Activity()
}

// Emitter returns the lifecycle event emitter wired into the item service.
func (m *Module) Emitter() interfaces.EventEmitter {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Emitter()
}

// Subscribe registers a handler on the in-process event bus. Handlers see
// events only when the module uses the fan-out emitter, not the dispatcher.
func (m *Module) Subscribe(handler interfaces.EventHandler) {
	if m == nil || m.container == nil || m.container.Events() == nil {
		return
	}
	m.container.Events().Subscribe(handler)
}

// ResolveURL builds the public URL for an item. It returns an empty string
// when no link routing was configured.
func (m *Module) ResolveURL(ctx context.Context, item *Item) (string, error) {
	if m == nil || m.container == nil || m.container.Links() == nil {
		return "", nil
	}
	return m.container.Links().Resolve(ctx, item)
}

// Logger returns a module-scoped logger backed by the configured provider.
func (m *Module) Logger(module string) interfaces.Logger {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Logger(module)
}

// Close releases event subscriptions held by the module.
func (m *Module) Close() {
	if m == nil || m.container == nil {
		return
	}
	m.container.Close()
}
