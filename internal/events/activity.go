package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/interfaces"
)

var lifecycleVerbs = map[items.EventKind]string{
	items.EventItemCreated: "create",
	items.EventItemUpdated: "update",
	items.EventItemDeleted: "delete",
}

// NewActivityHandler bridges lifecycle events into an activity emitter so
// committed mutations show up in the host's audit trail. Subscribe the
// returned handler on an event emitter; a nil or disabled activity emitter
// yields a no-op handler.
func NewActivityHandler(emitter *activity.Emitter) interfaces.EventHandler {
	return func(ctx context.Context, event *items.LifecycleEvent) error {
		if event == nil || !emitter.Enabled() {
			return nil
		}

		verb, ok := lifecycleVerbs[event.Kind]
		if !ok {
			return nil
		}

		actorID := ""
		if event.InitiatorID != nil && *event.InitiatorID != uuid.Nil {
			actorID = event.InitiatorID.String()
		}

		metadata := map[string]any{
			"scope": event.Scope,
			"name":  event.Name,
			"kind":  string(event.ItemKind),
		}
		if event.VersionID != uuid.Nil {
			metadata["version_id"] = event.VersionID.String()
		}

		return emitter.Emit(ctx, activity.Event{
			Verb:           verb,
			ActorID:        actorID,
			ObjectType:     "content_item",
			ObjectID:       event.ItemID.String(),
			DefinitionCode: "content_item:" + verb,
			Metadata:       metadata,
			OccurredAt:     event.OccurredAt,
		})
	}
}
