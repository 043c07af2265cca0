package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-content/internal/events"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/activity"
)

func TestActivityHandlerMapsLifecycleEvent(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{
		Enabled: true,
		Channel: "content",
	})

	bus := events.New()
	bus.Subscribe(events.NewActivityHandler(emitter))

	actor := uuid.New()
	event := &items.LifecycleEvent{
		Kind:        items.EventItemUpdated,
		OccurredAt:  time.Unix(1700000000, 0).UTC(),
		InitiatorID: &actor,
		ItemID:      uuid.New(),
		Scope:       "site-public",
		Name:        "imprint",
		ItemKind:    items.KindDocument,
		VersionID:   uuid.New(),
	}

	if err := bus.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(hook.Events) != 1 {
		t.Fatalf("expected 1 activity event, got %d", len(hook.Events))
	}
	got := hook.Events[0]
	if got.Verb != "update" {
		t.Fatalf("expected verb update got %q", got.Verb)
	}
	if got.ActorID != actor.String() {
		t.Fatalf("expected actor %s got %s", actor, got.ActorID)
	}
	if got.ObjectType != "content_item" || got.ObjectID != event.ItemID.String() {
		t.Fatalf("unexpected object fields: %s %s", got.ObjectType, got.ObjectID)
	}
	if got.Channel != "content" {
		t.Fatalf("expected channel content got %q", got.Channel)
	}
	if got.DefinitionCode != "content_item:update" {
		t.Fatalf("expected definition code got %q", got.DefinitionCode)
	}
	if got.Metadata["scope"] != "site-public" || got.Metadata["name"] != "imprint" {
		t.Fatalf("unexpected metadata: %#v", got.Metadata)
	}
	if got.Metadata["version_id"] != event.VersionID.String() {
		t.Fatalf("expected version metadata, got %#v", got.Metadata)
	}
	if !got.OccurredAt.Equal(event.OccurredAt) {
		t.Fatalf("expected occurred_at preserved, got %v", got.OccurredAt)
	}
}

func TestActivityHandlerDisabledEmitterIsNoOp(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{})

	handler := events.NewActivityHandler(emitter)
	if err := handler(context.Background(), testEvent(items.EventItemCreated)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(hook.Events) != 0 {
		t.Fatalf("disabled emitter must drop events, got %d", len(hook.Events))
	}
}

func TestActivityHandlerDeleteCarriesNoVersion(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{Enabled: true})

	handler := events.NewActivityHandler(emitter)
	event := testEvent(items.EventItemDeleted)

	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(hook.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(hook.Events))
	}
	if _, ok := hook.Events[0].Metadata["version_id"]; ok {
		t.Fatalf("delete events must not carry a version id: %#v", hook.Events[0].Metadata)
	}
	if hook.Events[0].Verb != "delete" {
		t.Fatalf("expected verb delete got %q", hook.Events[0].Verb)
	}
}
