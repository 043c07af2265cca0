package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-content/internal/events"
	"github.com/goliatone/go-content/items"
	"github.com/google/uuid"
)

func testEvent(kind items.EventKind) *items.LifecycleEvent {
	return &items.LifecycleEvent{
		Kind:       kind,
		OccurredAt: time.Unix(1700000000, 0).UTC(),
		ItemID:     uuid.New(),
		Scope:      "site-intranet",
		Name:       "imprint",
		ItemKind:   items.KindDocument,
	}
}

func TestEmitterFansOutInOrder(t *testing.T) {
	emitter := events.New()

	var order []string
	emitter.Subscribe(func(_ context.Context, event *items.LifecycleEvent) error {
		order = append(order, "first:"+string(event.Kind))
		return nil
	})
	emitter.Subscribe(func(_ context.Context, event *items.LifecycleEvent) error {
		order = append(order, "second:"+string(event.Kind))
		return nil
	})

	if err := emitter.Emit(context.Background(), testEvent(items.EventItemCreated)); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(order) != 2 || order[0] != "first:created" || order[1] != "second:created" {
		t.Fatalf("expected ordered delivery, got %v", order)
	}
}

func TestEmitterContinuesPastFailingHandler(t *testing.T) {
	emitter := events.New()

	failure := errors.New("handler down")
	emitter.Subscribe(func(context.Context, *items.LifecycleEvent) error {
		return failure
	})

	delivered := 0
	emitter.Subscribe(func(context.Context, *items.LifecycleEvent) error {
		delivered++
		return nil
	})

	err := emitter.Emit(context.Background(), testEvent(items.EventItemUpdated))
	if !errors.Is(err, failure) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if delivered != 1 {
		t.Fatalf("later handler must still run, delivered=%d", delivered)
	}
}

func TestEmitterIgnoresNilInput(t *testing.T) {
	emitter := events.New()
	emitter.Subscribe(nil)

	called := false
	emitter.Subscribe(func(context.Context, *items.LifecycleEvent) error {
		called = true
		return nil
	})

	if err := emitter.Emit(context.Background(), nil); err != nil {
		t.Fatalf("emit nil event: %v", err)
	}
	if called {
		t.Fatal("nil event must not be delivered")
	}
}

func TestDispatcherEmitterRoundTrip(t *testing.T) {
	received := make(chan *items.LifecycleEvent, 1)
	sub := events.SubscribeDispatcher(func(_ context.Context, event *items.LifecycleEvent) error {
		received <- event
		return nil
	})
	t.Cleanup(sub.Unsubscribe)

	emitter := events.NewDispatcherEmitter()
	sent := testEvent(items.EventItemDeleted)
	if err := emitter.Emit(context.Background(), sent); err != nil {
		t.Fatalf("dispatch emit: %v", err)
	}

	select {
	case got := <-received:
		if got.ItemID != sent.ItemID || got.Kind != items.EventItemDeleted {
			t.Fatalf("expected dispatched event %+v, got %+v", sent, got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected dispatched event to reach subscriber")
	}
}
