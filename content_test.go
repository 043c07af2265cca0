package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/internal/di"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/testsupport"
)

func newModule(t *testing.T, cfg content.Config, opts ...di.Option) *content.Module {
	t.Helper()

	module, err := content.New(cfg, opts...)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(module.Close)
	return module
}

func TestModuleLifecycleRoundTrip(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, content.DefaultConfig())
	svc := module.Items()

	authorID := uuid.New()
	first, createdEvent, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site:acme",
		Name:     "faq",
		Kind:     items.KindDocument,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "FAQ", Body: "v1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if createdEvent == nil || createdEvent.Kind != items.EventItemCreated {
		t.Fatalf("expected created event, got %+v", createdEvent)
	}

	current, err := svc.GetCurrent(ctx, first.ItemID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.ID != first.ID {
		t.Fatalf("expected current %s, got %s", first.ID, current.ID)
	}

	second, _, err := svc.Update(ctx, items.UpdateItemRequest{
		ItemID:   first.ItemID,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "FAQ", Body: "v2"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	history, err := svc.GetHistory(ctx, first.ItemID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("expected history [v2 v1], got %+v", history)
	}

	deleted, deletedEvent, err := svc.Delete(ctx, items.DeleteItemRequest{
		ItemID:      first.ItemID,
		InitiatorID: &authorID,
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted || deletedEvent == nil || deletedEvent.Kind != items.EventItemDeleted {
		t.Fatalf("expected deleted event, got (%v, %+v)", deleted, deletedEvent)
	}

	if _, err := svc.GetCurrent(ctx, first.ItemID); !items.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestModuleSubscribeObservesLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, content.DefaultConfig())

	var kinds []items.EventKind
	module.Subscribe(func(_ context.Context, event *items.LifecycleEvent) error {
		kinds = append(kinds, event.Kind)
		return nil
	})

	svc := module.Items()
	created, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site:acme",
		Name:     "faq",
		Kind:     items.KindDocument,
		AuthorID: uuid.New(),
		Payload:  items.VersionPayload{Title: "FAQ", Body: "v1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.Delete(ctx, items.DeleteItemRequest{ItemID: created.ItemID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []items.EventKind{items.EventItemCreated, items.EventItemDeleted}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(kinds))
	}
	for i, kind := range want {
		if kinds[i] != kind {
			t.Fatalf("event %d: expected %s, got %s", i, kind, kinds[i])
		}
	}
}

func TestModuleActivityTrail(t *testing.T) {
	ctx := context.Background()

	cfg := content.DefaultConfig()
	cfg.Features.Activity = true

	capture := &activity.CaptureHook{}
	module := newModule(t, cfg, di.WithActivityHooks(capture))

	svc := module.Items()
	created, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site:acme",
		Name:     "faq",
		Kind:     items.KindDocument,
		AuthorID: uuid.New(),
		Payload:  items.VersionPayload{Title: "FAQ", Body: "v1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.Update(ctx, items.UpdateItemRequest{
		ItemID:   created.ItemID,
		AuthorID: uuid.New(),
		Payload:  items.VersionPayload{Title: "FAQ", Body: "v2"},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected 2 activity events, got %d", len(capture.Events))
	}
	if capture.Events[0].Verb != "create" || capture.Events[1].Verb != "update" {
		t.Fatalf("unexpected verbs %q %q", capture.Events[0].Verb, capture.Events[1].Verb)
	}
}

func TestModuleWithBunStorage(t *testing.T) {
	ctx := context.Background()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	if err := content.Migrate(ctx, bunDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := content.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	module := newModule(t, cfg, di.WithBunDB(bunDB))

	svc := module.Items()
	if _, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site:acme",
		Name:     "faq",
		Kind:     items.KindDocument,
		AuthorID: uuid.New(),
		Payload:  items.VersionPayload{Title: "FAQ", Body: "v1"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := bunDB.NewSelect().Model((*items.Item)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one persisted item, got %d", count)
	}

	if err := content.ResetSchema(ctx, bunDB); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if _, err := bunDB.NewSelect().Model((*items.Item)(nil)).Count(ctx); err == nil {
		t.Fatal("expected select on dropped table to fail")
	}
}

func TestModuleDuplicateNameRejected(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, content.DefaultConfig())
	svc := module.Items()

	request := items.CreateItemRequest{
		Scope:    "site:acme",
		Name:     "faq",
		Kind:     items.KindDocument,
		AuthorID: uuid.New(),
		Payload:  items.VersionPayload{Title: "FAQ", Body: "v1"},
	}
	if _, _, err := svc.Create(ctx, request); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, _, err := svc.Create(ctx, request); !errors.Is(err, items.ErrNameExists) {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
}
