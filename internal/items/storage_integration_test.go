package items_test

import (
	"context"
	"errors"
	"testing"
	"time"

	internalitems "github.com/goliatone/go-content/internal/items"
	"github.com/goliatone/go-content/internal/migrations"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newBunDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	if err := migrations.Migrate(context.Background(), bunDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return bunDB
}

func TestItemService_WithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()
	bunDB := newBunDB(t)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	keySerializer := repocache.NewDefaultKeySerializer()

	repo := internalitems.NewBunItemRepositoryWithCache(bunDB, cacheService, keySerializer)
	svc := internalitems.NewService(repo)

	authorID := uuid.New()
	created, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site-intranet",
		Name:     "imprint",
		Kind:     items.KindDocument,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "Imprint", Body: "v1"},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if _, err := svc.GetItem(ctx, created.ItemID); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if _, err := svc.GetItem(ctx, created.ItemID); err != nil {
		t.Fatalf("cached get: %v", err)
	}

	current, err := svc.GetCurrent(ctx, created.ItemID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.ID != created.ID {
		t.Fatalf("expected current %s, got %s", created.ID, current.ID)
	}
}

func TestBunItemRepository_LifecycleRoundTrip(t *testing.T) {
	ctx := context.Background()
	bunDB := newBunDB(t)

	repo := internalitems.NewBunItemRepository(bunDB)
	svc := internalitems.NewService(repo)
	authorID := uuid.New()

	urlPath := "/imprint"
	first, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site-intranet",
		Name:     "imprint",
		Kind:     items.KindPage,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "Imprint", Body: "v1"},
		URLPath:  &urlPath,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	second, _, err := svc.Update(ctx, items.UpdateItemRequest{
		ItemID:   first.ItemID,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "Imprint", Body: "v2"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	history, err := svc.GetHistory(ctx, first.ItemID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(history))
	}

	current, err := svc.FindCurrentByPath(ctx, "site-intranet", urlPath)
	if err != nil {
		t.Fatalf("find current by path: %v", err)
	}
	if current == nil || current.ID != second.ID {
		t.Fatalf("expected current %s at %s, got %+v", second.ID, urlPath, current)
	}

	results, err := svc.Search(ctx, items.SearchRequest{Term: "V2"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != second.ID {
		t.Fatalf("expected one match for current body, got %d", len(results))
	}
	results, err = svc.Search(ctx, items.SearchRequest{Term: "v1"})
	if err != nil {
		t.Fatalf("search superseded: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("superseded body must not match, got %d results", len(results))
	}

	deleted, _, err := svc.Delete(ctx, items.DeleteItemRequest{ItemID: first.ItemID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to succeed")
	}

	count, err := bunDB.NewSelect().Model((*items.Version)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no versions after cascade, got %d", count)
	}
	count, err = bunDB.NewSelect().Model((*items.CurrentVersion)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count pointers: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no pointers after cascade, got %d", count)
	}
}

func TestBunItemRepository_HistoryTieBreaksByInsertion(t *testing.T) {
	ctx := context.Background()
	bunDB := newBunDB(t)

	// A frozen clock stores identical created-at timestamps; the per-item
	// position column must keep the history in insertion order.
	fixed := time.Unix(1700000000, 0).UTC()
	repo := internalitems.NewBunItemRepository(bunDB)
	svc := internalitems.NewService(repo,
		internalitems.WithClock(func() time.Time { return fixed }),
	)
	authorID := uuid.New()

	first, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site-intranet",
		Name:     "imprint",
		Kind:     items.KindDocument,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "Imprint", Body: "v1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, _, err := svc.Update(ctx, items.UpdateItemRequest{
		ItemID:   first.ItemID,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "Imprint", Body: "v2"},
	})
	if err != nil {
		t.Fatalf("second version: %v", err)
	}
	third, _, err := svc.Update(ctx, items.UpdateItemRequest{
		ItemID:   first.ItemID,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "Imprint", Body: "v3"},
	})
	if err != nil {
		t.Fatalf("third version: %v", err)
	}

	history, err := svc.GetHistory(ctx, first.ItemID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(history))
	}
	if history[0].ID != third.ID || history[1].ID != second.ID || history[2].ID != first.ID {
		t.Fatalf("expected insertion order [v3 v2 v1], got %s %s %s",
			history[0].ID, history[1].ID, history[2].ID)
	}
	if history[0].Position != 3 || history[2].Position != 1 {
		t.Fatalf("expected positions 3..1, got %d..%d", history[0].Position, history[2].Position)
	}
}

func TestBunItemRepository_UniqueNameEnforcedByIndex(t *testing.T) {
	ctx := context.Background()
	bunDB := newBunDB(t)

	repo := internalitems.NewBunItemRepository(bunDB)
	authorID := uuid.New()

	now := time.Now().UTC()
	makePair := func() (*items.Item, *items.Version) {
		item := &items.Item{
			ID:        uuid.New(),
			Scope:     "site-intranet",
			Name:      "imprint",
			Kind:      items.KindDocument,
			CreatedAt: now,
		}
		version := &items.Version{
			ID:        uuid.New(),
			ItemID:    item.ID,
			CreatedAt: now,
			CreatedBy: authorID,
			Title:     "Imprint",
			Body:      "v1",
		}
		return item, version
	}

	item, version := makePair()
	if err := repo.CreateWithVersion(ctx, item, version); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Bypass the service's advisory pre-check: the index itself must reject
	// the duplicate and the transaction must leave no partial rows behind.
	dupItem, dupVersion := makePair()
	err := repo.CreateWithVersion(ctx, dupItem, dupVersion)
	if !errors.Is(err, items.ErrStorageConstraint) {
		t.Fatalf("expected storage constraint error, got %v", err)
	}

	count, err := bunDB.NewSelect().Model((*items.Version)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if count != 1 {
		t.Fatalf("rolled-back create must leave one version, got %d", count)
	}
}

func TestBunItemRepository_DeleteBlockedByForeignKey(t *testing.T) {
	ctx := context.Background()
	bunDB := newBunDB(t)

	if _, err := bunDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := bunDB.ExecContext(ctx, `CREATE TABLE mount_points (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES content_items(id)
	)`); err != nil {
		t.Fatalf("create mount_points: %v", err)
	}

	repo := internalitems.NewBunItemRepository(bunDB)
	svc := internalitems.NewService(repo)
	authorID := uuid.New()

	first, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site-intranet",
		Name:     "imprint",
		Kind:     items.KindDocument,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "Imprint", Body: "v1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := bunDB.ExecContext(ctx,
		"INSERT INTO mount_points (id, item_id) VALUES (?, ?)",
		uuid.New().String(), first.ItemID.String(),
	); err != nil {
		t.Fatalf("insert mount point: %v", err)
	}

	deleted, event, err := svc.Delete(ctx, items.DeleteItemRequest{ItemID: first.ItemID})
	if err != nil {
		t.Fatalf("blocked delete must not error, got %v", err)
	}
	if deleted || event != nil {
		t.Fatalf("expected (false, nil) for blocked delete, got (%v, %+v)", deleted, event)
	}

	// Rollback leaves the whole aggregate intact, pointer included.
	current, err := svc.GetCurrent(ctx, first.ItemID)
	if err != nil {
		t.Fatalf("get current after blocked delete: %v", err)
	}
	if current.ID != first.ID {
		t.Fatalf("expected surviving version %s, got %s", first.ID, current.ID)
	}
}
