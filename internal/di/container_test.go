package di_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-content/internal/di"
	internalitems "github.com/goliatone/go-content/internal/items"
	"github.com/goliatone/go-content/internal/logging/gologger"
	"github.com/goliatone/go-content/internal/migrations"
	"github.com/goliatone/go-content/internal/runtimeconfig"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/interfaces"
	"github.com/goliatone/go-content/pkg/testsupport"
	urlkit "github.com/goliatone/go-urlkit"
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

func createItem(t *testing.T, svc items.Service, name string) *items.Version {
	t.Helper()

	version, _, err := svc.Create(context.Background(), items.CreateItemRequest{
		Scope:    "site-public",
		Name:     name,
		Kind:     items.KindDocument,
		AuthorID: uuid.New(),
		Payload:  items.VersionPayload{Title: "Imprint", Body: "body"},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return version
}

func TestNewContainer_DefaultsToMemoryStorage(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	if _, ok := container.Repository().(*internalitems.MemoryItemRepository); !ok {
		t.Fatalf("expected memory repository, got %T", container.Repository())
	}

	created := createItem(t, container.Items(), "imprint")
	current, err := container.Items().GetCurrent(context.Background(), created.ItemID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.ID != created.ID {
		t.Fatalf("expected current %s, got %s", created.ID, current.ID)
	}
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "oracle"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestNewContainer_SqliteDriverRequiresBunDB(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "sqlite"

	if _, err := di.NewContainer(cfg); !errors.Is(err, di.ErrBunDBRequired) {
		t.Fatalf("expected ErrBunDBRequired, got %v", err)
	}
}

func TestNewContainer_BunStoragePersistsItems(t *testing.T) {
	ctx := context.Background()
	bunDB := newBunDB(t)

	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Cache.Enabled = true

	container, err := di.NewContainer(cfg, di.WithBunDB(bunDB))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	created := createItem(t, container.Items(), "imprint")

	count, err := bunDB.NewSelect().Model((*items.Item)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one persisted item, got %d", count)
	}

	// Second read exercises the cached repository path.
	if _, err := container.Items().GetItem(ctx, created.ItemID); err != nil {
		t.Fatalf("get item: %v", err)
	}
	if _, err := container.Items().GetItem(ctx, created.ItemID); err != nil {
		t.Fatalf("cached get item: %v", err)
	}
}

func TestNewContainer_ActivityHookReceivesLifecycleEvents(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Activity = true

	capture := &activity.CaptureHook{}
	container, err := di.NewContainer(cfg, di.WithActivityHooks(capture))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	created := createItem(t, container.Items(), "imprint")

	if len(capture.Events) != 1 {
		t.Fatalf("expected one activity event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Verb != "create" {
		t.Fatalf("expected verb create, got %q", event.Verb)
	}
	if event.ObjectID != created.ItemID.String() {
		t.Fatalf("expected object %s, got %s", created.ItemID, event.ObjectID)
	}
	if event.Channel != "content" {
		t.Fatalf("expected default channel, got %q", event.Channel)
	}
}

func TestNewContainer_ActivityDisabledByDefault(t *testing.T) {
	capture := &activity.CaptureHook{}
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithActivityHooks(capture))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	createItem(t, container.Items(), "imprint")

	if len(capture.Events) != 0 {
		t.Fatalf("expected no activity events, got %d", len(capture.Events))
	}
}

func TestNewContainer_SelectsGologgerProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "debug"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected gologger provider, got %T", container.LoggerProvider())
	}
	if container.Logger("content.items") == nil {
		t.Fatal("expected module logger")
	}
}

func TestNewContainer_ConsoleProviderIsDefault(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.LoggerProvider() == nil {
		t.Fatal("expected console provider when logging feature is enabled")
	}
}

func TestNewContainer_LoggingDisabledLeavesProviderNil(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.LoggerProvider() != nil {
		t.Fatalf("expected nil provider, got %T", container.LoggerProvider())
	}
}

func TestNewContainer_BuildsLinkResolverFromRouteConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Links.RouteConfig = &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"document": "/documents/:name",
				},
			},
		},
	}
	cfg.Links.Resolver = runtimeconfig.LinkResolverConfig{
		DefaultGroup: "frontend",
		Routes:       map[string]string{"document": "document"},
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.Links() == nil {
		t.Fatal("expected link resolver")
	}

	created := createItem(t, container.Items(), "imprint")
	item, err := container.Items().GetItem(context.Background(), created.ItemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}

	url, err := container.Links().Resolve(context.Background(), item)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if url != "https://example.com/documents/imprint" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestNewContainer_MarkdownServiceImportsContentDir(t *testing.T) {
	dir := t.TempDir()
	source := "---\ntitle: About Us\nname: about\nkind: document\n---\n\n# About\n"
	if err := os.WriteFile(filepath.Join(dir, "about.md"), []byte(source), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = dir

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.Markdown() == nil {
		t.Fatal("expected markdown service")
	}

	result, err := container.Markdown().ImportDirectory(context.Background(), ".", interfaces.ImportOptions{
		Scope: "site-public",
	})
	if err != nil {
		t.Fatalf("import directory: %v", err)
	}
	if len(result.CreatedItemIDs) != 1 {
		t.Fatalf("expected one created item, got %d", len(result.CreatedItemIDs))
	}

	item, err := container.Items().FindByName(context.Background(), "site-public", "about")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if item == nil {
		t.Fatal("expected imported item")
	}
}

func TestNewContainer_MarkdownDisabledLeavesServiceNil(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.Markdown() != nil {
		t.Fatal("expected nil markdown service when disabled")
	}
}
