package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/commands"
	itemscmd "github.com/goliatone/go-content/internal/commands/items"
	"github.com/goliatone/go-content/internal/di"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	var (
		driver = flag.String("driver", "sqlite", "Storage driver: sqlite or postgres")
		dsn    = flag.String("dsn", "file::memory:?cache=shared", "Database DSN")
	)
	flag.Parse()

	if err := run(context.Background(), *driver, *dsn); err != nil {
		log.Fatalf("example: %v", err)
	}
}

func run(ctx context.Context, driver, dsn string) error {
	bunDB, err := openDatabase(driver, dsn)
	if err != nil {
		return err
	}
	defer bunDB.Close()

	if err := content.Migrate(ctx, bunDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	contentDir, cleanup, err := seedContentDir()
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := content.DefaultConfig()
	cfg.Storage.Driver = driver
	cfg.Cache.Enabled = true
	cfg.Features.Logger = true
	cfg.Features.Activity = true
	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = contentDir
	cfg.Links.RouteConfig = &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"document": "/documents/:name",
					"page":     "/pages/:path",
				},
			},
		},
	}
	cfg.Links.Resolver = content.LinkResolverConfig{
		DefaultGroup: "frontend",
		Routes: map[string]string{
			"document": "document",
			"page":     "page",
		},
		PathParam: "path",
	}

	trail := &activity.CaptureHook{}
	module, err := content.New(cfg, di.WithBunDB(bunDB), di.WithActivityHooks(trail))
	if err != nil {
		return fmt.Errorf("new module: %w", err)
	}
	defer module.Close()

	svc := module.Items()
	authorID := uuid.New()

	fmt.Println("== lifecycle ==")
	first, _, err := svc.Create(ctx, items.CreateItemRequest{
		Scope:    "site:acme",
		Name:     "faq",
		Kind:     items.KindDocument,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "FAQ", Body: "First answer."},
	})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	fmt.Printf("created %s version %s\n", first.ItemID, first.ID)

	second, _, err := svc.Update(ctx, items.UpdateItemRequest{
		ItemID:   first.ItemID,
		AuthorID: authorID,
		Payload:  items.VersionPayload{Title: "FAQ", Body: "Better answer."},
	})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	fmt.Printf("updated to version %s\n", second.ID)

	history, err := svc.GetHistory(ctx, first.ItemID)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	fmt.Printf("history entries: %d (newest %s)\n", len(history), history[0].ID)

	if _, err := svc.Publish(ctx, first.ItemID); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	results, err := svc.Search(ctx, items.SearchRequest{Term: "better"})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	fmt.Printf("search hits for %q: %d\n", "better", len(results))

	item, err := svc.GetItem(ctx, first.ItemID)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	url, err := module.ResolveURL(ctx, item)
	if err != nil {
		return fmt.Errorf("resolve url: %w", err)
	}
	fmt.Printf("public url: %s\n", url)

	fmt.Println("\n== markdown import ==")
	result, err := module.Markdown().ImportDirectory(ctx, ".", interfaces.ImportOptions{
		Scope:    "site:acme",
		AuthorID: authorID,
	})
	if err != nil {
		return fmt.Errorf("import directory: %w", err)
	}
	fmt.Printf("imported: created=%d updated=%d skipped=%d\n",
		len(result.CreatedItemIDs), len(result.UpdatedItemIDs), result.Skipped)

	fmt.Println("\n== commands ==")
	collector := &commandCollector{}
	registration, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
		Registry: collector,
	})
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	fmt.Printf("registered handlers: %d\n", len(registration.Handlers))

	for _, handler := range registration.Handlers {
		if create, ok := handler.(*itemscmd.CreateItemHandler); ok {
			sub := dispatcher.SubscribeCommand(create)
			defer sub.Unsubscribe()
		}
	}
	if err := dispatcher.Dispatch(ctx, itemscmd.CreateItemCommand{
		Scope:    "site:acme",
		Name:     "release-notes",
		Kind:     "document",
		AuthorID: authorID,
		Title:    "Release Notes",
		Body:     "Initial release.",
	}); err != nil {
		return fmt.Errorf("dispatch create: %w", err)
	}
	dispatched, err := svc.FindByName(ctx, "site:acme", "release-notes")
	if err != nil {
		return fmt.Errorf("find dispatched item: %w", err)
	}
	fmt.Printf("dispatched create persisted item %s\n", dispatched.ID)

	fmt.Println("\n== activity trail ==")
	for _, event := range trail.Events {
		fmt.Printf("%s %s %s\n", event.OccurredAt.Format("15:04:05"), event.Verb, event.ObjectID)
	}

	return nil
}

// commandCollector records handlers so the host can expose them over CLI or cron.
type commandCollector struct {
	handlers []any
}

func (c *commandCollector) RegisterCommand(handler any) error {
	c.handlers = append(c.handlers, handler)
	return nil
}

func openDatabase(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

func seedContentDir() (string, func(), error) {
	dir, err := os.MkdirTemp("", "content-example-*")
	if err != nil {
		return "", nil, fmt.Errorf("temp content dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	source := "---\ntitle: About Us\nname: about\nkind: document\n---\n\n# About\n\nWe run events.\n"
	if err := os.WriteFile(filepath.Join(dir, "about.md"), []byte(source), 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("seed content: %w", err)
	}
	return dir, cleanup, nil
}
