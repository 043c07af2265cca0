package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-content/items"
)

// indexStatements are the DDL statements bun's model-driven CreateTable does
// not cover. SQLite and Postgres both accept this syntax.
var indexStatements = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_content_items_scope_name_unique ON content_items(scope, name)",
	"CREATE INDEX IF NOT EXISTS idx_content_items_scope_url_path ON content_items(scope, url_path)",
	"CREATE INDEX IF NOT EXISTS idx_content_item_versions_item_id ON content_item_versions(item_id)",
}

// models lists every bun model owned by the module, in creation order.
func models() []any {
	return []any{
		(*items.Item)(nil),
		(*items.Version)(nil),
		(*items.CurrentVersion)(nil),
	}
}

// Migrate creates the content tables and supporting indexes when missing. It
// is idempotent and safe to run at every startup.
func Migrate(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: bun db is required")
	}

	for _, model := range models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("migrations: create table %T: %w", model, err)
		}
	}

	for _, stmt := range indexStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrations: %s: %w", stmt, err)
		}
	}

	return nil
}

// Reset drops every content table, children first. Intended for tests and
// throwaway environments.
func Reset(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: bun db is required")
	}

	drops := []any{
		(*items.CurrentVersion)(nil),
		(*items.Version)(nil),
		(*items.Item)(nil),
	}
	for _, model := range drops {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("migrations: drop table %T: %w", model, err)
		}
	}
	return nil
}
