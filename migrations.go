package content

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-content/internal/migrations"
)

// Migrate creates the content tables and indexes on the supplied database.
// It is idempotent, so hosts can run it at every startup before New.
func Migrate(ctx context.Context, db *bun.DB) error {
	return migrations.Migrate(ctx, db)
}

// ResetSchema drops every content table. Intended for tests and throwaway
// environments.
func ResetSchema(ctx context.Context, db *bun.DB) error {
	return migrations.Reset(ctx, db)
}
