package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-content/items"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunItemRepository persists items through bun. Composite mutations run in a
// single transaction so the current pointer can never outlive or predate the
// rows it references.
type BunItemRepository struct {
	db       *bun.DB
	items    repository.Repository[*items.Item]
	versions repository.Repository[*items.Version]
	current  repository.Repository[*items.CurrentVersion]
}

func NewBunItemRepository(db *bun.DB) *BunItemRepository {
	return NewBunItemRepositoryWithCache(db, nil, nil)
}

// NewBunItemRepositoryWithCache constructs the repository with optional read
// caching on item lookups.
func NewBunItemRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunItemRepository {
	return &BunItemRepository{
		db:       db,
		items:    wrapWithCache(NewItemRepository(db), cacheService, keySerializer),
		versions: NewVersionRepository(db),
		current:  NewCurrentVersionRepository(db),
	}
}

func (r *BunItemRepository) CreateWithVersion(ctx context.Context, item *items.Item, version *items.Version) error {
	if r.db == nil {
		return fmt.Errorf("item repository: database not configured")
	}

	version.Position = 1
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(item).Exec(ctx); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
			return fmt.Errorf("insert item version: %w", err)
		}
		pointer := &items.CurrentVersion{ItemID: item.ID, VersionID: version.ID}
		if _, err := tx.NewInsert().Model(pointer).Exec(ctx); err != nil {
			return fmt.Errorf("insert current pointer: %w", err)
		}
		return nil
	})
	if constraint := classifyConstraint("create", err); constraint != nil {
		return constraint
	}
	return err
}

func (r *BunItemRepository) AppendVersion(ctx context.Context, item *items.Item, version *items.Version) error {
	if r.db == nil {
		return fmt.Errorf("item repository: database not configured")
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// The position is assigned inside the transaction so history keeps
		// insertion order even when created-at timestamps collide.
		if _, err := tx.NewInsert().
			Model(version).
			Value("position", "(SELECT coalesce(max(position), 0) + 1 FROM content_item_versions WHERE item_id = ?)", version.ItemID).
			Exec(ctx); err != nil {
			return fmt.Errorf("insert item version: %w", err)
		}

		result, err := tx.NewUpdate().
			Model((*items.CurrentVersion)(nil)).
			Set("version_id = ?", version.ID).
			Where("?TableAlias.item_id = ?", item.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("repoint current version: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("repoint rows affected: %w", err)
		}
		if affected == 0 {
			return &items.InvariantViolationError{
				ItemID:    item.ID,
				VersionID: version.ID,
				Message:   "live item has no current pointer to repoint",
			}
		}

		if _, err := tx.NewUpdate().
			Model(item).
			Column("language_code", "url_path").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update item metadata: %w", err)
		}
		return nil
	})
	if constraint := classifyConstraint("update", err); constraint != nil {
		return constraint
	}
	return err
}

func (r *BunItemRepository) DeleteCascade(ctx context.Context, itemID uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("item repository: database not configured")
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*items.CurrentVersion)(nil)).
			Where("?TableAlias.item_id = ?", itemID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete current pointer: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*items.Version)(nil)).
			Where("?TableAlias.item_id = ?", itemID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete item versions: %w", err)
		}

		result, err := tx.NewDelete().
			Model((*items.Item)(nil)).
			Where("?TableAlias.id = ?", itemID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("item delete rows affected: %w", err)
		}
		if affected == 0 {
			return &items.ItemNotFoundError{ID: itemID}
		}
		return nil
	})
	if constraint := classifyConstraint("delete", err); constraint != nil {
		return constraint
	}
	return err
}

func (r *BunItemRepository) GetItem(ctx context.Context, id uuid.UUID) (*items.Item, error) {
	result, err := r.items.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapItemError(err, id, "", "")
	}
	return result, nil
}

func (r *BunItemRepository) GetItemByName(ctx context.Context, scope, name string) (*items.Item, error) {
	records, _, err := r.items.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.scope = ?", scope).
				Where("?TableAlias.name = ?", name)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("item repository error: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *BunItemRepository) GetItemByPath(ctx context.Context, scope, urlPath string) (*items.Item, error) {
	records, _, err := r.items.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.scope = ?", scope).
				Where("?TableAlias.url_path = ?", urlPath)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("item repository error: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *BunItemRepository) ListItemsByScope(ctx context.Context, scope string) ([]*items.Item, error) {
	records, _, err := r.items.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.scope = ?", scope)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Relation("Current").Relation("Current.Version").
				OrderExpr("?TableAlias.name ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("item repository error: %w", err)
	}
	return records, nil
}

func (r *BunItemRepository) UpdateItemMetadata(ctx context.Context, record *items.Item) (*items.Item, error) {
	updated, err := r.items.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"language_code",
			"url_path",
			"published_at",
		),
	)
	if err != nil {
		return nil, fmt.Errorf("item repository error: %w", err)
	}
	return updated, nil
}

func (r *BunItemRepository) GetVersion(ctx context.Context, id uuid.UUID) (*items.Version, error) {
	result, err := r.versions.GetByID(ctx, id.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &items.VersionNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("version repository error: %w", err)
	}
	return result, nil
}

func (r *BunItemRepository) ListVersions(ctx context.Context, itemID uuid.UUID) ([]*items.Version, error) {
	records, _, err := r.versions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.item_id = ?", itemID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at DESC, ?TableAlias.position DESC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("version repository error: %w", err)
	}
	return records, nil
}

func (r *BunItemRepository) CountVersions(ctx context.Context, itemID uuid.UUID) (int, error) {
	records, err := r.ListVersions(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (r *BunItemRepository) GetCurrentPointer(ctx context.Context, itemID uuid.UUID) (*items.CurrentVersion, error) {
	result, err := r.current.GetByIdentifier(ctx, itemID.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("current pointer repository error: %w", err)
	}
	return result, nil
}

func (r *BunItemRepository) SearchCurrent(ctx context.Context, term string, scope *string) ([]*items.Version, error) {
	if r.db == nil {
		return nil, fmt.Errorf("item repository: database not configured")
	}

	pattern := "%" + strings.ToLower(term) + "%"
	records := []*items.Version{}

	q := r.db.NewSelect().
		Model(&records).
		Join("JOIN content_item_current_versions AS cicv ON cicv.version_id = civ.id").
		Join("JOIN content_items AS ci ON ci.id = civ.item_id").
		Where("lower(civ.title) LIKE ? OR lower(coalesce(civ.head, '')) LIKE ? OR lower(civ.body) LIKE ?",
			pattern, pattern, pattern)
	if scope != nil {
		q = q.Where("ci.scope = ?", *scope)
	}

	if err := q.OrderExpr("civ.created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("search current versions: %w", err)
	}
	return records, nil
}

func mapItemError(err error, id uuid.UUID, scope, name string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &items.ItemNotFoundError{ID: id, Scope: scope, Name: name}
	}
	return fmt.Errorf("item repository error: %w", err)
}

// classifyConstraint detects uniqueness and foreign-key violations across the
// supported drivers. Drivers disagree on error types, so the message text is
// the only portable signal.
func classifyConstraint(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, fragment := range []string{
		"UNIQUE constraint failed",
		"duplicate key value violates unique constraint",
		"FOREIGN KEY constraint failed",
		"violates foreign key constraint",
		"constraint failed",
	} {
		if strings.Contains(msg, fragment) {
			return &items.StorageConstraintError{Op: op, Err: err}
		}
	}
	return nil
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
