package items

import (
	"context"

	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository abstracts storage for items, versions, and the current-version
// pointer. The composite mutations are atomic: either every row lands or
// none do.
type Repository interface {
	// CreateWithVersion inserts the item, its first version, and the current
	// pointer as one unit.
	CreateWithVersion(ctx context.Context, item *items.Item, version *items.Version) error
	// AppendVersion inserts a version, repoints the current pointer at it,
	// and applies any changed item metadata, as one unit.
	AppendVersion(ctx context.Context, item *items.Item, version *items.Version) error
	// DeleteCascade removes the pointer, every version, and the item itself,
	// children first, as one unit.
	DeleteCascade(ctx context.Context, itemID uuid.UUID) error

	GetItem(ctx context.Context, id uuid.UUID) (*items.Item, error)
	GetItemByName(ctx context.Context, scope, name string) (*items.Item, error)
	GetItemByPath(ctx context.Context, scope, urlPath string) (*items.Item, error)
	ListItemsByScope(ctx context.Context, scope string) ([]*items.Item, error)
	UpdateItemMetadata(ctx context.Context, record *items.Item) (*items.Item, error)

	GetVersion(ctx context.Context, id uuid.UUID) (*items.Version, error)
	ListVersions(ctx context.Context, itemID uuid.UUID) ([]*items.Version, error)
	CountVersions(ctx context.Context, itemID uuid.UUID) (int, error)
	GetCurrentPointer(ctx context.Context, itemID uuid.UUID) (*items.CurrentVersion, error)

	SearchCurrent(ctx context.Context, term string, scope *string) ([]*items.Version, error)
}

func NewItemRepository(db *bun.DB) repository.Repository[*items.Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*items.Item]{
		NewRecord: func() *items.Item { return &items.Item{} },
		GetID: func(i *items.Item) uuid.UUID {
			return i.ID
		},
		SetID: func(i *items.Item, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(i *items.Item) string {
			return i.Name
		},
	})
}

func NewVersionRepository(db *bun.DB) repository.Repository[*items.Version] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*items.Version]{
		NewRecord: func() *items.Version { return &items.Version{} },
		GetID: func(v *items.Version) uuid.UUID {
			return v.ID
		},
		SetID: func(v *items.Version, id uuid.UUID) {
			v.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(v *items.Version) string {
			if v == nil {
				return ""
			}
			return v.ID.String()
		},
	})
}

func NewCurrentVersionRepository(db *bun.DB) repository.Repository[*items.CurrentVersion] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*items.CurrentVersion]{
		NewRecord: func() *items.CurrentVersion { return &items.CurrentVersion{} },
		GetID: func(cv *items.CurrentVersion) uuid.UUID {
			return cv.ItemID
		},
		SetID: func(cv *items.CurrentVersion, id uuid.UUID) {
			cv.ItemID = id
		},
		GetIdentifier: func() string {
			return "item_id"
		},
		GetIdentifierValue: func(cv *items.CurrentVersion) string {
			if cv == nil {
				return ""
			}
			return cv.ItemID.String()
		},
	})
}
