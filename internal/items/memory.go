package items

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-content/items"
	"github.com/google/uuid"
)

// MemoryItemRepository is an in-memory implementation for scaffolding and
// tests. It enforces the same uniqueness rules the database schema does.
type MemoryItemRepository struct {
	mu        sync.RWMutex
	items     map[uuid.UUID]*items.Item
	versions  map[uuid.UUID]*items.Version
	current   map[uuid.UUID]uuid.UUID
	nameIndex map[string]uuid.UUID
	positions map[uuid.UUID]int64

	// referenceChecks run before a cascade delete; returning an error
	// simulates a foreign key held by another table.
	referenceChecks []func(itemID uuid.UUID) error
}

// NewMemoryItemRepository creates an empty in-memory item repository.
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{
		items:     make(map[uuid.UUID]*items.Item),
		versions:  make(map[uuid.UUID]*items.Version),
		current:   make(map[uuid.UUID]uuid.UUID),
		nameIndex: make(map[string]uuid.UUID),
		positions: make(map[uuid.UUID]int64),
	}
}

// AddReferenceCheck registers a hook consulted before DeleteCascade.
func (m *MemoryItemRepository) AddReferenceCheck(check func(itemID uuid.UUID) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.referenceChecks = append(m.referenceChecks, check)
}

func nameKey(scope, name string) string {
	return scope + "\x00" + name
}

func (m *MemoryItemRepository) CreateWithVersion(_ context.Context, item *items.Item, version *items.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := nameKey(item.Scope, item.Name)
	if _, exists := m.nameIndex[key]; exists {
		return &items.StorageConstraintError{
			Op:         "create",
			Constraint: "content_items_scope_name",
		}
	}

	version.Position = 1
	m.positions[item.ID] = 1
	m.items[item.ID] = cloneItem(item)
	m.versions[version.ID] = cloneVersion(version)
	m.current[item.ID] = version.ID
	m.nameIndex[key] = item.ID
	return nil
}

func (m *MemoryItemRepository) AppendVersion(_ context.Context, item *items.Item, version *items.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[item.ID]
	if !ok {
		return &items.ItemNotFoundError{ID: item.ID}
	}
	if _, ok := m.current[item.ID]; !ok {
		return &items.InvariantViolationError{
			ItemID:    item.ID,
			VersionID: version.ID,
			Message:   "live item has no current pointer to repoint",
		}
	}

	m.positions[item.ID]++
	version.Position = m.positions[item.ID]
	m.versions[version.ID] = cloneVersion(version)
	m.current[item.ID] = version.ID
	stored.LanguageCode = clonePtr(item.LanguageCode)
	stored.URLPath = clonePtr(item.URLPath)
	return nil
}

func (m *MemoryItemRepository) DeleteCascade(_ context.Context, itemID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[itemID]
	if !ok {
		return &items.ItemNotFoundError{ID: itemID}
	}

	for _, check := range m.referenceChecks {
		if err := check(itemID); err != nil {
			return &items.StorageConstraintError{Op: "delete", Err: err}
		}
	}

	delete(m.current, itemID)
	for id, version := range m.versions {
		if version.ItemID == itemID {
			delete(m.versions, id)
		}
	}
	delete(m.nameIndex, nameKey(stored.Scope, stored.Name))
	delete(m.positions, itemID)
	delete(m.items, itemID)
	return nil
}

func (m *MemoryItemRepository) GetItem(_ context.Context, id uuid.UUID) (*items.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[id]
	if !ok {
		return nil, &items.ItemNotFoundError{ID: id}
	}
	return cloneItem(rec), nil
}

func (m *MemoryItemRepository) GetItemByName(_ context.Context, scope, name string) (*items.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.nameIndex[nameKey(scope, name)]
	if !ok {
		return nil, nil
	}
	return cloneItem(m.items[id]), nil
}

func (m *MemoryItemRepository) GetItemByPath(_ context.Context, scope, urlPath string) (*items.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.items {
		if rec.Scope == scope && rec.URLPath != nil && *rec.URLPath == urlPath {
			return cloneItem(rec), nil
		}
	}
	return nil, nil
}

func (m *MemoryItemRepository) ListItemsByScope(_ context.Context, scope string) ([]*items.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*items.Item{}
	for _, rec := range m.items {
		if rec.Scope != scope {
			continue
		}
		copied := cloneItem(rec)
		if versionID, ok := m.current[rec.ID]; ok {
			copied.Current = &items.CurrentVersion{
				ItemID:    rec.ID,
				VersionID: versionID,
				Version:   cloneVersion(m.versions[versionID]),
			}
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryItemRepository) UpdateItemMetadata(_ context.Context, record *items.Item) (*items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[record.ID]
	if !ok {
		return nil, &items.ItemNotFoundError{ID: record.ID}
	}
	stored.LanguageCode = clonePtr(record.LanguageCode)
	stored.URLPath = clonePtr(record.URLPath)
	stored.PublishedAt = clonePtr(record.PublishedAt)
	return cloneItem(stored), nil
}

func (m *MemoryItemRepository) GetVersion(_ context.Context, id uuid.UUID) (*items.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.versions[id]
	if !ok {
		return nil, &items.VersionNotFoundError{ID: id}
	}
	return cloneVersion(rec), nil
}

func (m *MemoryItemRepository) ListVersions(_ context.Context, itemID uuid.UUID) ([]*items.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*items.Version{}
	for _, rec := range m.versions {
		if rec.ItemID == itemID {
			out = append(out, cloneVersion(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Position > out[j].Position
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryItemRepository) CountVersions(ctx context.Context, itemID uuid.UUID) (int, error) {
	records, err := m.ListVersions(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (m *MemoryItemRepository) GetCurrentPointer(_ context.Context, itemID uuid.UUID) (*items.CurrentVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versionID, ok := m.current[itemID]
	if !ok {
		return nil, nil
	}
	return &items.CurrentVersion{ItemID: itemID, VersionID: versionID}, nil
}

func (m *MemoryItemRepository) SearchCurrent(_ context.Context, term string, scope *string) ([]*items.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(term)
	out := []*items.Version{}
	for itemID, versionID := range m.current {
		item, ok := m.items[itemID]
		if !ok {
			continue
		}
		if scope != nil && item.Scope != *scope {
			continue
		}
		version, ok := m.versions[versionID]
		if !ok {
			continue
		}
		head := ""
		if version.Head != nil {
			head = *version.Head
		}
		if strings.Contains(strings.ToLower(version.Title), needle) ||
			strings.Contains(strings.ToLower(head), needle) ||
			strings.Contains(strings.ToLower(version.Body), needle) {
			out = append(out, cloneVersion(version))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneItem(src *items.Item) *items.Item {
	if src == nil {
		return nil
	}
	copied := *src
	copied.LanguageCode = clonePtr(src.LanguageCode)
	copied.URLPath = clonePtr(src.URLPath)
	copied.PublishedAt = clonePtr(src.PublishedAt)
	copied.Current = nil
	copied.Versions = nil
	return &copied
}

func cloneVersion(src *items.Version) *items.Version {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Head = clonePtr(src.Head)
	copied.ImagePath = clonePtr(src.ImagePath)
	copied.Item = nil
	return &copied
}

func clonePtr[T any](src *T) *T {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
