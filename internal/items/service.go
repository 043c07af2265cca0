package items

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-content/internal/logging"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/interfaces"
	"github.com/google/uuid"
)

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records and events.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithEmitter wires the emitter notified after each committed mutation.
func WithEmitter(emitter interfaces.EventEmitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.emitter = emitter
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersionRetentionLimit caps how many versions an item may accumulate.
// Updates beyond the cap fail rather than pruning history.
func WithVersionRetentionLimit(limit int) ServiceOption {
	return func(s *service) {
		if limit < 0 {
			limit = 0
		}
		s.versionRetentionLimit = limit
	}
}

// service implements items.Service.
type service struct {
	repo                  Repository
	now                   func() time.Time
	id                    IDGenerator
	emitter               interfaces.EventEmitter
	logger                interfaces.Logger
	versionRetentionLimit int
}

// NewService constructs the lifecycle service with the required storage.
func NewService(repo Repository, opts ...ServiceOption) items.Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create inserts the item, its first version, and the current pointer in one
// transaction, then emits the created event. A failed delivery is returned
// alongside the committed version and event.
func (s *service) Create(ctx context.Context, req items.CreateItemRequest) (*items.Version, *items.LifecycleEvent, error) {
	scope := strings.TrimSpace(req.Scope)
	if scope == "" {
		return nil, nil, items.ErrScopeRequired
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, items.ErrNameRequired
	}
	if !items.IsValidName(name) {
		return nil, nil, items.ErrNameInvalid
	}

	if !req.Kind.IsValid() {
		return nil, nil, items.ErrKindInvalid
	}
	if req.AuthorID == uuid.Nil {
		return nil, nil, items.ErrAuthorRequired
	}
	if strings.TrimSpace(req.Payload.Body) == "" {
		return nil, nil, items.ErrBodyRequired
	}
	if req.Kind == items.KindPage && (req.URLPath == nil || strings.TrimSpace(*req.URLPath) == "") {
		return nil, nil, items.ErrURLPathRequired
	}

	// Advisory pre-check; the unique index is the authoritative guard.
	existing, err := s.repo.GetItemByName(ctx, scope, name)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, &items.NameExistsError{Scope: scope, Name: name}
	}

	now := s.now()
	item := &items.Item{
		ID:           s.id(),
		Scope:        scope,
		Name:         name,
		Kind:         req.Kind,
		LanguageCode: clonePtr(req.LanguageCode),
		URLPath:      clonePtr(req.URLPath),
		CreatedAt:    now,
	}
	version := newVersion(s.id(), item.ID, req.AuthorID, req.Payload, now)

	if err := s.repo.CreateWithVersion(ctx, item, version); err != nil {
		var constraint *items.StorageConstraintError
		if errors.As(err, &constraint) {
			// The only non-PK unique constraint reachable here is the
			// scope/name pair.
			return nil, nil, &items.NameExistsError{Scope: scope, Name: name}
		}
		return nil, nil, err
	}

	s.logger.Debug("item created",
		"item_id", item.ID,
		"scope", item.Scope,
		"name", item.Name,
		"kind", item.Kind,
	)

	event := items.NewLifecycleEvent(items.EventItemCreated, item, version.ID, &req.AuthorID, now)
	return version, event, s.emit(ctx, event)
}

// Update appends a new version and repoints the current pointer at it inside
// one transaction, then emits the updated event.
func (s *service) Update(ctx context.Context, req items.UpdateItemRequest) (*items.Version, *items.LifecycleEvent, error) {
	if req.ItemID == uuid.Nil {
		return nil, nil, items.ErrItemIDRequired
	}
	if req.AuthorID == uuid.Nil {
		return nil, nil, items.ErrAuthorRequired
	}
	if strings.TrimSpace(req.Payload.Body) == "" {
		return nil, nil, items.ErrBodyRequired
	}

	item, err := s.repo.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, nil, err
	}

	if s.versionRetentionLimit > 0 {
		count, err := s.repo.CountVersions(ctx, req.ItemID)
		if err != nil {
			return nil, nil, err
		}
		if count >= s.versionRetentionLimit {
			return nil, nil, items.ErrVersionRetentionExceeded
		}
	}

	if req.LanguageCode != nil {
		item.LanguageCode = clonePtr(req.LanguageCode)
	}
	if req.URLPath != nil {
		item.URLPath = clonePtr(req.URLPath)
	}

	now := s.now()
	version := newVersion(s.id(), item.ID, req.AuthorID, req.Payload, now)

	if err := s.repo.AppendVersion(ctx, item, version); err != nil {
		return nil, nil, err
	}

	s.logger.Debug("item updated",
		"item_id", item.ID,
		"version_id", version.ID,
	)

	event := items.NewLifecycleEvent(items.EventItemUpdated, item, version.ID, &req.AuthorID, now)
	return version, event, s.emit(ctx, event)
}

// Delete removes the pointer, every version, and the item. A storage
// constraint blocking the cascade is absorbed after rollback; everything else
// propagates.
func (s *service) Delete(ctx context.Context, req items.DeleteItemRequest) (bool, *items.LifecycleEvent, error) {
	if req.ItemID == uuid.Nil {
		return false, nil, items.ErrItemIDRequired
	}

	item, err := s.repo.GetItem(ctx, req.ItemID)
	if err != nil {
		return false, nil, err
	}

	if err := s.repo.DeleteCascade(ctx, req.ItemID); err != nil {
		var constraint *items.StorageConstraintError
		if errors.As(err, &constraint) {
			s.logger.Warn("item delete blocked by storage constraint",
				"item_id", req.ItemID,
				"error", err,
			)
			return false, nil, nil
		}
		return false, nil, err
	}

	s.logger.Debug("item deleted",
		"item_id", item.ID,
		"scope", item.Scope,
		"name", item.Name,
	)

	event := items.NewLifecycleEvent(items.EventItemDeleted, item, uuid.Nil, req.InitiatorID, s.now())
	return true, event, s.emit(ctx, event)
}

func (s *service) FindItem(ctx context.Context, itemID uuid.UUID) (*items.Item, error) {
	record, err := s.repo.GetItem(ctx, itemID)
	if items.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*items.Item, error) {
	return s.repo.GetItem(ctx, itemID)
}

func (s *service) FindByName(ctx context.Context, scope, name string) (*items.Item, error) {
	return s.repo.GetItemByName(ctx, strings.TrimSpace(scope), strings.TrimSpace(name))
}

func (s *service) ListByScope(ctx context.Context, scope string) ([]*items.Item, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, items.ErrScopeRequired
	}
	return s.repo.ListItemsByScope(ctx, scope)
}

// GetCurrent dereferences the current pointer. A live item without a pointer,
// or a pointer referencing a foreign version, is a broken invariant and is
// reported as such rather than absorbed.
func (s *service) GetCurrent(ctx context.Context, itemID uuid.UUID) (*items.Version, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	pointer, err := s.repo.GetCurrentPointer(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if pointer == nil {
		return nil, &items.InvariantViolationError{
			ItemID:  itemID,
			Message: "live item has no current pointer",
		}
	}

	version, err := s.repo.GetVersion(ctx, pointer.VersionID)
	if items.IsNotFound(err) {
		return nil, &items.InvariantViolationError{
			ItemID:    itemID,
			VersionID: pointer.VersionID,
			Message:   "current pointer references a missing version",
		}
	}
	if err != nil {
		return nil, err
	}
	if version.ItemID != itemID {
		return nil, &items.InvariantViolationError{
			ItemID:    itemID,
			VersionID: version.ID,
			Message:   "current pointer references a version of another item",
		}
	}
	return version, nil
}

func (s *service) GetHistory(ctx context.Context, itemID uuid.UUID) ([]*items.Version, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, itemID)
}

func (s *service) FindVersion(ctx context.Context, versionID uuid.UUID) (*items.Version, error) {
	record, err := s.repo.GetVersion(ctx, versionID)
	if items.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) GetVersion(ctx context.Context, versionID uuid.UUID) (*items.Version, error) {
	return s.repo.GetVersion(ctx, versionID)
}

func (s *service) IsCurrentVersion(ctx context.Context, itemID, versionID uuid.UUID) (bool, error) {
	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return false, err
	}
	if version.ItemID != itemID {
		return false, nil
	}

	pointer, err := s.repo.GetCurrentPointer(ctx, itemID)
	if err != nil {
		return false, err
	}
	if pointer == nil {
		return false, nil
	}
	return pointer.VersionID == versionID, nil
}

func (s *service) FindCurrentByName(ctx context.Context, scope, name string) (*items.Version, error) {
	item, err := s.FindByName(ctx, scope, name)
	if err != nil || item == nil {
		return nil, err
	}
	return s.GetCurrent(ctx, item.ID)
}

func (s *service) FindCurrentByPath(ctx context.Context, scope, urlPath string) (*items.Version, error) {
	urlPath = strings.TrimSpace(urlPath)
	if urlPath == "" {
		return nil, nil
	}
	item, err := s.repo.GetItemByPath(ctx, strings.TrimSpace(scope), urlPath)
	if err != nil || item == nil {
		return nil, err
	}
	return s.GetCurrent(ctx, item.ID)
}

func (s *service) URLPathsByName(ctx context.Context, scope string) (map[string]string, error) {
	records, err := s.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(records))
	for _, record := range records {
		if record.URLPath != nil {
			out[record.Name] = *record.URLPath
		}
	}
	return out, nil
}

// Publish stamps the publish time. Publishing an already published item is a
// no-op returning the current state.
func (s *service) Publish(ctx context.Context, itemID uuid.UUID) (*items.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.PublishedAt != nil {
		return item, nil
	}

	now := s.now()
	item.PublishedAt = &now
	return s.repo.UpdateItemMetadata(ctx, item)
}

func (s *service) Unpublish(ctx context.Context, itemID uuid.UUID) (*items.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.PublishedAt == nil {
		return item, nil
	}

	item.PublishedAt = nil
	return s.repo.UpdateItemMetadata(ctx, item)
}

func (s *service) Aggregate(ctx context.Context, versionID uuid.UUID) (*items.Aggregate, error) {
	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, version.ItemID)
	if err != nil {
		return nil, err
	}

	return &items.Aggregate{
		ID:           item.ID,
		Scope:        item.Scope,
		Name:         item.Name,
		Kind:         item.Kind,
		LanguageCode: item.LanguageCode,
		URLPath:      item.URLPath,
		Published:    item.Published(),
		PublishedAt:  item.PublishedAt,
		VersionID:    version.ID,
		Title:        version.Title,
		Head:         version.Head,
		Body:         version.Body,
		ImagePath:    version.ImagePath,
	}, nil
}

func (s *service) Search(ctx context.Context, req items.SearchRequest) ([]*items.Version, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return nil, items.ErrSearchTermRequired
	}

	var scope *string
	if req.Scope != nil {
		trimmed := strings.TrimSpace(*req.Scope)
		if trimmed != "" {
			scope = &trimmed
		}
	}
	return s.repo.SearchCurrent(ctx, term, scope)
}

// emit delivers the event for an already committed mutation. Delivery
// failures are returned so callers learn about them; the mutation itself
// stands regardless.
func (s *service) emit(ctx context.Context, event *items.LifecycleEvent) error {
	if s.emitter == nil {
		return nil
	}
	err := s.emitter.Emit(ctx, event)
	if err != nil {
		s.logger.Error("lifecycle event delivery failed",
			"type", event.Type(),
			"item_id", event.ItemID,
			"error", err,
		)
	}
	return err
}

func newVersion(id, itemID, authorID uuid.UUID, payload items.VersionPayload, now time.Time) *items.Version {
	return &items.Version{
		ID:        id,
		ItemID:    itemID,
		CreatedAt: now,
		CreatedBy: authorID,
		Title:     payload.Title,
		Head:      clonePtr(payload.Head),
		Body:      payload.Body,
		ImagePath: clonePtr(payload.ImagePath),
	}
}
