package items

import (
	"context"

	"github.com/google/uuid"
)

// Service exposes the versioned-content lifecycle use cases. Every mutation
// commits its storage writes as one atomic unit and returns the lifecycle
// event describing what happened; events reach subscribers only after the
// commit succeeded.
type Service interface {
	// Create inserts a new item, its first version, and the current-version
	// pointer as one atomic unit.
	Create(ctx context.Context, req CreateItemRequest) (*Version, *LifecycleEvent, error)
	// Update appends a new version and repoints the current pointer at it.
	// Prior versions stay in history untouched.
	Update(ctx context.Context, req UpdateItemRequest) (*Version, *LifecycleEvent, error)
	// Delete removes the pointer, all versions, and the item, children first.
	// A storage constraint blocking the delete (for example a foreign key
	// held by an unrelated table) yields (false, nil, nil) after rollback;
	// other failures propagate as errors.
	Delete(ctx context.Context, req DeleteItemRequest) (bool, *LifecycleEvent, error)

	// FindItem returns the item or nil when absent.
	FindItem(ctx context.Context, itemID uuid.UUID) (*Item, error)
	// GetItem returns the item or an ItemNotFoundError.
	GetItem(ctx context.Context, itemID uuid.UUID) (*Item, error)
	// FindByName returns the item with that name in that scope, or nil.
	FindByName(ctx context.Context, scope, name string) (*Item, error)
	// ListByScope returns all items in the scope with their current versions
	// preloaded.
	ListByScope(ctx context.Context, scope string) ([]*Item, error)

	// GetCurrent dereferences the current pointer. A missing item is an
	// ItemNotFoundError; an existing item without a pointer is an
	// InvariantViolationError, never silently absorbed.
	GetCurrent(ctx context.Context, itemID uuid.UUID) (*Version, error)
	// GetHistory returns all versions, most recent first.
	GetHistory(ctx context.Context, itemID uuid.UUID) ([]*Version, error)
	// FindVersion returns the version or nil when absent.
	FindVersion(ctx context.Context, versionID uuid.UUID) (*Version, error)
	// GetVersion returns the version or a VersionNotFoundError.
	GetVersion(ctx context.Context, versionID uuid.UUID) (*Version, error)
	// IsCurrentVersion reports whether the version is the item's current one.
	IsCurrentVersion(ctx context.Context, itemID, versionID uuid.UUID) (bool, error)
	// FindCurrentByName resolves the current version of the named item, or
	// nil when no such item exists.
	FindCurrentByName(ctx context.Context, scope, name string) (*Version, error)
	// FindCurrentByPath resolves the current version of the page addressed
	// by that URL path within the scope, or nil.
	FindCurrentByPath(ctx context.Context, scope, urlPath string) (*Version, error)
	// URLPathsByName maps item names to URL paths for the scope.
	URLPathsByName(ctx context.Context, scope string) (map[string]string, error)

	// Publish stamps the item's publish time without creating a version.
	Publish(ctx context.Context, itemID uuid.UUID) (*Item, error)
	// Unpublish clears the item's publish time.
	Unpublish(ctx context.Context, itemID uuid.UUID) (*Item, error)

	// Aggregate joins a version with its item into a flat read projection.
	Aggregate(ctx context.Context, versionID uuid.UUID) (*Aggregate, error)
	// Search matches the term against title, head, and body of current
	// versions, optionally restricted to one scope.
	Search(ctx context.Context, req SearchRequest) ([]*Version, error)
}

// CreateItemRequest captures everything needed to create an item and its
// first version.
type CreateItemRequest struct {
	Scope        string
	Name         string
	Kind         Kind
	AuthorID     uuid.UUID
	Payload      VersionPayload
	LanguageCode *string
	URLPath      *string
}

// UpdateItemRequest appends a version to an existing item. LanguageCode and
// URLPath, when set, update item metadata inside the same transaction without
// affecting version history.
type UpdateItemRequest struct {
	ItemID       uuid.UUID
	AuthorID     uuid.UUID
	Payload      VersionPayload
	LanguageCode *string
	URLPath      *string
}

// DeleteItemRequest removes an item and everything it owns. InitiatorID is
// optional; system-initiated deletions leave it nil.
type DeleteItemRequest struct {
	ItemID      uuid.UUID
	InitiatorID *uuid.UUID
}

// SearchRequest captures a current-version search. A nil Scope searches every
// scope.
type SearchRequest struct {
	Term  string
	Scope *string
}

// CreateDocument creates a titled document item with an optional head.
func CreateDocument(ctx context.Context, svc Service, scope, name string, authorID uuid.UUID, title, body string, head *string) (*Version, *LifecycleEvent, error) {
	return svc.Create(ctx, CreateItemRequest{
		Scope:    scope,
		Name:     name,
		Kind:     KindDocument,
		AuthorID: authorID,
		Payload:  VersionPayload{Title: title, Head: head, Body: body},
	})
}

// UpdateDocument appends a new document version.
func UpdateDocument(ctx context.Context, svc Service, itemID, authorID uuid.UUID, title, body string, head *string) (*Version, *LifecycleEvent, error) {
	return svc.Update(ctx, UpdateItemRequest{
		ItemID:   itemID,
		AuthorID: authorID,
		Payload:  VersionPayload{Title: title, Head: head, Body: body},
	})
}

// CreateFragment creates a body-only fragment item.
func CreateFragment(ctx context.Context, svc Service, scope, name string, authorID uuid.UUID, body string) (*Version, *LifecycleEvent, error) {
	return svc.Create(ctx, CreateItemRequest{
		Scope:    scope,
		Name:     name,
		Kind:     KindFragment,
		AuthorID: authorID,
		Payload:  VersionPayload{Body: body},
	})
}

// UpdateFragment appends a new fragment version.
func UpdateFragment(ctx context.Context, svc Service, itemID, authorID uuid.UUID, body string) (*Version, *LifecycleEvent, error) {
	return svc.Update(ctx, UpdateItemRequest{
		ItemID:   itemID,
		AuthorID: authorID,
		Payload:  VersionPayload{Body: body},
	})
}
