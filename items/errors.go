package items

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrScopeRequired            = errors.New("items: scope is required")
	ErrNameRequired             = errors.New("items: name is required")
	ErrNameInvalid              = errors.New("items: name contains invalid characters")
	ErrNameExists               = errors.New("items: name already exists in scope")
	ErrKindInvalid              = errors.New("items: unknown content kind")
	ErrItemIDRequired           = errors.New("items: item id required")
	ErrVersionIDRequired        = errors.New("items: version id required")
	ErrAuthorRequired           = errors.New("items: author id required")
	ErrBodyRequired             = errors.New("items: body is required")
	ErrURLPathRequired          = errors.New("items: url path is required for pages")
	ErrSearchTermRequired       = errors.New("items: search term is required")
	ErrVersionRetentionExceeded = errors.New("items: version retention limit reached")
	ErrInvariantViolation       = errors.New("items: lifecycle invariant violated")
	ErrStorageConstraint        = errors.New("items: storage constraint violated")
)

// ItemNotFoundError reports a lookup that matched no item.
type ItemNotFoundError struct {
	ID    uuid.UUID
	Scope string
	Name  string
}

func (e *ItemNotFoundError) Error() string {
	if e == nil {
		return "items: item not found"
	}
	if e.ID != uuid.Nil {
		return fmt.Sprintf("items: item %s not found", e.ID)
	}
	if e.Scope != "" || e.Name != "" {
		return fmt.Sprintf("items: item %q not found in scope %q", e.Name, e.Scope)
	}
	return "items: item not found"
}

// VersionNotFoundError reports a lookup that matched no version.
type VersionNotFoundError struct {
	ID     uuid.UUID
	ItemID uuid.UUID
}

func (e *VersionNotFoundError) Error() string {
	if e == nil {
		return "items: version not found"
	}
	if e.ID != uuid.Nil {
		return fmt.Sprintf("items: version %s not found", e.ID)
	}
	if e.ItemID != uuid.Nil {
		return fmt.Sprintf("items: no versions for item %s", e.ItemID)
	}
	return "items: version not found"
}

// NameExistsError reports a duplicate (scope, name) pair. The storage layer's
// uniqueness constraint is the authoritative guard; any pre-insert check is
// advisory only.
type NameExistsError struct {
	Scope string
	Name  string
}

func (e *NameExistsError) Error() string {
	if e == nil {
		return ErrNameExists.Error()
	}
	return fmt.Sprintf("%s: scope=%s name=%s", ErrNameExists.Error(), e.Scope, e.Name)
}

func (e *NameExistsError) Unwrap() error {
	return ErrNameExists
}

// StorageConstraintError wraps a uniqueness or foreign-key violation surfaced
// by the backing store.
type StorageConstraintError struct {
	Op         string
	Constraint string
	Err        error
}

func (e *StorageConstraintError) Error() string {
	if e == nil {
		return ErrStorageConstraint.Error()
	}
	msg := fmt.Sprintf("%s: op=%s", ErrStorageConstraint.Error(), e.Op)
	if e.Constraint != "" {
		msg += " constraint=" + e.Constraint
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StorageConstraintError) Unwrap() error {
	return ErrStorageConstraint
}

// InvariantViolationError reports a broken lifecycle invariant, e.g. a current
// pointer referencing a version from a different item. It signals a
// programming error and is not meant to be handled by callers.
type InvariantViolationError struct {
	ItemID    uuid.UUID
	VersionID uuid.UUID
	Message   string
}

func (e *InvariantViolationError) Error() string {
	if e == nil {
		return ErrInvariantViolation.Error()
	}
	msg := e.Message
	if msg == "" {
		msg = "invariant violated"
	}
	return fmt.Sprintf("%s: item=%s version=%s: %s", ErrInvariantViolation.Error(), e.ItemID, e.VersionID, msg)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// IsNotFound reports whether err represents a missing item or version.
func IsNotFound(err error) bool {
	var itemErr *ItemNotFoundError
	var versionErr *VersionNotFoundError
	return errors.As(err, &itemErr) || errors.As(err, &versionErr)
}
