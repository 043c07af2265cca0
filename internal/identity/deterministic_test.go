package identity_test

import (
	"testing"

	"github.com/goliatone/go-content/internal/identity"
	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := identity.UUID("go-content:item:site-intranet:imprint")
	b := identity.UUID("go-content:item:site-intranet:imprint")
	if a != b {
		t.Fatalf("expected stable UUID, got %s and %s", a, b)
	}
	if a == uuid.Nil {
		t.Fatal("expected non-nil UUID for non-empty key")
	}
}

func TestUUIDEmptyKeyIsNil(t *testing.T) {
	if got := identity.UUID("   "); got != uuid.Nil {
		t.Fatalf("expected uuid.Nil for blank key, got %s", got)
	}
}

func TestItemUUIDDistinguishesScopeAndName(t *testing.T) {
	base := identity.ItemUUID("site-intranet", "imprint")
	if identity.ItemUUID("site-public", "imprint") == base {
		t.Fatal("different scopes must map to different ids")
	}
	if identity.ItemUUID("site-intranet", "team") == base {
		t.Fatal("different names must map to different ids")
	}
	if identity.ItemUUID(" site-intranet ", "imprint") != base {
		t.Fatal("surrounding whitespace must not change the id")
	}
}

func TestAuthorUUIDNormalizesCase(t *testing.T) {
	if identity.AuthorUUID("Editor@Example.Org") != identity.AuthorUUID("editor@example.org") {
		t.Fatal("author refs must be case-insensitive")
	}
}
