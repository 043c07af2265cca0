package items_test

import (
	"testing"

	"github.com/goliatone/go-content/items"
)

func TestNormalizeName(t *testing.T) {
	name, err := items.NormalizeName("FAQ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if name != "faq" {
		t.Fatalf("expected faq, got %q", name)
	}
	if !items.IsValidName(name) {
		t.Fatalf("normalized name %q should be valid", name)
	}
}

func TestIsValidNameRejectsEmpty(t *testing.T) {
	if items.IsValidName("") {
		t.Fatal("empty name must be invalid")
	}
}
