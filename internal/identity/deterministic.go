package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ItemUUID derives the stable identifier for an item addressed by scope and
// name. Markdown imports rely on this to stay idempotent across runs.
func ItemUUID(scope, name string) uuid.UUID {
	return UUID("go-content:item:" + strings.TrimSpace(scope) + ":" + strings.TrimSpace(name))
}

// AuthorUUID derives a stable identifier for an external author reference.
func AuthorUUID(ref string) uuid.UUID {
	return UUID("go-content:author:" + strings.ToLower(strings.TrimSpace(ref)))
}
