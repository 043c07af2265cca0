package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Kind identifies the content flavour an item carries. The lifecycle is
// identical for every kind; kinds only differ in which metadata and payload
// fields they populate.
type Kind string

const (
	// KindDocument is a titled long-form entry with optional head markup.
	KindDocument Kind = "document"
	// KindFragment is an untitled body-only entry embedded into other content.
	KindFragment Kind = "fragment"
	// KindPage is a site page addressable by URL path.
	KindPage Kind = "page"
	// KindNews is a news posting with an optional image and publish state.
	KindNews Kind = "news"
)

// IsValid reports whether the kind is one of the supported content kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindDocument, KindFragment, KindPage, KindNews:
		return true
	}
	return false
}

// Item is the canonical record for a versioned content entry. Identity fields
// (scope, name, kind) are immutable after creation; kind metadata such as the
// URL path or publish timestamp may change without producing a new version.
type Item struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID           uuid.UUID  `bun:",pk,type:uuid"       json:"id"`
	Scope        string     `bun:"scope,notnull"       json:"scope"`
	Name         string     `bun:"name,notnull"        json:"name"`
	Kind         Kind       `bun:"kind,notnull"        json:"kind"`
	LanguageCode *string    `bun:"language_code"       json:"language_code,omitempty"`
	URLPath      *string    `bun:"url_path"            json:"url_path,omitempty"`
	PublishedAt  *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`

	Current  *CurrentVersion `bun:"rel:has-one,join:id=item_id"  json:"current,omitempty"`
	Versions []*Version      `bun:"rel:has-many,join:id=item_id" json:"versions,omitempty"`
}

// Published reports whether the item carries a publish timestamp.
func (i *Item) Published() bool {
	return i != nil && i.PublishedAt != nil
}

// Version captures an immutable snapshot of an item's payload. Versions are
// only ever inserted; a content change is a new row, never an update.
// Position records per-item insertion order, starting at 1; history listings
// use it to break created-at ties deterministically.
type Version struct {
	bun.BaseModel `bun:"table:content_item_versions,alias:civ"`

	ID        uuid.UUID `bun:",pk,type:uuid"          json:"id"`
	ItemID    uuid.UUID `bun:"item_id,notnull,type:uuid" json:"item_id"`
	Position  int64     `bun:"position,notnull,default:0" json:"position"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	CreatedBy uuid.UUID `bun:"created_by,notnull,type:uuid" json:"created_by"`
	Title     string    `bun:"title"                  json:"title"`
	Head      *string   `bun:"head"                   json:"head,omitempty"`
	Body      string    `bun:"body,notnull"           json:"body"`
	ImagePath *string   `bun:"image_path"             json:"image_path,omitempty"`

	Item *Item `bun:"rel:belongs-to,join:item_id=id" json:"item,omitempty"`
}

// CurrentVersion is the indirection record denoting which version is live for
// an item. Exactly one row exists per live item; the referenced version must
// belong to the same item. Only the lifecycle service writes these rows.
type CurrentVersion struct {
	bun.BaseModel `bun:"table:content_item_current_versions,alias:cicv"`

	ItemID    uuid.UUID `bun:"item_id,pk,type:uuid"             json:"item_id"`
	VersionID uuid.UUID `bun:"version_id,notnull,type:uuid,unique" json:"version_id"`

	Version *Version `bun:"rel:belongs-to,join:version_id=id" json:"version,omitempty"`
}

// VersionPayload carries the content fields stored verbatim into a new
// version. Field validation is the caller's concern; the lifecycle persists
// what it is given.
type VersionPayload struct {
	Title     string  `json:"title"`
	Head      *string `json:"head,omitempty"`
	Body      string  `json:"body"`
	ImagePath *string `json:"image_path,omitempty"`
}

// Aggregate is a read projection joining an item with one of its versions,
// typically the current one.
type Aggregate struct {
	ID           uuid.UUID  `json:"id"`
	Scope        string     `json:"scope"`
	Name         string     `json:"name"`
	Kind         Kind       `json:"kind"`
	LanguageCode *string    `json:"language_code,omitempty"`
	URLPath      *string    `json:"url_path,omitempty"`
	Published    bool       `json:"published"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	VersionID    uuid.UUID  `json:"version_id"`
	Title        string     `json:"title"`
	Head         *string    `json:"head,omitempty"`
	Body         string     `json:"body"`
	ImagePath    *string    `json:"image_path,omitempty"`
}
