package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should support reusable parser instances and extension
// toggles so hosts can tailor rendering without rewriting the importer.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService bundles document loading, rendering, and import into one
// filesystem-backed facade.
type MarkdownService interface {
	// Load reads and parses a single document relative to the base path.
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	// LoadDirectory reads every matching document within the directory.
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	// Render converts Markdown bytes into HTML.
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	// Import persists a single document as a content item.
	Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error)
	// ImportDirectory loads and imports every matching document in a directory.
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
	// Sync imports a directory and reconciles deletions.
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// LoadOptions provide call-specific overrides for document discovery and
// rendering.
type LoadOptions struct {
	Pattern   string
	Recursive *bool
	Parser    ParseOptions
}

// Document represents a Markdown file with parsed metadata and content. The
// struct is shared between the interfaces package and internal implementations
// so consumers can depend on a stable contract.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	// Checksum stores a digest of the original file content (typically SHA-256)
	// so sync workflows can detect changes without re-importing unchanged files.
	Checksum []byte
}

// FrontMatter models metadata extracted from Markdown files. The Custom map
// keeps domain-specific values accessible without schema changes.
type FrontMatter struct {
	Title    string         `yaml:"title" json:"title"`
	Name     string         `yaml:"name" json:"name"`
	Kind     string         `yaml:"kind" json:"kind"`
	Head     string         `yaml:"head" json:"head"`
	Language string         `yaml:"language" json:"language"`
	URLPath  string         `yaml:"url_path" json:"url_path"`
	Author   string         `yaml:"author" json:"author"`
	Date     time.Time      `yaml:"date" json:"date"`
	Draft    bool           `yaml:"draft" json:"draft"`
	Custom   map[string]any `yaml:",inline" json:"custom"`
	Raw      map[string]any `yaml:"-" json:"raw"`
}

// ImportOptions controls how Markdown documents become content items.
type ImportOptions struct {
	// Scope receives the imported items.
	Scope string
	// AuthorID records who performed the import. When nil, the importer
	// derives a deterministic author from the frontmatter author field.
	AuthorID uuid.UUID
	// DefaultKind applies when a document carries no kind in frontmatter.
	DefaultKind string
	// DryRun reports what would change without writing anything.
	DryRun bool
}

// SyncOptions extends ImportOptions to handle delete semantics for repeated
// synchronisation runs.
type SyncOptions struct {
	ImportOptions
	DeleteOrphaned bool
}

// ImportResult reports the outcome of an import, exposing counts and IDs so
// callers can audit behaviour or trigger follow-up actions.
type ImportResult struct {
	CreatedItemIDs []uuid.UUID
	UpdatedItemIDs []uuid.UUID
	SkippedItemIDs []uuid.UUID
	// Skipped counts every skipped document. It can exceed
	// len(SkippedItemIDs): a dry run counts would-be creations here even
	// though no item id exists yet.
	Skipped int
	Errors  []error
}

// SyncResult summarises a bulk sync run across many files.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Errors  []error
}
