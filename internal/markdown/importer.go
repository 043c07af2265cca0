package markdown

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-content/internal/identity"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/interfaces"
)

var (
	ErrItemServiceRequired = errors.New("markdown importer: item service is required")
	ErrScopeMissing        = errors.New("markdown importer: import scope is required")
	ErrNameMissing         = errors.New("markdown importer: document name could not be determined")
)

// ImporterConfig encapsulates dependencies required to persist markdown documents.
type ImporterConfig struct {
	Items  items.Service
	Logger interfaces.Logger
}

// Importer turns markdown documents into versioned content items. Repeated
// runs are idempotent: unchanged documents are skipped, changed documents
// append a new version, and unknown documents create fresh items.
type Importer struct {
	items  items.Service
	logger interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	return &Importer{
		items:  cfg.Items,
		logger: cfg.Logger,
	}
}

// ImportDocument imports a single markdown document.
func (i *Importer) ImportDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	return i.ImportDocuments(ctx, []*interfaces.Document{doc}, opts)
}

// ImportDocuments imports a slice of documents in deterministic path order.
// Per-document failures are collected; the remaining documents still import.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.items == nil {
		return nil, ErrItemServiceRequired
	}
	if strings.TrimSpace(opts.Scope) == "" {
		return nil, ErrScopeMissing
	}

	acc := newImportAccumulator()
	for _, doc := range sortDocuments(docs) {
		if err := i.applyDocument(ctx, doc, opts, acc); err != nil {
			acc.addError(err)
		}
	}
	return acc.result(), firstError(acc.errors)
}

// SyncDocuments imports all provided documents and optionally deletes items
// no longer backed by a document.
func (i *Importer) SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if i.items == nil {
		return nil, ErrItemServiceRequired
	}

	importRes, err := i.ImportDocuments(ctx, docs, opts.ImportOptions)
	if err != nil && importRes == nil {
		return nil, err
	}

	acc := newSyncAccumulator()
	acc.merge(importRes)

	if opts.DeleteOrphaned {
		if err := i.deleteOrphaned(ctx, docs, opts, acc); err != nil {
			acc.addError(err)
		}
	}

	return acc.result(), firstError(acc.errors)
}

func (i *Importer) applyDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions, acc *importAccumulator) error {
	if doc == nil {
		return errors.New("markdown importer: nil document")
	}

	name, err := documentName(doc)
	if err != nil {
		return err
	}

	kind := documentKind(doc, opts)
	payload := buildPayload(doc, name)
	author := authorFor(doc, opts)

	if err := items.ValidatePayload(kind, payload); err != nil {
		return fmt.Errorf("markdown importer: %s: %w", doc.FilePath, err)
	}

	existing, err := i.items.FindByName(ctx, opts.Scope, name)
	if err != nil {
		return fmt.Errorf("markdown importer: lookup %s: %w", name, err)
	}

	if existing == nil {
		if opts.DryRun {
			acc.skip(uuid.Nil)
			return nil
		}

		version, _, createErr := i.items.Create(ctx, items.CreateItemRequest{
			Scope:        opts.Scope,
			Name:         name,
			Kind:         kind,
			AuthorID:     author,
			Payload:      payload,
			LanguageCode: optionalString(doc.FrontMatter.Language),
			URLPath:      optionalString(doc.FrontMatter.URLPath),
		})
		if createErr != nil {
			return fmt.Errorf("markdown importer: create %s: %w", name, createErr)
		}
		acc.created(version.ItemID)
		return i.applyPublishState(ctx, version.ItemID, false, doc.FrontMatter.Draft, opts)
	}

	current, err := i.items.GetCurrent(ctx, existing.ID)
	if err != nil {
		return fmt.Errorf("markdown importer: current version %s: %w", name, err)
	}

	if !payloadChanged(current, payload) && !metadataChanged(existing, doc) {
		acc.skip(existing.ID)
		return i.applyPublishState(ctx, existing.ID, existing.Published(), doc.FrontMatter.Draft, opts)
	}

	if opts.DryRun {
		acc.skip(existing.ID)
		return nil
	}

	version, _, updateErr := i.items.Update(ctx, items.UpdateItemRequest{
		ItemID:       existing.ID,
		AuthorID:     author,
		Payload:      payload,
		LanguageCode: optionalString(doc.FrontMatter.Language),
		URLPath:      optionalString(doc.FrontMatter.URLPath),
	})
	if updateErr != nil {
		return fmt.Errorf("markdown importer: update %s: %w", name, updateErr)
	}
	acc.updated(version.ItemID)
	return i.applyPublishState(ctx, existing.ID, existing.Published(), doc.FrontMatter.Draft, opts)
}

// applyPublishState aligns the item's publish timestamp with the frontmatter
// draft flag. Drafts stay (or become) unpublished; everything else is live.
func (i *Importer) applyPublishState(ctx context.Context, itemID uuid.UUID, published, draft bool, opts interfaces.ImportOptions) error {
	if opts.DryRun {
		return nil
	}
	switch {
	case draft && published:
		if _, err := i.items.Unpublish(ctx, itemID); err != nil {
			return fmt.Errorf("markdown importer: unpublish %s: %w", itemID, err)
		}
	case !draft && !published:
		if _, err := i.items.Publish(ctx, itemID); err != nil {
			return fmt.Errorf("markdown importer: publish %s: %w", itemID, err)
		}
	}
	return nil
}

func (i *Importer) deleteOrphaned(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions, acc *syncAccumulator) error {
	existing, err := i.items.ListByScope(ctx, opts.Scope)
	if err != nil {
		return fmt.Errorf("markdown importer: list scope %s: %w", opts.Scope, err)
	}

	docNames := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		name, nameErr := documentName(doc)
		if nameErr != nil {
			continue
		}
		docNames[name] = struct{}{}
	}

	for _, item := range existing {
		if _, ok := docNames[item.Name]; ok {
			continue
		}
		if opts.DryRun {
			acc.deleted++
			continue
		}

		req := items.DeleteItemRequest{ItemID: item.ID}
		if opts.AuthorID != uuid.Nil {
			initiator := opts.AuthorID
			req.InitiatorID = &initiator
		}

		ok, _, deleteErr := i.items.Delete(ctx, req)
		if deleteErr != nil {
			return fmt.Errorf("markdown importer: delete %s: %w", item.Name, deleteErr)
		}
		if !ok {
			acc.skipped++
			continue
		}
		acc.deleted++
	}

	return nil
}

func documentName(doc *interfaces.Document) (string, error) {
	if doc == nil {
		return "", ErrNameMissing
	}
	if name := strings.TrimSpace(doc.FrontMatter.Name); name != "" {
		if !items.IsValidName(name) {
			normalized, err := items.NormalizeName(name)
			if err != nil {
				return "", fmt.Errorf("markdown importer: invalid name %q: %w", name, err)
			}
			return normalized, nil
		}
		return name, nil
	}

	base := fileBaseName(doc.FilePath)
	if base == "" {
		return "", ErrNameMissing
	}
	normalized, err := items.NormalizeName(base)
	if err != nil {
		return "", fmt.Errorf("markdown importer: derive name from %q: %w", doc.FilePath, err)
	}
	return normalized, nil
}

func documentKind(doc *interfaces.Document, opts interfaces.ImportOptions) items.Kind {
	if kind := items.Kind(strings.TrimSpace(doc.FrontMatter.Kind)); kind.IsValid() {
		return kind
	}
	if kind := items.Kind(strings.TrimSpace(opts.DefaultKind)); kind.IsValid() {
		return kind
	}
	return items.KindDocument
}

func buildPayload(doc *interfaces.Document, name string) items.VersionPayload {
	title := strings.TrimSpace(doc.FrontMatter.Title)
	if title == "" {
		title = fallbackTitle(name)
	}
	return items.VersionPayload{
		Title: title,
		Head:  optionalString(doc.FrontMatter.Head),
		Body:  string(doc.Body),
	}
}

func authorFor(doc *interfaces.Document, opts interfaces.ImportOptions) uuid.UUID {
	if opts.AuthorID != uuid.Nil {
		return opts.AuthorID
	}
	if ref := strings.TrimSpace(doc.FrontMatter.Author); ref != "" {
		return identity.AuthorUUID(ref)
	}
	return identity.AuthorUUID("markdown-importer")
}

func payloadChanged(current *items.Version, payload items.VersionPayload) bool {
	if current == nil {
		return true
	}
	if strings.TrimSpace(current.Title) != strings.TrimSpace(payload.Title) {
		return true
	}
	if stringValue(current.Head) != stringValue(payload.Head) {
		return true
	}
	return current.Body != payload.Body
}

func metadataChanged(item *items.Item, doc *interfaces.Document) bool {
	if lang := strings.TrimSpace(doc.FrontMatter.Language); lang != "" && lang != stringValue(item.LanguageCode) {
		return true
	}
	if path := strings.TrimSpace(doc.FrontMatter.URLPath); path != "" && path != stringValue(item.URLPath) {
		return true
	}
	return false
}

func sortDocuments(docs []*interfaces.Document) []*interfaces.Document {
	sorted := append([]*interfaces.Document(nil), docs...)
	slices.SortFunc(sorted, func(a, b *interfaces.Document) int {
		if a == nil || b == nil {
			return 0
		}
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return sorted
}

func fileBaseName(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	if idx := strings.LastIndex(path, "."); idx > 0 {
		path = path[:idx]
	}
	return path
}

func fallbackTitle(name string) string {
	if name == "" {
		return "Untitled"
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for idx, word := range words {
		if word == "" {
			continue
		}
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

type importAccumulator struct {
	createdIDs   []uuid.UUID
	updatedIDs   []uuid.UUID
	skippedIDs   []uuid.UUID
	skippedCount int
	errors       []error
}

func newImportAccumulator() *importAccumulator {
	return &importAccumulator{
		createdIDs: []uuid.UUID{},
		updatedIDs: []uuid.UUID{},
		skippedIDs: []uuid.UUID{},
		errors:     []error{},
	}
}

func (a *importAccumulator) created(id uuid.UUID) {
	if id != uuid.Nil {
		a.createdIDs = append(a.createdIDs, id)
	}
}

func (a *importAccumulator) updated(id uuid.UUID) {
	if id != uuid.Nil {
		a.updatedIDs = append(a.updatedIDs, id)
	}
}

// skip counts every skipped document; only known item ids make it into the
// id list (a dry-run creation has none yet).
func (a *importAccumulator) skip(id uuid.UUID) {
	a.skippedCount++
	if id != uuid.Nil {
		a.skippedIDs = append(a.skippedIDs, id)
	}
}

func (a *importAccumulator) addError(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

func (a *importAccumulator) result() *interfaces.ImportResult {
	return &interfaces.ImportResult{
		CreatedItemIDs: a.createdIDs,
		UpdatedItemIDs: a.updatedIDs,
		SkippedItemIDs: a.skippedIDs,
		Skipped:        a.skippedCount,
		Errors:         a.errors,
	}
}

type syncAccumulator struct {
	created int
	updated int
	deleted int
	skipped int
	errors  []error
}

func newSyncAccumulator() *syncAccumulator {
	return &syncAccumulator{
		errors: []error{},
	}
}

func (s *syncAccumulator) merge(res *interfaces.ImportResult) {
	if res == nil {
		return
	}
	s.created += len(res.CreatedItemIDs)
	s.updated += len(res.UpdatedItemIDs)
	s.skipped += res.Skipped
	s.errors = append(s.errors, res.Errors...)
}

func (s *syncAccumulator) addError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *syncAccumulator) result() *interfaces.SyncResult {
	return &interfaces.SyncResult{
		Created: s.created,
		Updated: s.updated,
		Deleted: s.deleted,
		Skipped: s.skipped,
		Errors:  s.errors,
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
