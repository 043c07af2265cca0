package itemscmd

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content/internal/commands"
	"github.com/goliatone/go-content/internal/logging"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/interfaces"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

const createItemMessageType = "content.item.create"

// CreateItemCommand requests creation of an item with its first version.
type CreateItemCommand struct {
	Scope        string    `json:"scope"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	AuthorID     uuid.UUID `json:"author_id"`
	Title        string    `json:"title"`
	Head         *string   `json:"head,omitempty"`
	Body         string    `json:"body"`
	ImagePath    *string   `json:"image_path,omitempty"`
	LanguageCode *string   `json:"language_code,omitempty"`
	URLPath      *string   `json:"url_path,omitempty"`
}

// Type implements command.Message.
func (CreateItemCommand) Type() string { return createItemMessageType }

// Validate ensures the command carries the required fields.
func (m CreateItemCommand) Validate() error {
	errs := validation.Errors{}
	if m.Scope == "" {
		errs["scope"] = validation.NewError("content.item.create.scope_required", "scope is required")
	}
	if m.Name == "" {
		errs["name"] = validation.NewError("content.item.create.name_required", "name is required")
	}
	if !items.Kind(m.Kind).IsValid() {
		errs["kind"] = validation.NewError("content.item.create.kind_invalid", "kind is not supported")
	}
	if m.AuthorID == uuid.Nil {
		errs["author_id"] = validation.NewError("content.item.create.author_required", "author_id is required")
	}
	if m.Body == "" {
		errs["body"] = validation.NewError("content.item.create.body_required", "body is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return items.ValidatePayload(items.Kind(m.Kind), items.VersionPayload{
		Title:     m.Title,
		Head:      m.Head,
		Body:      m.Body,
		ImagePath: m.ImagePath,
	})
}

// CreateItemHandler creates items via the lifecycle service.
type CreateItemHandler struct {
	service items.Service
	logger  interfaces.Logger
	timeout time.Duration
}

// CreateItemOption customises the create handler.
type CreateItemOption func(*CreateItemHandler)

// CreateItemWithTimeout overrides the default execution timeout.
func CreateItemWithTimeout(timeout time.Duration) CreateItemOption {
	return func(h *CreateItemHandler) {
		h.timeout = timeout
	}
}

// NewCreateItemHandler constructs a handler wired to the provided service.
func NewCreateItemHandler(service items.Service, logger interfaces.Logger, opts ...CreateItemOption) *CreateItemHandler {
	handler := &CreateItemHandler{
		service: service,
		logger:  commands.EnsureLogger(logger),
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// Execute satisfies command.Commander[CreateItemCommand].
func (h *CreateItemHandler) Execute(ctx context.Context, msg CreateItemCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	req := items.CreateItemRequest{
		Scope:    msg.Scope,
		Name:     msg.Name,
		Kind:     items.Kind(msg.Kind),
		AuthorID: msg.AuthorID,
		Payload: items.VersionPayload{
			Title:     msg.Title,
			Head:      msg.Head,
			Body:      msg.Body,
			ImagePath: msg.ImagePath,
		},
		LanguageCode: msg.LanguageCode,
		URLPath:      msg.URLPath,
	}
	version, _, err := h.service.Create(ctx, req)
	if err != nil {
		return commands.WrapExecuteError(err)
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":  "item.create",
		"item_id":    version.ItemID,
		"version_id": version.ID,
		"scope":      msg.Scope,
		"name":       msg.Name,
	}).Info("item.command.create.completed")
	return nil
}
