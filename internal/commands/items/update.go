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

const updateItemMessageType = "content.item.update"

// UpdateItemCommand requests a new version for an existing item.
type UpdateItemCommand struct {
	ItemID       uuid.UUID `json:"item_id"`
	AuthorID     uuid.UUID `json:"author_id"`
	Title        string    `json:"title"`
	Head         *string   `json:"head,omitempty"`
	Body         string    `json:"body"`
	ImagePath    *string   `json:"image_path,omitempty"`
	LanguageCode *string   `json:"language_code,omitempty"`
	URLPath      *string   `json:"url_path,omitempty"`
}

// Type implements command.Message.
func (UpdateItemCommand) Type() string { return updateItemMessageType }

// Validate ensures the command carries the required identifiers.
func (m UpdateItemCommand) Validate() error {
	errs := validation.Errors{}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("content.item.update.item_id_required", "item_id is required")
	}
	if m.AuthorID == uuid.Nil {
		errs["author_id"] = validation.NewError("content.item.update.author_required", "author_id is required")
	}
	if m.Body == "" {
		errs["body"] = validation.NewError("content.item.update.body_required", "body is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateItemHandler appends versions via the lifecycle service.
type UpdateItemHandler struct {
	service items.Service
	logger  interfaces.Logger
	timeout time.Duration
}

// UpdateItemOption customises the update handler.
type UpdateItemOption func(*UpdateItemHandler)

// UpdateItemWithTimeout overrides the default execution timeout.
func UpdateItemWithTimeout(timeout time.Duration) UpdateItemOption {
	return func(h *UpdateItemHandler) {
		h.timeout = timeout
	}
}

// NewUpdateItemHandler constructs a handler wired to the provided service.
func NewUpdateItemHandler(service items.Service, logger interfaces.Logger, opts ...UpdateItemOption) *UpdateItemHandler {
	handler := &UpdateItemHandler{
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

// Execute satisfies command.Commander[UpdateItemCommand].
func (h *UpdateItemHandler) Execute(ctx context.Context, msg UpdateItemCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	req := items.UpdateItemRequest{
		ItemID:   msg.ItemID,
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
	version, _, err := h.service.Update(ctx, req)
	if err != nil {
		return commands.WrapExecuteError(err)
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":  "item.update",
		"item_id":    msg.ItemID,
		"version_id": version.ID,
	}).Info("item.command.update.completed")
	return nil
}
