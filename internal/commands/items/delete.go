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

const deleteItemMessageType = "content.item.delete"

// DeleteItemCommand requests removal of an item and its version history.
type DeleteItemCommand struct {
	ItemID      uuid.UUID  `json:"item_id"`
	InitiatorID *uuid.UUID `json:"initiator_id,omitempty"`
}

// Type implements command.Message.
func (DeleteItemCommand) Type() string { return deleteItemMessageType }

// Validate ensures the command carries the item identifier.
func (m DeleteItemCommand) Validate() error {
	errs := validation.Errors{}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("content.item.delete.item_id_required", "item_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteItemHandler removes items via the lifecycle service.
type DeleteItemHandler struct {
	service items.Service
	logger  interfaces.Logger
	timeout time.Duration
}

// DeleteItemOption customises the delete handler.
type DeleteItemOption func(*DeleteItemHandler)

// DeleteItemWithTimeout overrides the default execution timeout.
func DeleteItemWithTimeout(timeout time.Duration) DeleteItemOption {
	return func(h *DeleteItemHandler) {
		h.timeout = timeout
	}
}

// NewDeleteItemHandler constructs a handler wired to the provided service.
func NewDeleteItemHandler(service items.Service, logger interfaces.Logger, opts ...DeleteItemOption) *DeleteItemHandler {
	handler := &DeleteItemHandler{
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

// Execute satisfies command.Commander[DeleteItemCommand]. A delete blocked by
// a storage constraint is reported as a warning, not an error, mirroring the
// service contract.
func (h *DeleteItemHandler) Execute(ctx context.Context, msg DeleteItemCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	deleted, _, err := h.service.Delete(ctx, items.DeleteItemRequest{
		ItemID:      msg.ItemID,
		InitiatorID: msg.InitiatorID,
	})
	if err != nil {
		return commands.WrapExecuteError(err)
	}

	logger := logging.WithFields(h.logger, map[string]any{
		"operation": "item.delete",
		"item_id":   msg.ItemID,
	})
	if !deleted {
		logger.Warn("item.command.delete.blocked")
		return nil
	}
	logger.Info("item.command.delete.completed")
	return nil
}
