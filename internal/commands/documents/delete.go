package documentscmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site-builder/internal/commands"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

const deleteDocumentMessageType = "sitebuilder.documents.delete"

// DeleteDocumentCommand removes a stored document.
type DeleteDocumentCommand struct {
	DocumentID string `json:"document_id"`
}

// Type implements command.Message.
func (DeleteDocumentCommand) Type() string { return deleteDocumentMessageType }

// Validate implements command.Message.
func (m DeleteDocumentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DocumentID, validation.By(requiredText("document_id"))),
	)
}

// DeleteDocumentHandler deletes documents from the store.
type DeleteDocumentHandler struct {
	inner *commands.Handler[DeleteDocumentCommand]
}

// NewDeleteDocumentHandler constructs a handler wired to store.
func NewDeleteDocumentHandler(store DocumentStore, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DeleteDocumentCommand]) *DeleteDocumentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg DeleteDocumentCommand) error {
		if !gates.storageEnabled() {
			return ErrStorageDisabled
		}
		return store.Delete(ctx, strings.TrimSpace(msg.DocumentID))
	}

	handlerOpts := []commands.HandlerOption[DeleteDocumentCommand]{
		commands.WithLogger[DeleteDocumentCommand](baseLogger),
		commands.WithOperation[DeleteDocumentCommand]("documents.delete"),
		commands.WithMessageFields(func(msg DeleteDocumentCommand) map[string]any {
			return map[string]any{"document_id": msg.DocumentID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteDocumentCommand].
func (h *DeleteDocumentHandler) Execute(ctx context.Context, msg DeleteDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

func requiredText(field string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError("sitebuilder.documents."+field+"_required", field+" is required")
		}
		return nil
	}
}
