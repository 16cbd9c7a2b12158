package documentscmd

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site-builder/internal/commands"
	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

const commitDocumentMessageType = "sitebuilder.documents.commit"

// CommitDocumentCommand stores a document. Document.Version, when set, must match the stored
// version.
type CommitDocumentCommand struct {
	Document document.Document `json:"document"`

	// OnCommitted receives the saved document.
	OnCommitted func(*document.Document) `json:"-"`
}

// Type implements command.Message.
func (CommitDocumentCommand) Type() string { return commitDocumentMessageType }

// Validate checks the envelope before the document reaches the store.
func (m CommitDocumentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Document.ID) == "" {
		errs["document.id"] = validation.NewError("sitebuilder.documents.commit.id_required", "document id is required")
	}
	if _, ok := document.ParseType(string(m.Document.Type)); !ok {
		errs["document.type"] = validation.NewError("sitebuilder.documents.commit.type_invalid", "document type must be form, menu, footer or page")
	}
	for i, block := range m.Document.Blocks {
		if strings.TrimSpace(string(block.Kind)) == "" {
			errs[fmt.Sprintf("document.blocks[%d].kind", i)] = validation.NewError("sitebuilder.documents.commit.kind_required", "block kind is required")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CommitDocumentHandler commits documents through the shared handler foundation.
type CommitDocumentHandler struct {
	inner *commands.Handler[CommitDocumentCommand]
}

// NewCommitDocumentHandler constructs a handler wired to store.
func NewCommitDocumentHandler(store DocumentStore, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CommitDocumentCommand]) *CommitDocumentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CommitDocumentCommand) error {
		if !gates.storageEnabled() {
			return ErrStorageDisabled
		}
		saved, err := store.Commit(ctx, msg.Document)
		if err != nil {
			return err
		}
		if msg.OnCommitted != nil {
			msg.OnCommitted(saved)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CommitDocumentCommand]{
		commands.WithLogger[CommitDocumentCommand](baseLogger),
		commands.WithOperation[CommitDocumentCommand]("documents.commit"),
		commands.WithMessageFields(func(msg CommitDocumentCommand) map[string]any {
			fields := map[string]any{
				"document_id":   msg.Document.ID,
				"document_type": string(msg.Document.Type),
				"blocks":        len(msg.Document.Blocks),
			}
			if msg.Document.Version != "" {
				fields["version"] = msg.Document.Version
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CommitDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CommitDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CommitDocumentCommand].
func (h *CommitDocumentHandler) Execute(ctx context.Context, msg CommitDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}
