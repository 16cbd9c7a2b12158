package documentscmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site-builder/internal/commands"
	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

const (
	instantiateTemplateMessageType = "sitebuilder.templates.instantiate"
	importTemplatesMessageType     = "sitebuilder.templates.import"
)

// InstantiateTemplateCommand creates a document from a template and commits it.
type InstantiateTemplateCommand struct {
	TemplateID string `json:"template_id"`
	DocumentID string `json:"document_id"`

	OnCommitted func(*document.Document) `json:"-"`
}

// Type implements command.Message.
func (InstantiateTemplateCommand) Type() string { return instantiateTemplateMessageType }

// Validate implements command.Message.
func (m InstantiateTemplateCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.TemplateID, validation.By(requiredText("template_id"))),
		validation.Field(&m.DocumentID, validation.By(requiredText("document_id"))),
	)
}

// InstantiateTemplateHandler instantiates templates and stores the result.
type InstantiateTemplateHandler struct {
	inner *commands.Handler[InstantiateTemplateCommand]
}

// NewInstantiateTemplateHandler constructs a handler wired to the template service and store.
func NewInstantiateTemplateHandler(tpl TemplateService, store DocumentStore, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[InstantiateTemplateCommand]) *InstantiateTemplateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg InstantiateTemplateCommand) error {
		if !gates.templatesEnabled() {
			return ErrTemplatesDisabled
		}
		if !gates.storageEnabled() {
			return ErrStorageDisabled
		}
		result, err := tpl.Instantiate(strings.TrimSpace(msg.TemplateID), strings.TrimSpace(msg.DocumentID))
		if err != nil {
			return err
		}
		saved, err := store.Commit(ctx, result.Document)
		if err != nil {
			return err
		}
		if msg.OnCommitted != nil {
			msg.OnCommitted(saved)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[InstantiateTemplateCommand]{
		commands.WithLogger[InstantiateTemplateCommand](baseLogger),
		commands.WithOperation[InstantiateTemplateCommand]("templates.instantiate"),
		commands.WithMessageFields(func(msg InstantiateTemplateCommand) map[string]any {
			return map[string]any{
				"template_id": msg.TemplateID,
				"document_id": msg.DocumentID,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[InstantiateTemplateCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &InstantiateTemplateHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[InstantiateTemplateCommand].
func (h *InstantiateTemplateHandler) Execute(ctx context.Context, msg InstantiateTemplateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportTemplatesCommand loads markdown templates from a directory into the catalog.
type ImportTemplatesCommand struct {
	Directory string `json:"directory"`
}

// Type implements command.Message.
func (ImportTemplatesCommand) Type() string { return importTemplatesMessageType }

// Validate implements command.Message.
func (m ImportTemplatesCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Directory, validation.By(requiredText("directory"))),
	)
}

// ImportTemplatesHandler imports template directories.
type ImportTemplatesHandler struct {
	inner *commands.Handler[ImportTemplatesCommand]
}

// NewImportTemplatesHandler constructs a handler wired to the template service.
func NewImportTemplatesHandler(tpl TemplateService, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ImportTemplatesCommand]) *ImportTemplatesHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(_ context.Context, msg ImportTemplatesCommand) error {
		if !gates.templatesEnabled() {
			return ErrTemplatesDisabled
		}
		_, err := tpl.Import(strings.TrimSpace(msg.Directory))
		return err
	}

	handlerOpts := []commands.HandlerOption[ImportTemplatesCommand]{
		commands.WithLogger[ImportTemplatesCommand](baseLogger),
		commands.WithOperation[ImportTemplatesCommand]("templates.import"),
		commands.WithMessageFields(func(msg ImportTemplatesCommand) map[string]any {
			return map[string]any{"directory": msg.Directory}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportTemplatesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportTemplatesCommand].
func (h *ImportTemplatesHandler) Execute(ctx context.Context, msg ImportTemplatesCommand) error {
	return h.inner.Execute(ctx, msg)
}
