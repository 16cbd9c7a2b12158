package sitebuilder

import (
	"context"

	"github.com/goliatone/go-site-builder/internal/builder"
	documentscmd "github.com/goliatone/go-site-builder/internal/commands/documents"
	"github.com/goliatone/go-site-builder/internal/di"
	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/documents"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/render"
	"github.com/goliatone/go-site-builder/internal/schema"
	"github.com/goliatone/go-site-builder/internal/templates"
	"github.com/goliatone/go-site-builder/internal/wire"
)

// Document exports the structured document model.
type Document = document.Document

// Block exports a single document block.
type Block = document.Block

// Settings exports the per-type document settings.
type Settings = document.Settings

// DocumentType exports the document type enumeration.
type DocumentType = document.Type

// Kind exports block kinds.
type Kind = document.Kind

const (
	TypeForm   = document.TypeForm
	TypeMenu   = document.TypeMenu
	TypeFooter = document.TypeFooter
	TypePage   = document.TypePage
)

// NormalizeResult exports the normalizer outcome.
type NormalizeResult = normalizer.Result

// ValidationErrors exports block validation issues.
type ValidationErrors = schema.ValidationErrors

// RenderTree exports the renderer output.
type RenderTree = render.Tree

// Fragment exports a rendered block.
type Fragment = render.Fragment

// Template exports catalog entries.
type Template = templates.Template

// Session exports the builder session.
type Session = builder.Session

// DocumentService exports the storage collaborator.
type DocumentService = *documents.Service

// CommandHandlers exports the document command handler set.
type CommandHandlers = *documentscmd.HandlerSet

// Option exports container overrides.
type Option = di.Option

// Module is the top level runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg and optional container overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Normalize brings doc into canonical form.
func (m *Module) Normalize(doc Document) (*NormalizeResult, error) {
	return m.container.Normalizer().Normalize(doc)
}

// Render builds the render tree for doc.
func (m *Module) Render(doc Document) RenderTree {
	return m.container.Dispatcher().Render(doc)
}

// NewSession starts a builder session.
func (m *Module) NewSession() *Session {
	return m.container.NewSession()
}

// Templates lists the catalog entries for docType, or all of them when docType is empty.
func (m *Module) Templates(docType DocumentType) []Template {
	return m.container.Templates().List(docType)
}

// Instantiate builds a normalised document from a template.
func (m *Module) Instantiate(templateID, documentID string) (*NormalizeResult, error) {
	return m.container.Templates().Instantiate(templateID, documentID)
}

// Documents returns the storage collaborator, or an error when storage is disabled.
func (m *Module) Documents() (DocumentService, error) {
	return m.container.Documents()
}

// Commit normalises and stores doc.
func (m *Module) Commit(ctx context.Context, doc Document) (*Document, error) {
	docs, err := m.container.Documents()
	if err != nil {
		return nil, err
	}
	return docs.Commit(ctx, doc)
}

// Commands returns the command handlers, nil unless commands are enabled.
func (m *Module) Commands() CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands()
}

// DecodeDocument validates and decodes a JSON document envelope.
func DecodeDocument(data []byte) (Document, error) {
	return wire.Decode(data)
}

// EncodeDocument serialises doc as JSON.
func EncodeDocument(doc Document) ([]byte, error) {
	return wire.Encode(doc)
}

// DocumentSchema returns the JSON schema of the document envelope.
func DocumentSchema() []byte {
	return wire.Schema()
}
