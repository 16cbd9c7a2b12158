package documentscmd

import (
	"errors"

	"github.com/goliatone/go-site-builder/internal/commands"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

// HandlerSet groups the handlers built by RegisterDocumentCommands. Template handlers are nil
// when no template service is supplied.
type HandlerSet struct {
	Commit      *CommitDocumentHandler
	Delete      *DeleteDocumentHandler
	Instantiate *InstantiateTemplateHandler
	Import      *ImportTemplatesHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	commitOpts      []commands.HandlerOption[CommitDocumentCommand]
	deleteOpts      []commands.HandlerOption[DeleteDocumentCommand]
	instantiateOpts []commands.HandlerOption[InstantiateTemplateCommand]
	importOpts      []commands.HandlerOption[ImportTemplatesCommand]
}

// WithCommitHandlerOptions forwards options to the commit handler.
func WithCommitHandlerOptions(opts ...commands.HandlerOption[CommitDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.commitOpts = append(cfg.commitOpts, opts...)
	}
}

// WithDeleteHandlerOptions forwards options to the delete handler.
func WithDeleteHandlerOptions(opts ...commands.HandlerOption[DeleteDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.deleteOpts = append(cfg.deleteOpts, opts...)
	}
}

// WithInstantiateHandlerOptions forwards options to the template instantiation handler.
func WithInstantiateHandlerOptions(opts ...commands.HandlerOption[InstantiateTemplateCommand]) Option {
	return func(cfg *options) {
		cfg.instantiateOpts = append(cfg.instantiateOpts, opts...)
	}
}

// WithImportHandlerOptions forwards options to the template import handler.
func WithImportHandlerOptions(opts ...commands.HandlerOption[ImportTemplatesCommand]) Option {
	return func(cfg *options) {
		cfg.importOpts = append(cfg.importOpts, opts...)
	}
}

// RegisterDocumentCommands builds the document handlers and registers them with reg when it is
// not nil.
func RegisterDocumentCommands(reg commands.CommandRegistry, store DocumentStore, tpl TemplateService, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if store == nil {
		return nil, errors.New("documents command registration: store is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "documents")
	set := &HandlerSet{
		Commit: NewCommitDocumentHandler(store, logger, gates, cfg.commitOpts...),
		Delete: NewDeleteDocumentHandler(store, logger, gates, cfg.deleteOpts...),
	}
	handlers := []any{set.Commit, set.Delete}
	if tpl != nil {
		set.Instantiate = NewInstantiateTemplateHandler(tpl, store, logger, gates, cfg.instantiateOpts...)
		set.Import = NewImportTemplatesHandler(tpl, logger, gates, cfg.importOpts...)
		handlers = append(handlers, set.Instantiate, set.Import)
	}

	if reg != nil {
		for _, handler := range handlers {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
