package documentscmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/normalizer"
)

var (
	ErrStorageDisabled   = errors.New("documents commands: storage is disabled")
	ErrTemplatesDisabled = errors.New("documents commands: templates are disabled")
)

// DocumentStore persists documents.
type DocumentStore interface {
	Commit(ctx context.Context, doc document.Document) (*document.Document, error)
	Delete(ctx context.Context, documentID string) error
}

// TemplateService instantiates and imports templates.
type TemplateService interface {
	Instantiate(templateID, documentID string) (*normalizer.Result, error)
	Import(dir string) (int, error)
}

// FeatureGates exposes the runtime toggles consulted by document handlers. Nil gates are open.
type FeatureGates struct {
	StorageEnabled   func() bool
	TemplatesEnabled func() bool
}

func (g FeatureGates) storageEnabled() bool {
	if g.StorageEnabled == nil {
		return true
	}
	return g.StorageEnabled()
}

func (g FeatureGates) templatesEnabled() bool {
	if g.TemplatesEnabled == nil {
		return true
	}
	return g.TemplatesEnabled()
}
