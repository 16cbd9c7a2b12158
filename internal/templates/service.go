package templates

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/logging"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/tree"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

// MetaTemplateKey records the source template in Document.Meta.
const MetaTemplateKey = "template"

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service lists templates and turns them into documents.
type Service struct {
	catalog    *Catalog
	normalizer *normalizer.Normalizer
	logger     interfaces.Logger
}

// NewService constructs a template service. A nil catalog yields an empty one.
func NewService(catalog *Catalog, n *normalizer.Normalizer, opts ...ServiceOption) *Service {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if n == nil {
		n = normalizer.New()
	}
	s := &Service{catalog: catalog, normalizer: n, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Catalog exposes the underlying catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// List returns the templates available for docType, or all of them when docType is empty.
func (s *Service) List(docType document.Type) []Template {
	return s.catalog.List(docType)
}

// Import loads the *.md templates found in dir into the catalog and reports how many were added.
func (s *Service) Import(dir string) (int, error) {
	before := s.catalog.Len()
	if err := s.catalog.LoadDir(dir); err != nil {
		s.logger.Error("templates.import.failed", "dir", dir, "error", err)
		return s.catalog.Len() - before, err
	}
	added := s.catalog.Len() - before
	s.logger.Info("templates.import", "dir", dir, "added", added)
	return added, nil
}

// Instantiate builds a normalised document from a template. Every block receives a fresh id
// and symbolic parents are resolved to those ids in a single resolver pass.
func (s *Service) Instantiate(templateID, documentID string) (*normalizer.Result, error) {
	tpl, err := s.catalog.Get(templateID)
	if err != nil {
		return nil, err
	}
	settings, err := tpl.DocumentSettings()
	if err != nil {
		return nil, err
	}

	blocks, err := s.freshBlocks(tpl)
	if err != nil {
		return nil, err
	}
	resolved := tree.Resolve(blocks)
	if err := resolved.Err(); err != nil {
		s.logger.Error("templates.instantiate.structure", "template", tpl.ID, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTemplate, tpl.ID, err)
	}

	doc := document.Document{
		ID:       strings.TrimSpace(documentID),
		Type:     tpl.Type,
		Title:    tpl.Name,
		Settings: settings,
		Blocks:   resolved.Blocks(),
		Meta:     map[string]any{MetaTemplateKey: tpl.ID},
	}
	result, err := s.normalizer.Normalize(doc)
	if err != nil {
		return nil, err
	}
	s.logger.Info("templates.instantiate",
		"template", tpl.ID,
		"document_id", result.Document.ID,
		"blocks", len(result.Document.Blocks),
		"issues", len(result.Issues),
	)
	return result, nil
}

// freshBlocks converts template blocks into document blocks with new ids. Parent refs naming a
// local template id are rewritten; symbolic slot refs are left for the resolver.
func (s *Service) freshBlocks(tpl Template) ([]document.Block, error) {
	taken := make(map[string]struct{}, len(tpl.Blocks))
	local := make(map[string]string, len(tpl.Blocks))
	blocks := make([]document.Block, 0, len(tpl.Blocks))
	for _, src := range tpl.Blocks {
		id, err := s.normalizer.NewBlockID(func(candidate string) bool {
			_, ok := taken[candidate]
			return ok
		})
		if err != nil {
			return nil, err
		}
		taken[id] = struct{}{}
		if localID := strings.TrimSpace(src.ID); localID != "" {
			local[localID] = id
		}
		block := document.Block{
			ID:     id,
			Kind:   src.Kind,
			Label:  src.Label,
			Name:   src.Name,
			Config: document.CloneMap(src.Config),
			Order:  src.Order,
		}
		if ref := strings.TrimSpace(src.ParentRef); ref != "" {
			block.ParentRef = document.Ref(ref)
		}
		blocks = append(blocks, block)
	}
	for i := range blocks {
		if ref := blocks[i].Parent(); ref != "" {
			if id, ok := local[ref]; ok {
				blocks[i].ParentRef = document.Ref(id)
			}
		}
	}
	return blocks, nil
}
