package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/identity"
	"github.com/goliatone/go-site-builder/internal/logging"
	"github.com/goliatone/go-site-builder/internal/schema"
	"github.com/goliatone/go-site-builder/internal/tree"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

var (
	ErrUnknownDocumentType = errors.New("normalizer: unknown document type")
	ErrBlockIDGeneration   = errors.New("normalizer: failed to generate block id")
)

// Rename records a name rewritten to keep submission names unique.
type Rename struct {
	BlockID string `json:"blockId"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// Result is the outcome of a successful normalisation. Issues are soft: the document is
// structurally valid but some block configs violate their kind constraints.
type Result struct {
	Document document.Document
	Issues   schema.ValidationErrors
	Renamed  []Rename
}

// Valid reports whether the document carries no validation issues.
func (r *Result) Valid() bool {
	return r != nil && len(r.Issues) == 0
}

// Normalizer repairs and canonicalises documents before they are persisted or rendered.
type Normalizer struct {
	registry     *schema.Registry
	ids          identity.Generator
	logger       interfaces.Logger
	resolverOpts []tree.Option
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRegistry overrides the block schema registry.
func WithRegistry(registry *schema.Registry) Option {
	return func(n *Normalizer) {
		if registry != nil {
			n.registry = registry
		}
	}
}

// WithIDGenerator overrides how missing block ids are assigned.
func WithIDGenerator(gen identity.Generator) Option {
	return func(n *Normalizer) {
		if gen != nil {
			n.ids = gen
		}
	}
}

// WithLogger sets the logger used for repair diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithResolverOptions forwards options to the tree resolver.
func WithResolverOptions(opts ...tree.Option) Option {
	return func(n *Normalizer) {
		n.resolverOpts = append(n.resolverOpts, opts...)
	}
}

// New constructs a normalizer backed by the default registry and ULID block ids.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		registry: schema.Default(),
		ids:      identity.NewGenerator(identity.StrategyULID),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Registry exposes the schema registry the normalizer validates against.
func (n *Normalizer) Registry() *schema.Registry {
	return n.registry
}

// Table returns the kind table for docType.
func (n *Normalizer) Table(docType document.Type) (*schema.Table, error) {
	parsed, ok := document.ParseType(string(docType))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentType, docType)
	}
	table, err := n.registry.Table(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDocumentType, err)
	}
	return table, nil
}

// NewBlockID returns a fresh id that taken does not report as used.
func (n *Normalizer) NewBlockID(taken func(string) bool) (string, error) {
	id, err := identity.Unique(n.ids, taken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBlockIDGeneration, err)
	}
	return id, nil
}

// Normalize repairs doc into its canonical form. The input is never mutated.
//
// Structural failures (dangling, forward, cyclic or duplicate references) and unknown document
// types are returned as errors. Everything else is repaired or reported through Result.Issues.
// Normalising an already normalised document returns an equal document.
func (n *Normalizer) Normalize(doc document.Document) (*Result, error) {
	table, err := n.Table(doc.Type)
	if err != nil {
		return nil, err
	}

	out := doc.Clone()
	out.Type = table.Type
	out.ID = strings.TrimSpace(out.ID)
	logger := logging.WithDocumentContext(n.logger, out.ID, string(out.Type), "normalize")

	if err := n.assignIDs(out.Blocks); err != nil {
		return nil, err
	}

	for i := range out.Blocks {
		if err := n.fillBlock(table, &out.Blocks[i], logger); err != nil {
			return nil, err
		}
	}

	meta, err := document.CanonicalMap(out.Meta)
	if err != nil {
		return nil, fmt.Errorf("normalizer: meta: %w", err)
	}
	if len(meta) == 0 {
		meta = nil
	}
	out.Meta = meta

	resolved := tree.Resolve(out.Blocks, n.resolverOpts...)
	if err := resolved.Err(); err != nil {
		logger.Warn("normalizer.structure.invalid", "error", err)
		return nil, err
	}
	out.Blocks = resolved.Blocks()

	result := &Result{}
	result.Issues = append(result.Issues, placementIssues(table, resolved.Forest)...)
	result.Renamed = assignNames(table, out.Blocks)
	for _, rename := range result.Renamed {
		logger.Warn("normalizer.name.collision", "block_id", rename.BlockID, "from", rename.From, "to", rename.To)
	}

	out.Settings = fillSettings(table, out.Settings, out.Blocks)

	for _, block := range out.Blocks {
		issues := table.ValidateBlock(block.Kind, block.Config)
		result.Issues = append(result.Issues, issues.WithBlockID(block.ID)...)
	}
	if len(result.Issues) > 0 {
		logger.Debug("normalizer.validation.issues", "count", len(result.Issues))
	}

	result.Document = out
	return result, nil
}

func (n *Normalizer) assignIDs(blocks []document.Block) error {
	used := make(map[string]struct{}, len(blocks))
	for i := range blocks {
		blocks[i].ID = strings.TrimSpace(blocks[i].ID)
		if blocks[i].ID != "" {
			used[blocks[i].ID] = struct{}{}
		}
	}
	taken := func(id string) bool {
		_, ok := used[id]
		return ok
	}
	for i := range blocks {
		if blocks[i].ID != "" {
			continue
		}
		id, err := n.NewBlockID(taken)
		if err != nil {
			return err
		}
		blocks[i].ID = id
		used[id] = struct{}{}
	}
	return nil
}

func (n *Normalizer) fillBlock(table *schema.Table, block *document.Block, logger interfaces.Logger) error {
	block.Kind = document.Kind(strings.TrimSpace(string(block.Kind)))
	def, known := table.Lookup(block.Kind)

	if known && strings.TrimSpace(block.Label) == "" {
		block.Label = def.Label
	}

	config := block.Config
	if known {
		config = mergeDefaults(def.Defaults(), config)
	}
	canonical, err := document.CanonicalMap(config)
	if err != nil {
		return fmt.Errorf("normalizer: block %s config: %w", block.ID, err)
	}
	block.Config = canonical

	if !table.Hierarchical && block.ParentRef != nil {
		logger.Warn("normalizer.parent.dropped", "block_id", block.ID, "parent_ref", *block.ParentRef)
		block.ParentRef = nil
	}
	if !known || !def.Named {
		block.Name = ""
	}
	return nil
}

func mergeDefaults(defaults, config map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(config))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range config {
		merged[key] = value
	}
	return merged
}

func placementIssues(table *schema.Table, forest *tree.Forest) schema.ValidationErrors {
	if !table.Hierarchical {
		return nil
	}
	var issues schema.ValidationErrors
	forest.Walk(func(node *tree.Node, _ int) bool {
		def, ok := table.Lookup(node.Block.Kind)
		if !ok {
			return true
		}
		issue := schema.ValidationError{BlockID: node.Block.ID, Kind: node.Block.Kind, Field: "parentRef"}
		switch {
		case def.Placement == schema.PlacementRoot && node.Parent != nil:
			issue.Code = schema.CodePlacementRoot
			issue.Message = fmt.Sprintf("%s blocks must sit at the top level", node.Block.Kind)
		case def.Placement == schema.PlacementChild && node.Parent == nil:
			issue.Code = schema.CodePlacementChild
			issue.Message = fmt.Sprintf("%s blocks must sit inside a container", node.Block.Kind)
		case node.Parent != nil && !isContainer(table, node.Parent.Block.Kind):
			issue.Code = schema.CodeParentNoChild
			issue.Message = fmt.Sprintf("%s blocks cannot hold children", node.Parent.Block.Kind)
		default:
			return true
		}
		issues = append(issues, issue)
		return true
	})
	return issues
}

func isContainer(table *schema.Table, kind document.Kind) bool {
	def, ok := table.Lookup(kind)
	return ok && def.Container
}

// fillSettings applies per type defaults without overwriting values already set.
func fillSettings(table *schema.Table, settings document.Settings, blocks []document.Block) document.Settings {
	out := settings.Clone()
	switch table.Type {
	case document.TypeForm:
		if strings.TrimSpace(out.SubmitText) == "" {
			out.SubmitText = DefaultSubmitText
		}
		if strings.TrimSpace(out.SuccessMessage) == "" {
			out.SuccessMessage = DefaultSuccessMessage
		}
		if strings.TrimSpace(out.ErrorMessage) == "" {
			out.ErrorMessage = DefaultErrorMessage
		}
	case document.TypeMenu:
		if strings.TrimSpace(out.Location) == "" {
			out.Location = DefaultMenuLocation
		}
	case document.TypeFooter:
		if out.Columns <= 0 {
			out.Columns = clampColumns(countRoots(blocks, schema.KindColumn))
		}
	}
	return out
}

const (
	DefaultSubmitText     = "Submit"
	DefaultSuccessMessage = "Thank you! Your submission has been received."
	DefaultErrorMessage   = "Something went wrong. Please try again."
	DefaultMenuLocation   = "header"
)

func countRoots(blocks []document.Block, kind document.Kind) int {
	count := 0
	for _, block := range blocks {
		if block.IsRoot() && block.Kind == kind {
			count++
		}
	}
	return count
}

func clampColumns(n int) int {
	if n < 1 {
		return 1
	}
	if n > 6 {
		return 6
	}
	return n
}
