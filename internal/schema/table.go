package schema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
)

// Definition describes one block kind: its default caption, palette category, placement rules,
// typed default config and decoder.
type Definition struct {
	Kind      document.Kind
	Label     string
	Category  Category
	Named     bool
	Container bool
	Placement Placement

	defaults func() Config
	decode   func(map[string]any) (Config, error)
}

// DefinitionOption customises a definition built with Define.
type DefinitionOption func(*Definition)

// Named marks kinds whose blocks carry a submission name.
func Named() DefinitionOption {
	return func(d *Definition) { d.Named = true }
}

// Container marks kinds that accept children in hierarchical documents.
func Container() DefinitionOption {
	return func(d *Definition) { d.Container = true }
}

// RootOnly restricts a kind to the top level.
func RootOnly() DefinitionOption {
	return func(d *Definition) { d.Placement = PlacementRoot }
}

// ChildOnly requires a kind to sit under a container.
func ChildOnly() DefinitionOption {
	return func(d *Definition) { d.Placement = PlacementChild }
}

// Define builds a definition whose config decodes into T. The defaults value is encoded into a
// fresh map every time Defaults is called.
func Define[T Config](kind document.Kind, label string, category Category, defaults T, opts ...DefinitionOption) Definition {
	def := Definition{
		Kind:      kind,
		Label:     label,
		Category:  category,
		Placement: PlacementAny,
		defaults:  func() Config { return defaults },
		decode: func(raw map[string]any) (Config, error) {
			var out T
			if err := document.FromMap(raw, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&def)
		}
	}
	return def
}

// Defaults returns a fresh canonical config map holding the kind's default values.
func (d Definition) Defaults() map[string]any {
	if d.defaults == nil {
		return map[string]any{}
	}
	out, err := document.ToMap(d.defaults())
	if err != nil {
		return map[string]any{}
	}
	return out
}

// Decode converts a raw config map into the kind's typed record.
func (d Definition) Decode(raw map[string]any) (Config, error) {
	if d.decode == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, d.Kind)
	}
	cfg, err := d.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: decode %s config: %w", d.Kind, err)
	}
	return cfg, nil
}

// Validate decodes and validates a raw config map.
func (d Definition) Validate(raw map[string]any) ValidationErrors {
	cfg, err := d.Decode(raw)
	if err != nil {
		return ValidationErrors{{
			Kind:    d.Kind,
			Field:   "config",
			Code:    CodeConfigDecode,
			Message: err.Error(),
		}}
	}
	return issuesFromError(d.Kind, "", cfg.Validate())
}

// Table holds the closed set of kinds available to one document type.
type Table struct {
	Type         document.Type
	Hierarchical bool
	RemovePolicy RemovePolicy

	kinds       []document.Kind
	definitions map[document.Kind]Definition
}

// NewTable constructs a table from the given definitions. Later definitions replace earlier
// ones with the same kind.
func NewTable(docType document.Type, hierarchical bool, policy RemovePolicy, defs ...Definition) *Table {
	t := &Table{
		Type:         docType,
		Hierarchical: hierarchical,
		RemovePolicy: policy,
		definitions:  make(map[document.Kind]Definition, len(defs)),
	}
	for _, def := range defs {
		t.add(def)
	}
	return t
}

func (t *Table) add(def Definition) {
	kind := document.Kind(strings.TrimSpace(string(def.Kind)))
	if kind == "" {
		return
	}
	def.Kind = kind
	if _, exists := t.definitions[kind]; !exists {
		t.kinds = append(t.kinds, kind)
	}
	t.definitions[kind] = def
}

// Lookup returns the definition for kind.
func (t *Table) Lookup(kind document.Kind) (Definition, bool) {
	if t == nil {
		return Definition{}, false
	}
	def, ok := t.definitions[kind]
	return def, ok
}

// Kinds lists the table's kinds in registration order.
func (t *Table) Kinds() []document.Kind {
	if t == nil {
		return nil
	}
	return append([]document.Kind(nil), t.kinds...)
}

// Definitions lists the table's definitions in registration order.
func (t *Table) Definitions() []Definition {
	if t == nil {
		return nil
	}
	out := make([]Definition, 0, len(t.kinds))
	for _, kind := range t.kinds {
		out = append(out, t.definitions[kind])
	}
	return out
}

// ValidateBlock checks config against the constraints of kind. Unknown kinds yield a single
// kind.unsupported issue.
func (t *Table) ValidateBlock(kind document.Kind, config map[string]any) ValidationErrors {
	def, ok := t.Lookup(kind)
	if !ok {
		return ValidationErrors{{
			Kind:    kind,
			Field:   "kind",
			Code:    CodeUnsupportedKind,
			Message: fmt.Sprintf("kind %q is not available for %s documents", kind, t.typeName()),
		}}
	}
	return def.Validate(config)
}

func (t *Table) typeName() string {
	if t == nil {
		return "unknown"
	}
	return string(t.Type)
}
