package render

import (
	"fmt"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/schema"
	"github.com/goliatone/go-site-builder/internal/tree"
)

const (
	ComponentUnsupported = "block.unsupported"
	ComponentBroken      = "block.broken"
)

// Fragment is the rendered form of one block.
type Fragment struct {
	BlockID     string         `json:"blockId"`
	Kind        document.Kind  `json:"kind"`
	Component   string         `json:"component"`
	Label       string         `json:"label,omitempty"`
	Name        string         `json:"name,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
	HTML        string         `json:"html,omitempty"`
	Children    []Fragment     `json:"children,omitempty"`
	Unsupported bool           `json:"unsupported,omitempty"`
	Broken      bool           `json:"broken,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
}

// Count returns the number of fragments in this subtree, including the fragment itself.
func (f Fragment) Count() int {
	total := 1
	for _, child := range f.Children {
		total += child.Count()
	}
	return total
}

// Tree is the render output for one document.
type Tree struct {
	DocumentID string            `json:"documentId"`
	Type       document.Type     `json:"type"`
	Title      string            `json:"title,omitempty"`
	Settings   document.Settings `json:"settings"`
	Fragments  []Fragment        `json:"fragments"`
}

// Count returns the number of fragments in the tree.
func (t Tree) Count() int {
	total := 0
	for _, fragment := range t.Fragments {
		total += fragment.Count()
	}
	return total
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRegistry overrides the schema registry used to decode block configs.
func WithRegistry(registry *schema.Registry) Option {
	return func(d *Dispatcher) {
		if registry != nil {
			d.registry = registry
		}
	}
}

// WithMarkdown sets the markdown converter.
func WithMarkdown(md *Markdown) Option {
	return func(d *Dispatcher) {
		if md != nil {
			d.markdown = md
		}
	}
}

// WithLinkResolver enables route based links.
func WithLinkResolver(resolver LinkResolver) Option {
	return func(d *Dispatcher) {
		d.links = resolver
	}
}

// WithRenderer registers or replaces the render func for kind.
func WithRenderer(kind document.Kind, fn RenderFunc) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.renderers[kind] = fn
		}
	}
}

// Dispatcher maps blocks to fragments through a kind keyed table. It holds no mutable state
// after construction and is safe for concurrent use.
type Dispatcher struct {
	registry  *schema.Registry
	markdown  *Markdown
	links     LinkResolver
	renderers map[document.Kind]RenderFunc
}

// NewDispatcher constructs a dispatcher with the built in render table.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:  schema.Default(),
		markdown:  NewMarkdown(MarkdownOptions{SafeMode: true}),
		renderers: builtinRenderers(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Render converts doc into a render tree. It never fails: unknown kinds become unsupported
// fragments and blocks that cannot be decoded or attached become broken fragments without
// children. doc is not modified.
func (d *Dispatcher) Render(doc document.Document) Tree {
	out := Tree{
		DocumentID: doc.ID,
		Type:       doc.Type,
		Title:      doc.Title,
		Settings:   doc.Settings.Clone(),
		Fragments:  []Fragment{},
	}

	// Unknown document types render every block as unsupported.
	table, _ := d.registry.Table(doc.Type)

	blocks := doc.Blocks
	if table != nil && !table.Hierarchical {
		blocks = make([]document.Block, len(doc.Blocks))
		for i, block := range doc.Blocks {
			block.ParentRef = nil
			blocks[i] = block
		}
	}

	resolved := tree.Resolve(blocks, tree.WithForwardReferences(true))
	for _, root := range resolved.Forest.Roots {
		out.Fragments = append(out.Fragments, d.renderNode(table, root))
	}
	for _, orphan := range resolved.Orphans {
		var messages []string
		for _, issue := range resolved.IssuesFor(orphan) {
			messages = append(messages, issue.Error())
		}
		out.Fragments = append(out.Fragments, broken(orphan.Block, messages))
	}
	return out
}

func (d *Dispatcher) renderNode(table *schema.Table, node *tree.Node) Fragment {
	block := node.Block
	def, known := table.Lookup(block.Kind)
	fn, renderable := d.renderers[block.Kind]
	if !known || !renderable {
		fragment := unsupported(block)
		fragment.Children = d.renderChildren(table, node)
		return fragment
	}

	if issues := def.Validate(block.Config); len(issues) > 0 {
		messages := make([]string, 0, len(issues))
		for _, issue := range issues {
			messages = append(messages, issue.Error())
		}
		return broken(block, messages)
	}
	cfg, err := def.Decode(block.Config)
	if err != nil {
		return broken(block, []string{err.Error()})
	}

	fragment, err := fn(d.context(), block, cfg)
	if err != nil {
		return broken(block, []string{err.Error()})
	}
	fragment.BlockID = block.ID
	fragment.Kind = block.Kind
	fragment.Label = block.Label
	fragment.Name = block.Name
	fragment.Children = d.renderChildren(table, node)
	return fragment
}

func (d *Dispatcher) renderChildren(table *schema.Table, node *tree.Node) []Fragment {
	if len(node.Children) == 0 {
		return nil
	}
	children := make([]Fragment, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, d.renderNode(table, child))
	}
	return children
}

func (d *Dispatcher) context() *Context {
	return &Context{markdown: d.markdown, links: d.links}
}

func unsupported(block document.Block) Fragment {
	return Fragment{
		BlockID:     block.ID,
		Kind:        block.Kind,
		Component:   ComponentUnsupported,
		Label:       block.Label,
		Unsupported: true,
		Errors:      []string{fmt.Sprintf("render: kind %q is not supported", block.Kind)},
	}
}

func broken(block document.Block, messages []string) Fragment {
	if len(messages) == 0 {
		messages = []string{"render: block could not be rendered"}
	}
	return Fragment{
		BlockID:   block.ID,
		Kind:      block.Kind,
		Component: ComponentBroken,
		Label:     block.Label,
		Broken:    true,
		Errors:    messages,
	}
}
