package builder

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/schema"
	"github.com/goliatone/go-site-builder/internal/tree"
)

// AddBlock inserts a block of kind with its default label and config right after afterID.
// An empty afterID appends the block to the top level. The new block id is returned.
func (s *Session) AddBlock(kind document.Kind, afterID string) (string, error) {
	var created string
	err := s.edit("add", func(forest *tree.Forest, doc *document.Document) error {
		node, err := s.newNode("add", forest, doc, kind)
		if err != nil {
			return err
		}
		var parent *tree.Node
		index := len(forest.Roots)
		if strings.TrimSpace(afterID) != "" {
			anchor, err := s.lookup("add", forest, afterID)
			if err != nil {
				return err
			}
			parent = anchor.Parent
			index = forest.IndexOf(anchor) + 1
		}
		forest.Insert(parent, index, node)
		created = node.ID()
		return nil
	})
	if err != nil {
		return "", err
	}
	return created, nil
}

// AddChild appends a block of kind as the last child of parentID.
func (s *Session) AddChild(kind document.Kind, parentID string) (string, error) {
	var created string
	err := s.edit("add_child", func(forest *tree.Forest, doc *document.Document) error {
		if !s.table.Hierarchical {
			return opError("add_child", parentID, ErrNotHierarchical)
		}
		parent, err := s.lookup("add_child", forest, parentID)
		if err != nil {
			return err
		}
		if !s.isContainer(parent.Block.Kind) {
			return opError("add_child", parentID, ErrInvalidParent)
		}
		node, err := s.newNode("add_child", forest, doc, kind)
		if err != nil {
			return err
		}
		forest.Insert(parent, len(parent.Children), node)
		created = node.ID()
		return nil
	})
	if err != nil {
		return "", err
	}
	return created, nil
}

// UpdateBlock merges partial into the block config. Keys set to nil fall back to the kind
// default. The merged config must satisfy the kind constraints or the update is rejected.
func (s *Session) UpdateBlock(id string, partial map[string]any) error {
	return s.edit("update", func(forest *tree.Forest, _ *document.Document) error {
		node, err := s.lookup("update", forest, id)
		if err != nil {
			return err
		}
		config := document.CloneMap(node.Block.Config)
		if config == nil {
			config = map[string]any{}
		}
		for key, value := range partial {
			if value == nil {
				delete(config, key)
				continue
			}
			config[key] = value
		}
		canonical, err := document.CanonicalMap(config)
		if err != nil {
			return opError("update", node.ID(), err)
		}
		if def, ok := s.table.Lookup(node.Block.Kind); ok {
			canonical = withDefaults(def.Defaults(), canonical)
		}
		if issues := s.table.ValidateBlock(node.Block.Kind, canonical); len(issues) > 0 {
			return &OperationError{Op: "update", BlockID: node.ID(), Issues: issues.WithBlockID(node.ID()), Err: ErrValidationFailed}
		}
		node.Block.Config = canonical
		return nil
	})
}

// SetLabel changes the caption of a block.
func (s *Session) SetLabel(id, label string) error {
	return s.edit("set_label", func(forest *tree.Forest, _ *document.Document) error {
		node, err := s.lookup("set_label", forest, id)
		if err != nil {
			return err
		}
		node.Block.Label = strings.TrimSpace(label)
		return nil
	})
}

// SetName changes the submission name of a field block. Taken names receive a numeric suffix;
// an empty name is derived from the label.
func (s *Session) SetName(id, name string) error {
	return s.edit("set_name", func(forest *tree.Forest, doc *document.Document) error {
		node, err := s.lookup("set_name", forest, id)
		if err != nil {
			return err
		}
		def, ok := s.table.Lookup(node.Block.Kind)
		if !ok || !def.Named {
			return opError("set_name", node.ID(), ErrNameNotSupported)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = normalizer.FieldName(node.Block.Label, node.Block.Kind)
		}
		used := normalizer.NamesInUse(s.table, doc.Blocks, node.ID())
		node.Block.Name = normalizer.UniqueName(name, func(candidate string) bool {
			_, taken := used[candidate]
			return taken
		})
		return nil
	})
}

// UpdateSettings replaces the document settings.
func (s *Session) UpdateSettings(settings document.Settings) error {
	return s.edit("update_settings", func(_ *tree.Forest, doc *document.Document) error {
		doc.Settings = settings.Clone()
		return nil
	})
}

// RemoveBlock deletes a block. Descendants follow the table's remove policy: menus promote
// them into the removed block's position, footers remove them too.
func (s *Session) RemoveBlock(id string) error {
	return s.edit("remove", func(forest *tree.Forest, _ *document.Document) error {
		node, err := s.lookup("remove", forest, id)
		if err != nil {
			return err
		}
		if s.table.RemovePolicy == schema.RemovePromote && len(node.Children) > 0 {
			parent := node.Parent
			index := forest.Detach(node)
			children := node.Children
			node.Children = nil
			for offset, child := range children {
				forest.Insert(parent, index+offset, child)
			}
		}
		forest.Remove(node)
		return nil
	})
}

// DuplicateBlock copies a block, and its subtree for containers, right after the source. Every
// copy receives a fresh id and, for field kinds, a unique name. The id of the top copy is returned.
func (s *Session) DuplicateBlock(id string) (string, error) {
	var created string
	err := s.edit("duplicate", func(forest *tree.Forest, doc *document.Document) error {
		source, err := s.lookup("duplicate", forest, id)
		if err != nil {
			return err
		}
		used := normalizer.NamesInUse(s.table, doc.Blocks, "")
		reserved := map[string]struct{}{}
		clone, err := s.copyNode(forest, source, used, reserved)
		if err != nil {
			return err
		}
		forest.Insert(source.Parent, forest.IndexOf(source)+1, clone)
		created = clone.ID()
		return nil
	})
	if err != nil {
		return "", err
	}
	return created, nil
}

// Reorder moves a block to newIndex among its current siblings. The index is zero based and
// clamped to the sibling range.
func (s *Session) Reorder(id string, newIndex int) error {
	return s.edit("reorder", func(forest *tree.Forest, _ *document.Document) error {
		node, err := s.lookup("reorder", forest, id)
		if err != nil {
			return err
		}
		parent := node.Parent
		forest.Detach(node)
		forest.Insert(parent, newIndex, node)
		return nil
	})
}

// Reparent moves a block, with its subtree, to the end of newParentID's children. An empty
// newParentID moves it to the top level.
func (s *Session) Reparent(id, newParentID string) error {
	return s.edit("reparent", func(forest *tree.Forest, _ *document.Document) error {
		if !s.table.Hierarchical {
			return opError("reparent", id, ErrNotHierarchical)
		}
		node, err := s.lookup("reparent", forest, id)
		if err != nil {
			return err
		}
		var target *tree.Node
		if strings.TrimSpace(newParentID) != "" {
			target, err = s.lookup("reparent", forest, newParentID)
			if err != nil {
				return err
			}
			if target == node || target.IsDescendantOf(node) {
				return opError("reparent", node.ID(), ErrCyclicReparent)
			}
			if !s.isContainer(target.Block.Kind) {
				return opError("reparent", node.ID(), ErrInvalidParent)
			}
		}
		forest.Detach(node)
		siblings := len(forest.Roots)
		if target != nil {
			siblings = len(target.Children)
		}
		forest.Insert(target, siblings, node)
		return nil
	})
}

func (s *Session) newNode(op string, forest *tree.Forest, doc *document.Document, kind document.Kind) (*tree.Node, error) {
	kind = document.Kind(strings.TrimSpace(string(kind)))
	def, ok := s.table.Lookup(kind)
	if !ok {
		return nil, opError(op, "", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind))
	}
	id, err := s.newID(forest)
	if err != nil {
		return nil, opError(op, "", err)
	}
	block := document.Block{
		ID:     id,
		Kind:   kind,
		Label:  def.Label,
		Config: def.Defaults(),
	}
	if def.Named {
		used := normalizer.NamesInUse(s.table, doc.Blocks, "")
		block.Name = normalizer.UniqueName(normalizer.FieldName(def.Label, kind), func(candidate string) bool {
			_, taken := used[candidate]
			return taken
		})
	}
	return &tree.Node{Block: block}, nil
}

func (s *Session) copyNode(forest *tree.Forest, source *tree.Node, used, reserved map[string]struct{}) (*tree.Node, error) {
	id, err := s.normalizer.NewBlockID(func(candidate string) bool {
		if _, ok := reserved[candidate]; ok {
			return true
		}
		if _, ok := s.issued[candidate]; ok {
			return true
		}
		return forest.Find(candidate) != nil
	})
	if err != nil {
		return nil, opError("duplicate", source.ID(), err)
	}
	reserved[id] = struct{}{}

	block := source.Block.Clone()
	block.ID = id
	block.ParentRef = nil
	if def, ok := s.table.Lookup(block.Kind); ok && def.Named && block.Name != "" {
		block.Name = normalizer.UniqueName(block.Name, func(candidate string) bool {
			_, taken := used[candidate]
			return taken
		})
		used[block.Name] = struct{}{}
	}

	clone := &tree.Node{Block: block}
	for _, child := range source.Children {
		copied, err := s.copyNode(forest, child, used, reserved)
		if err != nil {
			return nil, err
		}
		copied.Parent = clone
		clone.Children = append(clone.Children, copied)
	}
	return clone, nil
}

func (s *Session) isContainer(kind document.Kind) bool {
	def, ok := s.table.Lookup(kind)
	return ok && def.Container
}

// Palette lists the kinds that can be added to the working document, in table order.
func (s *Session) Palette() []schema.Definition {
	if s.table == nil {
		return nil
	}
	return s.table.Definitions()
}

// Block returns a copy of the block with id.
func (s *Session) Block(id string) (document.Block, bool) {
	idx := s.doc.Find(id)
	if idx < 0 {
		return document.Block{}, false
	}
	return s.doc.Blocks[idx].Clone(), true
}

func withDefaults(defaults, config map[string]any) map[string]any {
	if defaults == nil {
		defaults = map[string]any{}
	}
	for key, value := range config {
		defaults[key] = value
	}
	return defaults
}
