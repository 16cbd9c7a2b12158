package tree

import (
	"slices"

	"github.com/goliatone/go-site-builder/internal/document"
)

// OrderBase is the value assigned to the first sibling when orders are renumbered.
const OrderBase = 1

// Node is a block placed inside a forest.
type Node struct {
	Block    document.Block
	Parent   *Node
	Children []*Node

	index int
}

// ID returns the block id.
func (n *Node) ID() string {
	if n == nil {
		return ""
	}
	return n.Block.ID
}

// IsDescendantOf reports whether ancestor appears on n's parent chain.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	if n == nil || ancestor == nil {
		return false
	}
	for current := n.Parent; current != nil; current = current.Parent {
		if current == ancestor {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors.
func (n *Node) Depth() int {
	depth := 0
	for current := n.Parent; current != nil; current = current.Parent {
		depth++
	}
	return depth
}

// Forest is an ordered set of block trees.
type Forest struct {
	Roots []*Node
	nodes map[string]*Node
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{nodes: make(map[string]*Node)}
}

// Find returns the node with id, or nil when it is not part of the forest.
func (f *Forest) Find(id string) *Node {
	if f == nil {
		return nil
	}
	return f.nodes[id]
}

// Len returns the number of nodes in the forest.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.nodes)
}

// Siblings returns the list n belongs to, including n.
func (f *Forest) Siblings(n *Node) []*Node {
	if n == nil || n.Parent == nil {
		return f.Roots
	}
	return n.Parent.Children
}

// IndexOf returns n's position among its siblings, or -1.
func (f *Forest) IndexOf(n *Node) int {
	return slices.Index(f.Siblings(n), n)
}

// Detach unlinks n from its parent (or the root list) and returns its former sibling index.
// The node stays registered so it can be inserted elsewhere.
func (f *Forest) Detach(n *Node) int {
	if n == nil {
		return -1
	}
	idx := f.IndexOf(n)
	if idx < 0 {
		return -1
	}
	if n.Parent == nil {
		f.Roots = slices.Delete(f.Roots, idx, idx+1)
	} else {
		n.Parent.Children = slices.Delete(n.Parent.Children, idx, idx+1)
	}
	n.Parent = nil
	return idx
}

// Insert places n (and its subtree) under parent at index. A nil parent targets the root list;
// out of range indexes are clamped.
func (f *Forest) Insert(parent *Node, index int, n *Node) {
	if n == nil {
		return
	}
	n.Parent = parent
	if parent == nil {
		index = clamp(index, len(f.Roots))
		f.Roots = slices.Insert(f.Roots, index, n)
	} else {
		index = clamp(index, len(parent.Children))
		parent.Children = slices.Insert(parent.Children, index, n)
	}
	f.register(n)
}

// Remove detaches n and forgets its whole subtree.
func (f *Forest) Remove(n *Node) {
	if n == nil {
		return
	}
	f.Detach(n)
	walkNode(n, 0, func(child *Node, _ int) bool {
		delete(f.nodes, child.Block.ID)
		return true
	})
}

// Walk visits nodes in pre-order. Returning false from fn skips the node's children.
func (f *Forest) Walk(fn func(n *Node, depth int) bool) {
	if f == nil {
		return
	}
	for _, root := range f.Roots {
		walkNode(root, 0, fn)
	}
}

// Flatten renumbers sibling orders densely, rewrites parent references from the structure and
// returns the blocks in canonical pre-order.
func (f *Forest) Flatten() []document.Block {
	out := make([]document.Block, 0, f.Len())
	if f == nil {
		return out
	}
	renumber(f.Roots, nil)
	f.Walk(func(n *Node, _ int) bool {
		out = append(out, n.Block.Clone())
		return true
	})
	return out
}

func (f *Forest) register(n *Node) {
	if f.nodes == nil {
		f.nodes = make(map[string]*Node)
	}
	walkNode(n, 0, func(child *Node, _ int) bool {
		f.nodes[child.Block.ID] = child
		return true
	})
}

func (f *Forest) reindex() {
	f.nodes = make(map[string]*Node)
	for _, root := range f.Roots {
		f.register(root)
	}
}

func renumber(siblings []*Node, parent *Node) {
	for idx, node := range siblings {
		node.Block.Order = idx + OrderBase
		if parent == nil {
			node.Block.ParentRef = nil
		} else {
			node.Block.ParentRef = document.Ref(parent.Block.ID)
		}
		renumber(node.Children, node)
	}
}

func walkNode(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walkNode(child, depth+1, fn)
	}
}

func clamp(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}
