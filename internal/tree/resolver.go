package tree

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
)

// DefaultSlotPrefix is the prefix of symbolic parent references that address a root slot.
const DefaultSlotPrefix = "PARENT_"

// Options configure Resolve.
type Options struct {
	SlotPrefix        string
	ForwardReferences bool
}

// Option mutates resolver options.
type Option func(*Options)

// WithSlotPrefix overrides the symbolic reference prefix.
func WithSlotPrefix(prefix string) Option {
	return func(o *Options) {
		if strings.TrimSpace(prefix) != "" {
			o.SlotPrefix = prefix
		}
	}
}

// WithForwardReferences lets children appear before their parent in the flat list. Unresolved
// references are retried once every block has been seen.
func WithForwardReferences(enabled bool) Option {
	return func(o *Options) {
		o.ForwardReferences = enabled
	}
}

// Result is the outcome of resolving a flat block list.
type Result struct {
	Forest *Forest
	// Orphans are the tops of subtrees that could not be attached to the forest.
	Orphans []*Node
	Issues  []*ReferenceError
}

// Blocks returns the resolved blocks in canonical pre-order with dense sibling orders.
func (r *Result) Blocks() []document.Block {
	if r == nil {
		return []document.Block{}
	}
	return r.Forest.Flatten()
}

// Err returns a StructureError when any issue was recorded.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	return asStructureError(r.Issues)
}

// IssuesFor returns the issues recorded against the input position of n.
func (r *Result) IssuesFor(n *Node) []*ReferenceError {
	if r == nil || n == nil {
		return nil
	}
	var out []*ReferenceError
	for _, issue := range r.Issues {
		if issue.Index == n.index {
			out = append(out, issue)
		}
	}
	return out
}

// Resolve links a flat block list into a forest. Parent references may name an already seen
// block id or a root slot such as PARENT_2, where the slot is the root's declared order or its
// ordinal among roots when no order is declared. Symbolic references are rewritten to the
// concrete parent id. Blocks that cannot be attached are reported and kept out of the forest,
// together with their descendants. Sibling orders are renumbered densely starting at 1.
func Resolve(blocks []document.Block, opts ...Option) *Result {
	cfg := Options{SlotPrefix: DefaultSlotPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	firstIndex := make(map[string]int, len(blocks))
	for idx, block := range blocks {
		id := strings.TrimSpace(block.ID)
		if id == "" {
			continue
		}
		if _, ok := firstIndex[id]; !ok {
			firstIndex[id] = idx
		}
	}

	res := &Result{Forest: NewForest()}
	emitted := make(map[string]*Node, len(blocks))
	slots := make(map[string]string)
	rootOrdinal := 0
	var deferred []*Node

	report := func(node *Node, ref string, err error) {
		res.Issues = append(res.Issues, &ReferenceError{
			BlockID:   node.Block.ID,
			Index:     node.index,
			ParentRef: ref,
			Err:       err,
		})
	}
	quarantine := func(node *Node, ref string, err error) {
		report(node, ref, err)
		res.Orphans = append(res.Orphans, node)
	}

	for idx, block := range blocks {
		node := &Node{Block: block.Clone(), index: idx}
		id := strings.TrimSpace(node.Block.ID)
		node.Block.ID = id
		ref := node.Block.Parent()

		if id == "" {
			quarantine(node, ref, ErrMissingBlockID)
			continue
		}
		if firstIndex[id] != idx {
			quarantine(node, ref, ErrDuplicateBlockID)
			continue
		}

		if ref == "" {
			node.Block.ParentRef = nil
			rootOrdinal++
			slot := rootOrdinal
			if node.Block.Order > 0 {
				slot = node.Block.Order
			}
			slots[cfg.SlotPrefix+strconv.Itoa(slot)] = id
			res.Forest.Roots = append(res.Forest.Roots, node)
			emitted[id] = node
			continue
		}

		if ref == id {
			emitted[id] = node
			quarantine(node, ref, ErrCyclicParentReference)
			continue
		}
		if parent, ok := emitted[ref]; ok {
			attach(parent, node)
			emitted[id] = node
			continue
		}
		if target, ok := slots[ref]; ok {
			parent := emitted[target]
			node.Block.ParentRef = document.Ref(parent.Block.ID)
			attach(parent, node)
			emitted[id] = node
			continue
		}
		_, exists := firstIndex[ref]
		if exists || strings.HasPrefix(ref, cfg.SlotPrefix) {
			if cfg.ForwardReferences {
				deferred = append(deferred, node)
				continue
			}
			if exists {
				emitted[id] = node
				quarantine(node, ref, ErrForwardReference)
				continue
			}
		}
		emitted[id] = node
		quarantine(node, ref, ErrDanglingParentReference)
	}

	if len(deferred) > 0 {
		for progress := true; progress && len(deferred) > 0; {
			progress = false
			remaining := deferred[:0]
			for _, node := range deferred {
				ref := node.Block.Parent()
				if target, ok := slots[ref]; ok {
					ref = target
				}
				if parent, ok := emitted[ref]; ok {
					node.Block.ParentRef = document.Ref(parent.Block.ID)
					attach(parent, node)
					emitted[node.Block.ID] = node
					progress = true
					continue
				}
				remaining = append(remaining, node)
			}
			deferred = remaining
		}
		// Whatever is still waiting either names a missing slot or loops back on itself.
		for _, node := range deferred {
			ref := node.Block.Parent()
			if _, exists := firstIndex[ref]; !exists {
				quarantine(node, ref, ErrDanglingParentReference)
				continue
			}
			quarantine(node, ref, ErrCyclicParentReference)
		}
		res.Forest.Walk(func(n *Node, _ int) bool {
			sort.SliceStable(n.Children, func(i, j int) bool {
				return n.Children[i].index < n.Children[j].index
			})
			return true
		})
	}

	sort.SliceStable(res.Issues, func(i, j int) bool {
		return res.Issues[i].Index < res.Issues[j].Index
	})
	res.Forest.reindex()
	renumber(res.Forest.Roots, nil)
	return res
}

func attach(parent, child *Node) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

// CheckCycles reports every block whose parent chain does not terminate at a root. Chains are
// followed through concrete ids only.
func CheckCycles(blocks []document.Block) []*ReferenceError {
	parents := make(map[string]string, len(blocks))
	for _, block := range blocks {
		id := strings.TrimSpace(block.ID)
		if id == "" {
			continue
		}
		if _, seen := parents[id]; !seen {
			parents[id] = block.Parent()
		}
	}

	var issues []*ReferenceError
	for idx, block := range blocks {
		id := strings.TrimSpace(block.ID)
		if id == "" {
			continue
		}
		visited := map[string]struct{}{id: {}}
		for current := parents[id]; current != ""; current = parents[current] {
			if _, loop := visited[current]; loop {
				issues = append(issues, &ReferenceError{
					BlockID:   id,
					Index:     idx,
					ParentRef: block.Parent(),
					Err:       ErrCyclicParentReference,
				})
				break
			}
			visited[current] = struct{}{}
		}
	}
	return issues
}

// Build links already concrete blocks into a forest. It fails with a StructureError when any
// block cannot be placed.
func Build(blocks []document.Block) (*Forest, error) {
	res := Resolve(blocks, WithForwardReferences(true))
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Forest, nil
}
