package normalizer

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/schema"
)

// FieldName derives a submission name from a label, e.g. "Email Address" becomes email_address.
// The kind is used when the label yields nothing.
func FieldName(label string, kind document.Kind) string {
	candidate := strings.TrimSpace(label)
	if candidate != "" {
		normalized, err := slug.Normalize(candidate)
		if err == nil && normalized != "" {
			return strings.ReplaceAll(normalized, "-", "_")
		}
	}
	return strings.ReplaceAll(string(kind), "-", "_")
}

// UniqueName returns name, or the first free name_N (N >= 2) when name is taken. The suffix
// is always appended to name as given, so an author's own digits survive.
func UniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for n := 2; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

// assignNames walks blocks in document order, fills missing names and resolves collisions.
// The first block keeps a contested name.
func assignNames(table *schema.Table, blocks []document.Block) []Rename {
	used := map[string]struct{}{}
	taken := func(name string) bool {
		_, ok := used[name]
		return ok
	}
	var renamed []Rename
	for i := range blocks {
		def, ok := table.Lookup(blocks[i].Kind)
		if !ok || !def.Named {
			continue
		}
		name := strings.TrimSpace(blocks[i].Name)
		if name == "" {
			name = FieldName(blocks[i].Label, blocks[i].Kind)
		}
		unique := UniqueName(name, taken)
		if unique != name {
			renamed = append(renamed, Rename{BlockID: blocks[i].ID, From: name, To: unique})
		}
		blocks[i].Name = unique
		used[unique] = struct{}{}
	}
	return renamed
}

// NamesInUse lists the names held by named blocks other than exceptID.
func NamesInUse(table *schema.Table, blocks []document.Block, exceptID string) map[string]struct{} {
	used := map[string]struct{}{}
	for _, block := range blocks {
		if block.ID == exceptID || block.Name == "" {
			continue
		}
		if def, ok := table.Lookup(block.Kind); ok && def.Named {
			used[block.Name] = struct{}{}
		}
	}
	return used
}
