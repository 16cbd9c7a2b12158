package document

import (
	"maps"
	"strings"
)

// Type selects which block schema table applies to a document.
type Type string

const (
	TypeForm   Type = "form"
	TypeMenu   Type = "menu"
	TypeFooter Type = "footer"
	TypePage   Type = "page"
)

// Types lists every supported document type in a stable order.
func Types() []Type {
	return []Type{TypeForm, TypeMenu, TypeFooter, TypePage}
}

// ParseType normalises a raw type value. The boolean reports whether the type is known.
func ParseType(raw string) (Type, bool) {
	candidate := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Types() {
		if candidate == known {
			return known, true
		}
	}
	return candidate, false
}

// Kind is the discriminator selecting a block's behaviour and config shape.
type Kind string

// Block is one polymorphic unit of structured content: a form field, a menu item or a page section.
type Block struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Label     string         `json:"label"`
	Name      string         `json:"name,omitempty"`
	Config    map[string]any `json:"config"`
	Order     int            `json:"order"`
	ParentRef *string        `json:"parentRef,omitempty"`
}

// IsRoot reports whether the block sits at the top level.
func (b Block) IsRoot() bool {
	return b.ParentRef == nil || strings.TrimSpace(*b.ParentRef) == ""
}

// Parent returns the trimmed parent reference, or an empty string for roots.
func (b Block) Parent() string {
	if b.ParentRef == nil {
		return ""
	}
	return strings.TrimSpace(*b.ParentRef)
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	out := b
	out.Config = CloneMap(b.Config)
	if b.ParentRef != nil {
		out.ParentRef = Ref(*b.ParentRef)
	}
	return out
}

// Settings holds document level options. Each document type reads the subset it understands;
// the rest pass through untouched.
type Settings struct {
	SubmitText     string            `json:"submitText,omitempty"`
	SuccessMessage string            `json:"successMessage,omitempty"`
	ErrorMessage   string            `json:"errorMessage,omitempty"`
	RedirectURL    string            `json:"redirectUrl,omitempty"`
	Location       string            `json:"location,omitempty"`
	Columns        int               `json:"columns,omitempty"`
	Copyright      string            `json:"copyright,omitempty"`
	StyleTokens    map[string]string `json:"styleTokens,omitempty"`
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	out := s
	if len(s.StyleTokens) > 0 {
		out.StyleTokens = maps.Clone(s.StyleTokens)
	} else {
		out.StyleTokens = nil
	}
	return out
}

// Document is an ordered forest of blocks plus document level settings.
//
// Blocks are stored flat in canonical pre-order: every parent precedes its children and
// siblings appear in ascending order. Version is owned by the storage layer and is never
// interpreted here.
type Document struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	Title    string         `json:"title,omitempty"`
	Version  string         `json:"version,omitempty"`
	Settings Settings       `json:"settings"`
	Blocks   []Block        `json:"blocks"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Settings = d.Settings.Clone()
	out.Blocks = make([]Block, len(d.Blocks))
	for i, block := range d.Blocks {
		out.Blocks[i] = block.Clone()
	}
	out.Meta = CloneMap(d.Meta)
	return out
}

// Find returns the index of the block with the given id, or -1.
func (d Document) Find(id string) int {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// Ref returns a pointer to a copy of the provided parent reference.
func Ref(value string) *string {
	return &value
}

// CloneMap deep copies JSON-like maps.
func CloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(typed))
		for i, item := range typed {
			out[i] = CloneMap(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}
