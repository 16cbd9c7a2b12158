package templates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
)

var (
	ErrTemplateNotFound  = errors.New("templates: template not found")
	ErrInvalidTemplate   = errors.New("templates: invalid template")
	ErrDuplicateTemplate = errors.New("templates: duplicate template id")
)

// Block is a pre-filled block of a template. ID is optional and local to the template; ParentRef
// may name a local id or a root slot such as PARENT_1.
type Block struct {
	ID        string         `json:"id,omitempty" yaml:"id"`
	Kind      document.Kind  `json:"kind" yaml:"kind"`
	Label     string         `json:"label,omitempty" yaml:"label"`
	Name      string         `json:"name,omitempty" yaml:"name"`
	Config    map[string]any `json:"config,omitempty" yaml:"config"`
	Order     int            `json:"order,omitempty" yaml:"order"`
	ParentRef string         `json:"parentRef,omitempty" yaml:"parentRef"`
}

// Template is a read only catalog entry used to seed new documents.
type Template struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description"`
	Icon        string         `json:"icon,omitempty" yaml:"icon"`
	Type        document.Type  `json:"type" yaml:"type"`
	Settings    map[string]any `json:"settings,omitempty" yaml:"settings"`
	Blocks      []Block        `json:"blocks" yaml:"blocks"`
}

// Validate checks the catalog level requirements of a template.
func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTemplate)
	}
	if _, ok := document.ParseType(string(t.Type)); !ok {
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidTemplate, t.ID, t.Type)
	}
	for idx, block := range t.Blocks {
		if strings.TrimSpace(string(block.Kind)) == "" {
			return fmt.Errorf("%w: %s block %d has no kind", ErrInvalidTemplate, t.ID, idx)
		}
	}
	return nil
}

// DocumentSettings decodes the template settings into document settings.
func (t Template) DocumentSettings() (document.Settings, error) {
	var settings document.Settings
	if len(t.Settings) == 0 {
		return settings, nil
	}
	if err := document.FromMap(t.Settings, &settings); err != nil {
		return document.Settings{}, fmt.Errorf("%w: %s settings: %v", ErrInvalidTemplate, t.ID, err)
	}
	return settings, nil
}

func (t Template) clone() Template {
	out := t
	out.Settings = document.CloneMap(t.Settings)
	out.Blocks = make([]Block, len(t.Blocks))
	for i, block := range t.Blocks {
		block.Config = document.CloneMap(block.Config)
		out.Blocks[i] = block
	}
	return out
}
