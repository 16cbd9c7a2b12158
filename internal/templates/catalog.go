package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-site-builder/internal/document"
)

//go:embed catalog/*.md
var builtinFS embed.FS

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Catalog holds templates in registration order. It is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	order     []string
	templates map[string]Template
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{templates: map[string]Template{}}
}

// Builtin returns a catalog holding the embedded templates.
func Builtin() (*Catalog, error) {
	catalog := NewCatalog()
	if err := catalog.LoadFS(builtinFS, "catalog"); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Add registers a template. Ids must be unique within the catalog.
func (c *Catalog) Add(tpl Template) error {
	tpl.ID = strings.TrimSpace(tpl.ID)
	if err := tpl.Validate(); err != nil {
		return err
	}
	tpl.Type, _ = document.ParseType(string(tpl.Type))
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.templates[tpl.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTemplate, tpl.ID)
	}
	c.templates[tpl.ID] = tpl.clone()
	c.order = append(c.order, tpl.ID)
	return nil
}

// Get returns a copy of the template with id.
func (c *Catalog) Get(id string) (Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.templates[strings.TrimSpace(id)]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return tpl.clone(), nil
}

// List returns the templates in registration order. A non-empty docType filters the result.
func (c *Catalog) List(docType document.Type) []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		tpl := c.templates[id]
		if docType != "" && tpl.Type != docType {
			continue
		}
		out = append(out, tpl.clone())
	}
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// LoadFS adds every *.md template found directly under dir, in file name order.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("templates: read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	for _, name := range names {
		file := path.Join(dir, name)
		source, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", file, err)
		}
		tpl, err := ParseMarkdown(source)
		if err != nil {
			return fmt.Errorf("templates: %s: %w", file, err)
		}
		if tpl.ID == "" {
			tpl.ID = strings.TrimSuffix(name, path.Ext(name))
		}
		if err := c.Add(tpl); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir adds the *.md templates stored in a directory on disk.
func (c *Catalog) LoadDir(dir string) error {
	return c.LoadFS(os.DirFS(dir), ".")
}

// LoadJSON adds templates from a JSON array.
func (c *Catalog) LoadJSON(r io.Reader) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	var list []Template
	if err := decoder.Decode(&list); err != nil {
		return fmt.Errorf("templates: decode catalog: %w", err)
	}
	for _, tpl := range list {
		if err := c.Add(tpl); err != nil {
			return err
		}
	}
	return nil
}

// ParseMarkdown reads a template from a markdown file whose YAML front matter holds the
// template fields. The body becomes the description when the front matter has none.
func ParseMarkdown(source []byte) (Template, error) {
	var tpl Template
	body, err := frontmatter.Parse(bytes.NewReader(source), &tpl, yamlFormat)
	if err != nil {
		return Template{}, fmt.Errorf("parse front matter: %w", err)
	}
	if strings.TrimSpace(tpl.Description) == "" {
		tpl.Description = strings.TrimSpace(string(body))
	}
	return tpl, nil
}
