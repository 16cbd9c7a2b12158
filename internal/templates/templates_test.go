package templates_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/identity"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/templates"
	"github.com/goliatone/go-site-builder/internal/tree"
)

func newService(t *testing.T, catalog *templates.Catalog) *templates.Service {
	t.Helper()
	n := normalizer.New(normalizer.WithIDGenerator(identity.NewCounter("blk_")))
	return templates.NewService(catalog, n)
}

func builtin(t *testing.T) *templates.Catalog {
	t.Helper()
	catalog, err := templates.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	return catalog
}

func TestBuiltinCatalogListsEmbeddedTemplates(t *testing.T) {
	catalog := builtin(t)

	var ids []string
	for _, tpl := range catalog.List("") {
		ids = append(ids, tpl.ID)
		if tpl.Description == "" {
			t.Fatalf("expected %s to carry a description from its body", tpl.ID)
		}
	}
	want := []string{"contact-form", "feedback-survey", "landing-page", "main-navigation", "newsletter-signup", "standard-footer"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	if got := len(catalog.List(document.TypeForm)); got != 3 {
		t.Fatalf("expected 3 form templates, got %d", got)
	}
}

func TestInstantiateContactForm(t *testing.T) {
	service := newService(t, builtin(t))

	result, err := service.Instantiate("contact-form", "contact")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	doc := result.Document
	if len(doc.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(doc.Blocks))
	}
	seen := map[string]struct{}{}
	for idx, block := range doc.Blocks {
		if block.Order != idx+1 {
			t.Fatalf("expected order %d for %s, got %d", idx+1, block.ID, block.Order)
		}
		if _, dup := seen[block.Name]; dup {
			t.Fatalf("duplicate name %q", block.Name)
		}
		seen[block.Name] = struct{}{}
	}
	if len(result.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", result.Issues)
	}
	names := []string{doc.Blocks[0].Name, doc.Blocks[1].Name, doc.Blocks[2].Name, doc.Blocks[3].Name}
	if strings.Join(names, ",") != "full_name,email,phone,message" {
		t.Fatalf("unexpected names %v", names)
	}
	if doc.ID != "contact" || doc.Type != document.TypeForm || doc.Title != "Contact Form" {
		t.Fatalf("unexpected document header %+v", doc)
	}
	if doc.Settings.SubmitText != "Send message" || doc.Settings.ErrorMessage != normalizer.DefaultErrorMessage {
		t.Fatalf("unexpected settings %+v", doc.Settings)
	}
	if doc.Meta[templates.MetaTemplateKey] != "contact-form" {
		t.Fatalf("expected template meta, got %v", doc.Meta)
	}
	if doc.Blocks[0].ID != "blk_1" || doc.Blocks[3].ID != "blk_4" {
		t.Fatalf("expected fresh ids, got %s..%s", doc.Blocks[0].ID, doc.Blocks[3].ID)
	}
}

func TestEveryBuiltinTemplateInstantiatesCleanly(t *testing.T) {
	catalog := builtin(t)
	for _, tpl := range catalog.List("") {
		t.Run(tpl.ID, func(t *testing.T) {
			result, err := newService(t, catalog).Instantiate(tpl.ID, tpl.ID)
			if err != nil {
				t.Fatalf("Instantiate: %v", err)
			}
			if len(result.Issues) != 0 {
				t.Fatalf("expected no issues, got %v", result.Issues)
			}
			if len(result.Document.Blocks) != len(tpl.Blocks) {
				t.Fatalf("expected %d blocks, got %d", len(tpl.Blocks), len(result.Document.Blocks))
			}
		})
	}
}

func TestInstantiateFooterResolvesSymbolicParents(t *testing.T) {
	service := newService(t, builtin(t))

	result, err := service.Instantiate("standard-footer", "footer")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	doc := result.Document
	columns := map[string]string{}
	for _, block := range doc.Blocks {
		if block.Kind == "column" {
			columns[block.ID] = block.Label
			if !block.IsRoot() {
				t.Fatalf("expected column %s at the top level", block.ID)
			}
			continue
		}
		if _, ok := columns[block.Parent()]; !ok {
			t.Fatalf("expected %s to point at a column id, got %q", block.ID, block.Parent())
		}
		if strings.HasPrefix(block.Parent(), tree.DefaultSlotPrefix) {
			t.Fatalf("expected symbolic parent to be rewritten, got %q", block.Parent())
		}
	}
	if len(columns) != 3 || doc.Settings.Columns != 3 {
		t.Fatalf("expected 3 columns, got %d (settings %d)", len(columns), doc.Settings.Columns)
	}
}

func TestInstantiateUnknownTemplate(t *testing.T) {
	_, err := newService(t, builtin(t)).Instantiate("missing", "doc")
	if !errors.Is(err, templates.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestInstantiateRejectsBrokenTemplate(t *testing.T) {
	catalog := templates.NewCatalog()
	err := catalog.Add(templates.Template{
		ID:   "broken-menu",
		Name: "Broken",
		Type: document.TypeMenu,
		Blocks: []templates.Block{
			{Kind: "link", Label: "Home", Config: map[string]any{"url": "/"}},
			{Kind: "link", Label: "Lost", ParentRef: "PARENT_9", Config: map[string]any{"url": "/lost"}},
		},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	_, err = newService(t, catalog).Instantiate("broken-menu", "menu")
	if !errors.Is(err, templates.ErrInvalidTemplate) || !errors.Is(err, tree.ErrDanglingParentReference) {
		t.Fatalf("expected invalid template with dangling reference, got %v", err)
	}
}

func TestLoadJSONRewritesLocalParentIDs(t *testing.T) {
	catalog := templates.NewCatalog()
	payload := `[{
		"id": "docs-menu",
		"name": "Docs",
		"type": "menu",
		"blocks": [
			{"id": "guides", "kind": "group", "label": "Guides"},
			{"id": "start", "kind": "link", "label": "Getting started", "parentRef": "guides", "config": {"url": "/start"}},
			{"kind": "link", "label": "API", "config": {"url": "/api"}}
		]
	}]`
	if err := catalog.LoadJSON(strings.NewReader(payload)); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	result, err := newService(t, catalog).Instantiate("docs-menu", "docs")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	blocks := result.Document.Blocks
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[1].Parent() != blocks[0].ID || blocks[0].ID == "guides" {
		t.Fatalf("expected local parent rewritten to %s, got %q", blocks[0].ID, blocks[1].Parent())
	}
	if blocks[2].Order != 2 || !blocks[2].IsRoot() {
		t.Fatalf("expected API link as second root, got %+v", blocks[2])
	}
}

func TestCatalogRejectsDuplicatesAndInvalidEntries(t *testing.T) {
	catalog := builtin(t)

	err := catalog.Add(templates.Template{ID: "contact-form", Type: document.TypeForm})
	if !errors.Is(err, templates.ErrDuplicateTemplate) {
		t.Fatalf("expected ErrDuplicateTemplate, got %v", err)
	}
	err = catalog.Add(templates.Template{ID: "odd", Type: "newsletter"})
	if !errors.Is(err, templates.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate for unknown type, got %v", err)
	}
	err = catalog.Add(templates.Template{ID: "blank", Type: document.TypeForm, Blocks: []templates.Block{{Label: "no kind"}}})
	if !errors.Is(err, templates.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate for missing kind, got %v", err)
	}
}

func TestLoadDirReadsMarkdownTemplates(t *testing.T) {
	dir := t.TempDir()
	source := "---\nname: Callback Request\ntype: form\nblocks:\n  - kind: phone\n    label: Phone\n    config:\n      required: true\n---\nAsk visitors for a phone number.\n"
	if err := os.WriteFile(filepath.Join(dir, "callback.md"), []byte(source), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	catalog := templates.NewCatalog()
	if err := catalog.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	tpl, err := catalog.Get("callback")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tpl.Name != "Callback Request" || tpl.Description != "Ask visitors for a phone number." {
		t.Fatalf("unexpected template %+v", tpl)
	}
	if catalog.Len() != 1 {
		t.Fatalf("expected only markdown files to load, got %d", catalog.Len())
	}
}

func TestServiceImportAddsTemplates(t *testing.T) {
	dir := t.TempDir()
	source := "---\nid: quick-poll\nname: Quick Poll\ntype: form\nblocks:\n  - kind: rating\n    label: Score\n---\n"
	if err := os.WriteFile(filepath.Join(dir, "poll.md"), []byte(source), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	svc := newService(t, builtin(t))
	before := len(svc.List(""))
	added, err := svc.Import(dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 1 || len(svc.List("")) != before+1 {
		t.Fatalf("expected one imported template, got %d", added)
	}

	result, err := svc.Instantiate("quick-poll", "poll")
	if err != nil {
		t.Fatalf("Instantiate imported: %v", err)
	}
	if result.Document.ID != "poll" || len(result.Document.Blocks) != 1 {
		t.Fatalf("unexpected document %+v", result.Document)
	}

	if _, err := svc.Import(dir); !errors.Is(err, templates.ErrDuplicateTemplate) {
		t.Fatalf("expected duplicate error on second import, got %v", err)
	}
}
