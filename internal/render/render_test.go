package render_test

import (
	"reflect"
	"strings"
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/render"
	"github.com/goliatone/go-site-builder/internal/schema"
)

func block(id string, kind document.Kind, config map[string]any) document.Block {
	return document.Block{ID: id, Kind: kind, Label: string(kind), Config: config}
}

func child(id string, kind document.Kind, parent string, config map[string]any) document.Block {
	b := block(id, kind, config)
	b.ParentRef = document.Ref(parent)
	return b
}

func TestRenderFlagsUnsupportedKindWithoutDroppingSiblings(t *testing.T) {
	doc := document.Document{
		ID:   "contact",
		Type: document.TypeForm,
		Blocks: []document.Block{
			block("b1", schema.KindText, map[string]any{"placeholder": "Your name"}),
			block("b2", "hologram", map[string]any{}),
			block("b3", schema.KindEmail, map[string]any{"required": true}),
		},
	}

	out := render.NewDispatcher().Render(doc)

	if got := out.Count(); got != len(doc.Blocks) {
		t.Fatalf("expected %d fragments, got %d", len(doc.Blocks), got)
	}
	flagged := 0
	for _, fragment := range out.Fragments {
		if fragment.Unsupported {
			flagged++
			if fragment.BlockID != "b2" || fragment.Component != render.ComponentUnsupported {
				t.Fatalf("unexpected unsupported fragment %+v", fragment)
			}
		}
	}
	if flagged != 1 {
		t.Fatalf("expected one unsupported fragment, got %d", flagged)
	}
	if out.Fragments[0].Component != "form.input" || out.Fragments[0].Props["type"] != "text" {
		t.Fatalf("unexpected text fragment %+v", out.Fragments[0])
	}
	if out.Fragments[2].Props["type"] != "email" || out.Fragments[2].Props["required"] != true {
		t.Fatalf("unexpected email fragment %+v", out.Fragments[2])
	}
}

func TestRenderMarksInvalidConfigBroken(t *testing.T) {
	doc := document.Document{
		ID:   "survey",
		Type: document.TypeForm,
		Blocks: []document.Block{
			block("r1", schema.KindRating, map[string]any{"max": 0}),
			block("r2", schema.KindRating, map[string]any{"max": 5, "icon": "heart"}),
		},
	}

	out := render.NewDispatcher().Render(doc)

	if len(out.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(out.Fragments))
	}
	bad := out.Fragments[0]
	if !bad.Broken || bad.Component != render.ComponentBroken || len(bad.Errors) == 0 {
		t.Fatalf("expected broken fragment, got %+v", bad)
	}
	if !strings.Contains(bad.Errors[0], "max") {
		t.Fatalf("expected error to mention max, got %v", bad.Errors)
	}
	good := out.Fragments[1]
	if good.Broken || good.Component != "form.rating" || good.Props["max"] != 5 || good.Props["icon"] != "heart" {
		t.Fatalf("unexpected rating fragment %+v", good)
	}
}

func TestRenderMarksOnlyTheDetachedSubtreeBroken(t *testing.T) {
	doc := document.Document{
		ID:   "main",
		Type: document.TypeMenu,
		Blocks: []document.Block{
			block("g1", schema.KindGroup, map[string]any{}),
			child("l1", schema.KindLink, "g1", map[string]any{"url": "/about"}),
			child("x", schema.KindLink, "missing", map[string]any{"url": "/lost"}),
			child("y", schema.KindLink, "x", map[string]any{"url": "/lost/child"}),
		},
	}

	out := render.NewDispatcher().Render(doc)

	if len(out.Fragments) != 2 {
		t.Fatalf("expected group plus broken fragment, got %+v", out.Fragments)
	}
	group := out.Fragments[0]
	if group.Component != "nav.group" || len(group.Children) != 1 || group.Children[0].Props["href"] != "/about" {
		t.Fatalf("unexpected group fragment %+v", group)
	}
	orphan := out.Fragments[1]
	if orphan.BlockID != "x" || !orphan.Broken || len(orphan.Children) != 0 {
		t.Fatalf("expected broken orphan without children, got %+v", orphan)
	}
	if !strings.Contains(strings.Join(orphan.Errors, " "), "missing") {
		t.Fatalf("expected orphan error to name the reference, got %v", orphan.Errors)
	}
}

func TestRenderMarkdownContent(t *testing.T) {
	doc := document.Document{
		ID:   "home",
		Type: document.TypePage,
		Blocks: []document.Block{
			block("c1", schema.KindContent, map[string]any{"content": "Hello **world**"}),
			block("c2", schema.KindContent, map[string]any{"content": "<script>alert(1)</script>"}),
			block("f1", schema.KindFAQ, map[string]any{"items": []any{
				map[string]any{"question": "Why?", "answer": "Because *reasons*"},
			}}),
		},
	}

	out := render.NewDispatcher().Render(doc)

	if got := out.Fragments[0].HTML; got != "<p>Hello <strong>world</strong></p>\n" {
		t.Fatalf("unexpected markdown html %q", got)
	}
	if got := out.Fragments[1].HTML; strings.Contains(got, "<script>") {
		t.Fatalf("expected raw html to be dropped in safe mode, got %q", got)
	}
	items, ok := out.Fragments[2].Props["items"].([]map[string]any)
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected faq items %#v", out.Fragments[2].Props["items"])
	}
	if items[0]["answer"] != "<p>Because <em>reasons</em></p>\n" {
		t.Fatalf("unexpected faq answer %q", items[0]["answer"])
	}

	unsafe := render.NewDispatcher(render.WithMarkdown(render.NewMarkdown(render.MarkdownOptions{}))).Render(doc)
	if got := unsafe.Fragments[1].HTML; !strings.Contains(got, "<script>") {
		t.Fatalf("expected raw html to pass through when safe mode is off, got %q", got)
	}
}

func TestRenderHeadingEscapesContent(t *testing.T) {
	doc := document.Document{
		ID:   "f",
		Type: document.TypeForm,
		Blocks: []document.Block{
			block("h1", schema.KindHeading, map[string]any{"content": "Tom & <Jerry>", "level": 3}),
		},
	}

	out := render.NewDispatcher().Render(doc)

	if got := out.Fragments[0].HTML; got != "<h3>Tom &amp; &lt;Jerry&gt;</h3>" {
		t.Fatalf("unexpected heading html %q", got)
	}
}

func TestRenderResolvesRoutesThroughURLKit(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"page": "/pages/:slug",
				},
				Groups: []urlkit.GroupConfig{
					{
						Name: "es",
						Path: "/es",
						Paths: map[string]string{
							"page": "/paginas/:slug",
						},
					},
				},
			},
		},
	})
	resolver := render.NewURLKitResolver(render.URLKitResolverOptions{Manager: manager, Group: "frontend"})

	doc := document.Document{
		ID:   "main",
		Type: document.TypeMenu,
		Blocks: []document.Block{
			block("l1", schema.KindLink, map[string]any{"route": "page", "params": map[string]any{"slug": "company"}}),
			block("l2", schema.KindLink, map[string]any{"route": "frontend.es:page", "params": map[string]any{"slug": "company"}}),
			block("l3", schema.KindLink, map[string]any{"url": "https://elsewhere.test", "openInNewTab": true}),
		},
	}

	out := render.NewDispatcher(render.WithLinkResolver(resolver)).Render(doc)

	if got := out.Fragments[0].Props["href"]; got != "https://example.com/pages/company" {
		t.Fatalf("expected urlkit url, got %v", got)
	}
	if got := out.Fragments[1].Props["href"]; got != "https://example.com/es/paginas/company" {
		t.Fatalf("expected localized urlkit url, got %v", got)
	}
	if got := out.Fragments[2].Props["target"]; got != "_blank" {
		t.Fatalf("expected new tab target, got %v", got)
	}
}

func TestRenderRouteWithoutResolverFallsBackToURL(t *testing.T) {
	doc := document.Document{
		ID:   "main",
		Type: document.TypeMenu,
		Blocks: []document.Block{
			block("l1", schema.KindLink, map[string]any{"route": "page", "url": "/company"}),
			block("l2", schema.KindLink, map[string]any{"route": "page"}),
		},
	}

	out := render.NewDispatcher().Render(doc)

	if got := out.Fragments[0].Props["href"]; got != "/company" {
		t.Fatalf("expected url fallback, got %v", got)
	}
	if !out.Fragments[1].Broken {
		t.Fatalf("expected unresolvable route to be broken, got %+v", out.Fragments[1])
	}
}

func TestRenderIsPureAndDeterministic(t *testing.T) {
	doc := document.Document{
		ID:    "footer",
		Type:  document.TypeFooter,
		Title: "Footer",
		Settings: document.Settings{
			Columns:   1,
			Copyright: "ACME",
		},
		Blocks: []document.Block{
			block("col1", schema.KindColumn, map[string]any{}),
			child("t1", schema.KindRichText, "col1", map[string]any{"content": "Made with _care_"}),
			child("s1", schema.KindSocial, "col1", map[string]any{"items": []any{
				map[string]any{"platform": "GitHub", "url": "https://github.com/acme"},
			}}),
		},
	}
	before := doc.Clone()
	dispatcher := render.NewDispatcher()

	first := dispatcher.Render(doc)
	second := dispatcher.Render(doc)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical render trees")
	}
	if !reflect.DeepEqual(doc, before) {
		t.Fatalf("expected document to be left untouched")
	}
	if first.DocumentID != "footer" || first.Settings.Copyright != "ACME" || first.Count() != 3 {
		t.Fatalf("unexpected tree %+v", first)
	}
	column := first.Fragments[0]
	if column.Component != "footer.column" || len(column.Children) != 2 {
		t.Fatalf("unexpected column fragment %+v", column)
	}
	if column.Children[0].Component != "footer.text" || column.Children[1].Component != "footer.social" {
		t.Fatalf("unexpected column children %+v", column.Children)
	}
}

func TestRenderUnknownDocumentTypeFlagsEveryBlock(t *testing.T) {
	doc := document.Document{
		ID:   "x",
		Type: "newsletter",
		Blocks: []document.Block{
			block("b1", schema.KindText, map[string]any{}),
			block("b2", schema.KindEmail, map[string]any{}),
		},
	}

	out := render.NewDispatcher().Render(doc)

	for _, fragment := range out.Fragments {
		if !fragment.Unsupported {
			t.Fatalf("expected unsupported fragment, got %+v", fragment)
		}
	}
}

func TestRenderCustomKind(t *testing.T) {
	registry := schema.NewRegistry()
	if err := registry.Register(document.TypeForm, schema.Define("signature", "Signature", schema.CategoryField, schema.MarkdownConfig{Content: "Sign here"})); err != nil {
		t.Fatalf("register: %v", err)
	}
	dispatcher := render.NewDispatcher(
		render.WithRegistry(registry),
		render.WithRenderer("signature", render.Typed("form.signature", func(_ *render.Context, _ document.Block, cfg schema.MarkdownConfig) (render.Fragment, error) {
			return render.Fragment{Props: map[string]any{"prompt": cfg.Content}}, nil
		})),
	)

	out := dispatcher.Render(document.Document{
		ID:     "f",
		Type:   document.TypeForm,
		Blocks: []document.Block{block("s1", "signature", map[string]any{"content": "Sign below"})},
	})

	got := out.Fragments[0]
	if got.Component != "form.signature" || got.Props["prompt"] != "Sign below" {
		t.Fatalf("unexpected custom fragment %+v", got)
	}
}
