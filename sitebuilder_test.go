package sitebuilder_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	sitebuilder "github.com/goliatone/go-site-builder"
	"github.com/goliatone/go-site-builder/internal/di"
	"github.com/goliatone/go-site-builder/internal/documents"
	"github.com/goliatone/go-site-builder/internal/identity"
	"github.com/goliatone/go-site-builder/pkg/testsupport"
)

const contactPayload = `{
	"id": "contact",
	"type": "form",
	"title": "Contact",
	"blocks": [
		{"id": "b1", "kind": "email", "label": "Email", "config": {"required": true}, "order": 1},
		{"id": "b2", "kind": "email", "label": "Email", "config": {}, "order": 2},
		{"id": "b3", "kind": "video", "label": "Intro", "config": {}, "order": 3}
	]
}`

func newModule(t *testing.T, opts ...sitebuilder.Option) *sitebuilder.Module {
	t.Helper()
	opts = append([]sitebuilder.Option{di.WithIDGenerator(identity.NewCounter("blk_"))}, opts...)
	module, err := sitebuilder.New(sitebuilder.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleDecodeNormalizeRenderCommit(t *testing.T) {
	module := newModule(t)

	doc, err := sitebuilder.DecodeDocument([]byte(contactPayload))
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	result, err := module.Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Document.Blocks[0].Name != "email" || result.Document.Blocks[1].Name != "email_2" {
		t.Fatalf("expected duplicate email renamed, got %q and %q", result.Document.Blocks[0].Name, result.Document.Blocks[1].Name)
	}

	tree := module.Render(result.Document)
	if tree.Count() != 3 {
		t.Fatalf("expected three fragments, got %d", tree.Count())
	}
	if !tree.Fragments[2].Unsupported {
		t.Fatalf("expected unknown kind to render as unsupported, got %+v", tree.Fragments[2])
	}

	saved, err := module.Commit(context.Background(), result.Document)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if saved.Version != "1" {
		t.Fatalf("expected version 1, got %q", saved.Version)
	}

	encoded, err := sitebuilder.EncodeDocument(*saved)
	if err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}
	if _, err := sitebuilder.DecodeDocument(encoded); err != nil {
		t.Fatalf("expected saved document to decode, got %v", err)
	}
}

func TestModuleTemplatesAndSessions(t *testing.T) {
	module := newModule(t)

	forms := module.Templates(sitebuilder.TypeForm)
	if len(forms) != 3 {
		t.Fatalf("expected three form templates, got %d", len(forms))
	}

	result, err := module.Instantiate("main-navigation", "main-nav")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	session := module.NewSession()
	if err := session.Load(result.Document); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := session.SetLabel(result.Document.Blocks[0].ID, "Start"); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}

	docs, err := module.Documents()
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	saved, err := session.Commit(context.Background(), docs)
	if err != nil {
		t.Fatalf("session commit: %v", err)
	}
	if saved.Blocks[0].Label != "Start" || saved.Version != "1" {
		t.Fatalf("unexpected committed document %+v", saved)
	}
}

func TestModuleWithoutStorage(t *testing.T) {
	cfg := sitebuilder.DefaultConfig()
	cfg.Features.Storage = false
	module, err := sitebuilder.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := module.Commit(context.Background(), sitebuilder.Document{ID: "x", Type: sitebuilder.TypeForm}); !errors.Is(err, di.ErrStorageDisabled) {
		t.Fatalf("expected ErrStorageDisabled, got %v", err)
	}
	if module.Commands() != nil {
		t.Fatal("expected no command handlers")
	}
}

func TestDocumentSchemaIsJSON(t *testing.T) {
	if !strings.Contains(string(sitebuilder.DocumentSchema()), `"$schema"`) {
		t.Fatal("expected the envelope schema document")
	}
}

func TestMigrationsCreateDocumentStore(t *testing.T) {
	ctx := context.Background()

	sqlDB, err := testsupport.NewSQLiteMemoryDB("root_migrations")
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())

	migrations := sitebuilder.GetMigrationsFS()
	ups, err := fs.Glob(migrations, "data/sql/migrations/*.up.sql")
	if err != nil || len(ups) == 0 {
		t.Fatalf("expected up migrations, got %v (%v)", ups, err)
	}
	for _, name := range ups {
		source, err := fs.ReadFile(migrations, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		for _, statement := range strings.Split(string(source), "--bun:split") {
			if strings.TrimSpace(statement) == "" {
				continue
			}
			if _, err := bunDB.ExecContext(ctx, statement); err != nil {
				t.Fatalf("apply %s: %v", name, err)
			}
		}
	}

	cfg := sitebuilder.DefaultConfig()
	cfg.Storage.AutoMigrate = false
	module, err := sitebuilder.New(cfg,
		di.WithBunDB(bunDB),
		di.WithIDGenerator(identity.NewCounter("blk_")),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := module.Instantiate("contact-form", "contact")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if _, err := module.Commit(ctx, result.Document); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var count int
	if err := bunDB.NewSelect().Model((*documents.Record)(nil)).ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored record, got %d", count)
	}
}
