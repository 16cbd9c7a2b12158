package di_test

import (
	"context"
	"errors"
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-site-builder/internal/builder"
	documentscmd "github.com/goliatone/go-site-builder/internal/commands/documents"
	"github.com/goliatone/go-site-builder/internal/commands/fixtures"
	"github.com/goliatone/go-site-builder/internal/di"
	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/identity"
	"github.com/goliatone/go-site-builder/internal/runtimeconfig"
	"github.com/goliatone/go-site-builder/internal/schema"
)

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "mongo"
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestContainerSQLiteStorageWithCommands(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = "file:di_container?mode=memory&cache=shared"
	cfg.Commands.Enabled = true

	reg := fixtures.NewRecordingRegistry()
	container, err := di.NewContainer(cfg,
		di.WithCommandRegistry(reg),
		di.WithIDGenerator(identity.NewCounter("blk_")),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.BunDB() == nil {
		t.Fatal("expected sqlite database to be opened")
	}
	if len(reg.Handlers) != 4 {
		t.Fatalf("expected four registered handlers, got %d", len(reg.Handlers))
	}

	var saved *document.Document
	err = container.Commands().Instantiate.Execute(context.Background(), documentscmd.InstantiateTemplateCommand{
		TemplateID:  "standard-footer",
		DocumentID:  "site-footer",
		OnCommitted: func(doc *document.Document) { saved = doc },
	})
	if err != nil {
		t.Fatalf("instantiate command: %v", err)
	}
	if saved == nil || saved.Version != "1" {
		t.Fatalf("unexpected saved document %+v", saved)
	}

	docs, err := container.Documents()
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	stored, err := docs.Get(context.Background(), "site-footer")
	if err != nil {
		t.Fatalf("get stored footer: %v", err)
	}
	if stored.Type != document.TypeFooter || len(stored.Blocks) != len(saved.Blocks) {
		t.Fatalf("unexpected stored footer %+v", stored)
	}

	rendered := container.Dispatcher().Render(*stored)
	if rendered.Count() != len(stored.Blocks) {
		t.Fatalf("expected every block rendered, got %d of %d", rendered.Count(), len(stored.Blocks))
	}
}

func TestContainerWithoutStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Storage = false

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, err := container.Documents(); !errors.Is(err, di.ErrStorageDisabled) {
		t.Fatalf("expected ErrStorageDisabled, got %v", err)
	}
	if container.Commands() != nil {
		t.Fatal("expected no command handlers")
	}
}

func TestContainerResolvesRoutesFromConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Render.Links.RouteConfig = &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths:   map[string]string{"page": "/pages/:slug"},
			},
		},
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	rendered := container.Dispatcher().Render(document.Document{
		ID:   "main",
		Type: document.TypeMenu,
		Blocks: []document.Block{
			{
				ID:    "l1",
				Kind:  schema.KindLink,
				Label: "Company",
				Order: 1,
				Config: map[string]any{
					"route":  "page",
					"params": map[string]any{"slug": "company"},
				},
			},
		},
	})
	if len(rendered.Fragments) != 1 {
		t.Fatalf("expected one fragment, got %d", len(rendered.Fragments))
	}
	if href := rendered.Fragments[0].Props["href"]; href != "https://example.com/pages/company" {
		t.Fatalf("unexpected href %v", href)
	}
}

func TestContainerSessionsShareNormalizer(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithIDGenerator(identity.NewCounter("blk_")))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	session := container.NewSession()
	if err := session.Start(document.TypeForm, "contact"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.AddBlock(schema.KindEmail, ""); err != nil {
		t.Fatalf("add block: %v", err)
	}
	if got := session.Document().Blocks[0].ID; got != "blk_1" {
		t.Fatalf("expected container id generator, got %q", got)
	}
}

func TestContainerSessionsInheritStrictValidation(t *testing.T) {
	cases := []struct {
		name   string
		strict bool
	}{
		{name: "strict", strict: true},
		{name: "lenient", strict: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			cfg.Storage.StrictValidation = tc.strict
			container, err := di.NewContainer(cfg)
			if err != nil {
				t.Fatalf("NewContainer: %v", err)
			}
			docs, err := container.Documents()
			if err != nil {
				t.Fatalf("Documents: %v", err)
			}
			session := container.NewSession()
			err = session.Load(document.Document{
				ID:     "survey",
				Type:   document.TypeForm,
				Blocks: []document.Block{{ID: "r", Kind: schema.KindRating, Config: map[string]any{"max": 0}}},
			})
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			called := false
			_, err = session.Commit(context.Background(), builder.CommitterFunc(func(ctx context.Context, doc document.Document) (*document.Document, error) {
				called = true
				return docs.Commit(ctx, doc)
			}))
			if tc.strict {
				if !errors.Is(err, builder.ErrValidationFailed) || called {
					t.Fatalf("expected strict session to refuse commit, got err=%v called=%v", err, called)
				}
				return
			}
			if err != nil || !called {
				t.Fatalf("expected lenient commit, got err=%v called=%v", err, called)
			}
		})
	}
}

func TestContainerReportsCacheConfigError(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = "file:di_cache_error?mode=memory&cache=shared"
	cfg.Cache.Capacity = -1

	container, err := di.NewContainer(cfg)
	if !errors.Is(err, di.ErrCacheUnavailable) {
		t.Fatalf("expected ErrCacheUnavailable, got %v", err)
	}
	if container != nil {
		t.Fatalf("expected no container on cache failure")
	}
}
