package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-site-builder/internal/builder"
	"github.com/goliatone/go-site-builder/internal/commands"
	documentscmd "github.com/goliatone/go-site-builder/internal/commands/documents"
	"github.com/goliatone/go-site-builder/internal/documents"
	"github.com/goliatone/go-site-builder/internal/identity"
	"github.com/goliatone/go-site-builder/internal/logging"
	"github.com/goliatone/go-site-builder/internal/logging/gologger"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/render"
	"github.com/goliatone/go-site-builder/internal/runtimeconfig"
	"github.com/goliatone/go-site-builder/internal/schema"
	"github.com/goliatone/go-site-builder/internal/templates"
	"github.com/goliatone/go-site-builder/internal/tree"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

// ErrStorageDisabled is returned by storage accessors when the storage feature is off.
var ErrStorageDisabled = errors.New("di: storage feature is disabled")

// ErrCacheUnavailable wraps a repository cache that could not be built from config.
var ErrCacheUnavailable = errors.New("di: repository cache unavailable")

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	registry       *schema.Registry
	idGenerator    identity.Generator

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	repository    documents.Repository

	routeManager *urlkit.RouteManager
	linkResolver render.LinkResolver
	renderOpts   []render.Option

	commandRegistry commands.CommandRegistry

	normalizer *normalizer.Normalizer
	dispatcher *render.Dispatcher
	catalog    *templates.Catalog
	templates  *templates.Service
	documents  *documents.Service
	commands   *documentscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRegistry replaces the built-in block schema registry.
func WithRegistry(registry *schema.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithIDGenerator overrides the generator selected by Config.Normalizer.IDStrategy.
func WithIDGenerator(gen identity.Generator) Option {
	return func(c *Container) {
		if gen != nil {
			c.idGenerator = gen
		}
	}
}

// WithBunDB stores documents in db regardless of Config.Storage.Driver. The caller keeps
// ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRepository injects a document repository, bypassing the configured driver.
func WithRepository(repo documents.Repository) Option {
	return func(c *Container) {
		c.repository = repo
	}
}

// WithRouteManager resolves links through manager instead of Config.Render.Links.RouteConfig.
func WithRouteManager(manager *urlkit.RouteManager) Option {
	return func(c *Container) {
		c.routeManager = manager
	}
}

// WithLinkResolver injects a custom link resolver.
func WithLinkResolver(resolver render.LinkResolver) Option {
	return func(c *Container) {
		c.linkResolver = resolver
	}
}

// WithRenderOptions forwards options, such as custom renderers, to the dispatcher.
func WithRenderOptions(opts ...render.Option) Option {
	return func(c *Container) {
		c.renderOpts = append(c.renderOpts, opts...)
	}
}

// WithCommandRegistry registers command handlers with reg when commands are enabled.
func WithCommandRegistry(reg commands.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureNormalizer()
	c.configureRender()
	if err := c.configureTemplates(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "sitebuilder.di").Info("container.configured",
		"storage", c.storageDriver(),
		"cache", c.cacheService != nil,
		"templates", c.catalog.Len(),
		"commands", c.commands != nil,
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	if strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) != "gologger" {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureNormalizer() {
	if c.registry == nil {
		c.registry = schema.Default()
	}
	if c.idGenerator == nil {
		c.idGenerator = identity.NewGenerator(identity.Strategy(c.Config.Normalizer.IDStrategy))
	}
	resolverOpts := []tree.Option{tree.WithForwardReferences(c.Config.Normalizer.ForwardReferences)}
	if prefix := strings.TrimSpace(c.Config.Normalizer.SlotPrefix); prefix != "" {
		resolverOpts = append(resolverOpts, tree.WithSlotPrefix(prefix))
	}
	c.normalizer = normalizer.New(
		normalizer.WithRegistry(c.registry),
		normalizer.WithIDGenerator(c.idGenerator),
		normalizer.WithLogger(logging.NormalizerLogger(c.loggerProvider)),
		normalizer.WithResolverOptions(resolverOpts...),
	)
}

func (c *Container) configureRender() {
	mdCfg := c.Config.Render.Markdown
	opts := []render.Option{
		render.WithRegistry(c.registry),
		render.WithMarkdown(render.NewMarkdown(render.MarkdownOptions{
			SafeMode:   mdCfg.SafeMode,
			HardWraps:  mdCfg.HardWraps,
			Extensions: mdCfg.Extensions,
		})),
	}

	if c.linkResolver == nil {
		if c.routeManager == nil && c.Config.Render.Links.RouteConfig != nil {
			c.routeManager = urlkit.NewRouteManager(c.Config.Render.Links.RouteConfig)
		}
		if c.routeManager != nil {
			c.linkResolver = render.NewURLKitResolver(render.URLKitResolverOptions{
				Manager: c.routeManager,
				Group:   strings.TrimSpace(c.Config.Render.Links.DefaultGroup),
			})
		}
	}
	if c.linkResolver != nil {
		opts = append(opts, render.WithLinkResolver(c.linkResolver))
	}
	opts = append(opts, c.renderOpts...)
	c.dispatcher = render.NewDispatcher(opts...)
}

func (c *Container) configureTemplates() error {
	catalog := templates.NewCatalog()
	if c.Config.Features.Templates && c.Config.Templates.Builtin {
		builtin, err := templates.Builtin()
		if err != nil {
			return err
		}
		catalog = builtin
	}
	if dir := strings.TrimSpace(c.Config.Templates.Dir); dir != "" && c.Config.Features.Templates {
		if err := catalog.LoadDir(dir); err != nil {
			return err
		}
	}
	c.catalog = catalog
	c.templates = templates.NewService(catalog, c.normalizer,
		templates.WithLogger(logging.TemplatesLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureStorage() error {
	if !c.Config.Features.Storage {
		return nil
	}
	if c.repository == nil {
		if err := c.openDB(); err != nil {
			return err
		}
		if c.bunDB != nil {
			if c.Config.Storage.AutoMigrate {
				if err := documents.Migrate(context.Background(), c.bunDB); err != nil {
					_ = c.Close()
					return err
				}
			}
			if err := c.configureCacheDefaults(); err != nil {
				_ = c.Close()
				return err
			}
			c.repository = documents.NewBunRecordRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.repository = documents.NewMemoryRepository()
		}
	}
	c.documents = documents.NewService(c.repository, c.normalizer,
		documents.WithLogger(logging.DocumentsLogger(c.loggerProvider)),
		documents.WithStrictValidation(c.Config.Storage.StrictValidation),
	)
	return nil
}

func (c *Container) openDB() error {
	if c.bunDB != nil {
		return nil
	}
	driver := runtimeconfig.NormalizeDriver(c.Config.Storage.Driver)
	dsn := strings.TrimSpace(c.Config.Storage.DSN)
	switch driver {
	case runtimeconfig.DriverSQLite:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return fmt.Errorf("di: open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		c.bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
	case runtimeconfig.DriverPostgres:
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return fmt.Errorf("di: open postgres: %w", err)
		}
		c.bunDB = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil
	}
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		c.cacheService = nil
		c.keySerializer = nil
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = c.Config.Cache.DefaultTTL
		if cfg.TTL <= 0 {
			cfg.TTL = time.Minute
		}
		if c.Config.Cache.Capacity != 0 {
			cfg.Capacity = c.Config.Cache.Capacity
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureCommands() error {
	if !c.Config.Commands.Enabled || c.documents == nil {
		return nil
	}
	timeout := c.Config.Commands.Timeout
	var tpl documentscmd.TemplateService
	if c.Config.Features.Templates {
		tpl = c.templates
	}
	set, err := documentscmd.RegisterDocumentCommands(c.commandRegistry, c.documents, tpl, c.loggerProvider,
		documentscmd.FeatureGates{
			StorageEnabled:   func() bool { return c.Config.Features.Storage },
			TemplatesEnabled: func() bool { return c.Config.Features.Templates },
		},
		documentscmd.WithCommitHandlerOptions(commands.WithTimeout[documentscmd.CommitDocumentCommand](timeout)),
		documentscmd.WithDeleteHandlerOptions(commands.WithTimeout[documentscmd.DeleteDocumentCommand](timeout)),
		documentscmd.WithInstantiateHandlerOptions(commands.WithTimeout[documentscmd.InstantiateTemplateCommand](timeout)),
		documentscmd.WithImportHandlerOptions(commands.WithTimeout[documentscmd.ImportTemplatesCommand](timeout)),
	)
	if err != nil {
		return err
	}
	c.commands = set
	return nil
}

func (c *Container) storageDriver() string {
	switch {
	case !c.Config.Features.Storage:
		return "disabled"
	case c.bunDB != nil:
		return c.bunDB.Dialect().Name().String()
	default:
		return runtimeconfig.DriverMemory
	}
}

// Close releases the database opened by the container. Injected databases are left open.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	return c.bunDB.Close()
}

// LoggerProvider returns the configured provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Registry returns the block schema registry.
func (c *Container) Registry() *schema.Registry {
	return c.registry
}

// Normalizer returns the shared schema normalizer.
func (c *Container) Normalizer() *normalizer.Normalizer {
	return c.normalizer
}

// Dispatcher returns the render dispatcher.
func (c *Container) Dispatcher() *render.Dispatcher {
	return c.dispatcher
}

// Templates returns the template service.
func (c *Container) Templates() *templates.Service {
	return c.templates
}

// Documents returns the document service, or ErrStorageDisabled.
func (c *Container) Documents() (*documents.Service, error) {
	if c.documents == nil {
		return nil, ErrStorageDisabled
	}
	return c.documents, nil
}

// Commands returns the registered command handlers, nil when commands are disabled.
func (c *Container) Commands() *documentscmd.HandlerSet {
	return c.commands
}

// BunDB returns the database backing the document store, nil for memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// NewSession starts a builder session sharing the container normalizer. Sessions inherit the
// storage strict validation setting.
func (c *Container) NewSession(opts ...builder.Option) *builder.Session {
	base := []builder.Option{
		builder.WithLogger(logging.BuilderLogger(c.loggerProvider)),
		builder.WithStrictCommit(c.Config.Storage.StrictValidation),
	}
	return builder.NewSession(c.normalizer, append(base, opts...)...)
}
