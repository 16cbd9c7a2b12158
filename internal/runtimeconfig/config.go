package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-site-builder/internal/identity"
	"github.com/goliatone/go-site-builder/internal/logging/gologger"
	"github.com/goliatone/go-site-builder/internal/render"
)

var (
	ErrLoggingProviderRequired  = errors.New("sitebuilder config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown   = errors.New("sitebuilder config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("sitebuilder config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("sitebuilder config: logging format is invalid")
	ErrStorageDriverUnknown     = errors.New("sitebuilder config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("sitebuilder config: storage dsn is required for sql drivers")
	ErrStorageFeatureRequired   = errors.New("sitebuilder config: storage feature must be enabled to use commands")
	ErrTemplatesFeatureRequired = errors.New("sitebuilder config: templates feature must be enabled to configure a template directory")
	ErrIDStrategyUnknown        = errors.New("sitebuilder config: block id strategy is invalid")
	ErrMarkdownExtensionUnknown = errors.New("sitebuilder config: markdown extension is invalid")
	ErrCacheTTLInvalid          = errors.New("sitebuilder config: cache ttl must be positive when cache is enabled")
	ErrCommandTimeoutInvalid    = errors.New("sitebuilder config: command timeout must be zero or positive")
)

// Storage drivers understood by the container.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates feature flags and adapter settings for the module.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Render     RenderConfig     `yaml:"render"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Features   Features         `yaml:"features"`
	Commands   CommandsConfig   `yaml:"commands"`
}

// LoggingConfig captures provider options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	AutoMigrate      bool   `yaml:"auto_migrate"`
	StrictValidation bool   `yaml:"strict_validation"`
}

// CacheConfig controls the repository read cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
	// Capacity overrides the cache entry limit. Zero keeps the cache default.
	Capacity int `yaml:"capacity"`
}

// NormalizerConfig tunes id assignment and parent resolution.
type NormalizerConfig struct {
	IDStrategy        string `yaml:"id_strategy"`
	SlotPrefix        string `yaml:"slot_prefix"`
	ForwardReferences bool   `yaml:"forward_references"`
}

// RenderConfig configures markdown conversion and link resolution.
type RenderConfig struct {
	Markdown MarkdownConfig `yaml:"markdown"`
	Links    LinksConfig    `yaml:"links"`
}

// MarkdownConfig mirrors render.MarkdownOptions.
type MarkdownConfig struct {
	SafeMode   bool     `yaml:"safe_mode"`
	HardWraps  bool     `yaml:"hard_wraps"`
	Extensions []string `yaml:"extensions"`
}

// LinksConfig configures the go-urlkit route resolver. Links fall back to plain urls when
// RouteConfig is nil.
type LinksConfig struct {
	RouteConfig  *urlkit.Config `yaml:"routes"`
	DefaultGroup string         `yaml:"default_group"`
}

// TemplatesConfig controls the template catalog sources.
type TemplatesConfig struct {
	Builtin bool   `yaml:"builtin"`
	Dir     string `yaml:"dir"`
}

// Features toggles module functionality.
type Features struct {
	Storage   bool `yaml:"storage"`
	Templates bool `yaml:"templates"`
	Logger    bool `yaml:"logger"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns defaults for an in-process site builder.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
		Storage: StorageConfig{
			Driver:      DriverMemory,
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Normalizer: NormalizerConfig{
			IDStrategy: string(identity.StrategyULID),
		},
		Render: RenderConfig{
			Markdown: MarkdownConfig{
				SafeMode:   true,
				Extensions: []string{"gfm", "linkify"},
			},
			Links: LinksConfig{
				DefaultGroup: "frontend",
			},
		},
		Templates: TemplatesConfig{
			Builtin: true,
		},
		Features: Features{
			Storage:   true,
			Templates: true,
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads a YAML file and overlays it on DefaultConfig. The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sitebuilder config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays YAML data on DefaultConfig and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("sitebuilder config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}

	switch driver := NormalizeDriver(cfg.Storage.Driver); driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if cfg.Commands.Enabled && !cfg.Features.Storage {
		return ErrStorageFeatureRequired
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}

	switch identity.Strategy(strings.ToLower(strings.TrimSpace(cfg.Normalizer.IDStrategy))) {
	case "", identity.StrategyULID, identity.StrategyUUID, identity.StrategyCounter:
	default:
		return fmt.Errorf("%w: %s", ErrIDStrategyUnknown, cfg.Normalizer.IDStrategy)
	}

	known := render.MarkdownExtensions()
	for _, name := range cfg.Render.Markdown.Extensions {
		if !slices.Contains(known, strings.ToLower(strings.TrimSpace(name))) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, name)
		}
	}

	if strings.TrimSpace(cfg.Templates.Dir) != "" && !cfg.Features.Templates {
		return ErrTemplatesFeatureRequired
	}
	return nil
}

// NormalizeDriver lower-cases a driver name and maps its aliases. Empty means memory.
func NormalizeDriver(driver string) string {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case "":
		return DriverMemory
	case "sqlite3":
		return DriverSQLite
	case "pg", "postgresql":
		return DriverPostgres
	default:
		return d
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	return slices.Contains(gologger.Formats(), strings.ToLower(strings.TrimSpace(format)))
}
