package sitebuilder

import "github.com/goliatone/go-site-builder/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrStorageFeatureRequired   = runtimeconfig.ErrStorageFeatureRequired
	ErrTemplatesFeatureRequired = runtimeconfig.ErrTemplatesFeatureRequired
	ErrIDStrategyUnknown        = runtimeconfig.ErrIDStrategyUnknown
	ErrMarkdownExtensionUnknown = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrCommandTimeoutInvalid    = runtimeconfig.ErrCommandTimeoutInvalid
)

type (
	Config           = runtimeconfig.Config
	LoggingConfig    = runtimeconfig.LoggingConfig
	StorageConfig    = runtimeconfig.StorageConfig
	CacheConfig      = runtimeconfig.CacheConfig
	NormalizerConfig = runtimeconfig.NormalizerConfig
	RenderConfig     = runtimeconfig.RenderConfig
	MarkdownConfig   = runtimeconfig.MarkdownConfig
	LinksConfig      = runtimeconfig.LinksConfig
	TemplatesConfig  = runtimeconfig.TemplatesConfig
	Features         = runtimeconfig.Features
	CommandsConfig   = runtimeconfig.CommandsConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file overlaid on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
