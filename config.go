package content

import "github.com/goliatone/go-content/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown         = runtimeconfig.ErrStorageDriverUnknown
	ErrMarkdownFeatureRequired      = runtimeconfig.ErrMarkdownFeatureRequired
	ErrMarkdownContentDirRequired   = runtimeconfig.ErrMarkdownContentDirRequired
	ErrVersionRetentionLimitInvalid = runtimeconfig.ErrVersionRetentionLimitInvalid
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	RetentionConfig      = runtimeconfig.RetentionConfig
	EventsConfig         = runtimeconfig.EventsConfig
	ActivityConfig       = runtimeconfig.ActivityConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	LinksConfig          = runtimeconfig.LinksConfig
	LinkResolverConfig   = runtimeconfig.LinkResolverConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	Features             = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
