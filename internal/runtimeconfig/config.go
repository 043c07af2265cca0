package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var ErrStorageDriverUnknown = errors.New("content config: storage driver is invalid")
var ErrMarkdownFeatureRequired = errors.New("content config: markdown feature must be enabled to configure markdown")
var ErrMarkdownContentDirRequired = errors.New("content config: markdown content directory is required when markdown is enabled")
var ErrVersionRetentionLimitInvalid = errors.New("content config: version retention limit must be zero or positive")
var ErrLoggingProviderRequired = errors.New("content config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("content config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("content config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("content config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the content module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled   bool
	Storage   StorageConfig
	Cache     CacheConfig
	Retention RetentionConfig
	Events    EventsConfig
	Activity  ActivityConfig
	Markdown  MarkdownConfig
	Links     LinksConfig
	Logging   LoggingConfig
	Features  Features
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is "memory", "sqlite", or "postgres". Bun-backed drivers require
	// a database handle at container build time.
	Driver string
}

// CacheConfig captures read-through cache behaviour for bun repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// RetentionConfig caps how many versions an item may accumulate. Zero means
// unlimited; history is never pruned either way.
type RetentionConfig struct {
	Versions int
}

// EventsConfig controls lifecycle event delivery.
type EventsConfig struct {
	// Dispatcher routes events through the go-command dispatcher instead of
	// the in-process fan-out emitter.
	Dispatcher bool
}

// ActivityConfig controls the audit-trail bridge.
type ActivityConfig struct {
	Channel string
}

// MarkdownConfig captures filesystem and parser behaviour for Markdown ingestion.
type MarkdownConfig struct {
	Enabled    bool
	ContentDir string
	Pattern    string
	Recursive  bool
	Parser     MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// LinksConfig captures routing configuration for public item URL resolution.
type LinksConfig struct {
	RouteConfig *urlkit.Config
	Resolver    LinkResolverConfig
}

// LinkResolverConfig configures the go-urlkit based resolver.
type LinkResolverConfig struct {
	DefaultGroup  string
	ScopeGroups   map[string]string
	Routes        map[string]string
	DefaultRoute  string
	NameParam     string
	PathParam     string
	LanguageParam string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles module functionality.
type Features struct {
	Activity bool
	Markdown bool
	Logger   bool
}

// DefaultConfig returns opinionated defaults: enabled module, memory storage,
// unlimited retention, in-process events.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Retention: RetentionConfig{},
		Events:    EventsConfig{},
		Activity: ActivityConfig{
			Channel: "content",
		},
		Markdown: MarkdownConfig{
			ContentDir: "content",
			Pattern:    "*.md",
			Recursive:  true,
		},
		Links: LinksConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if driver := normalize(cfg.Storage.Driver); driver != "" && !isSupportedDriver(driver) {
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
	if cfg.Retention.Versions < 0 {
		return ErrVersionRetentionLimitInvalid
	}
	if cfg.Markdown.Enabled {
		if !cfg.Features.Markdown {
			return ErrMarkdownFeatureRequired
		}
		if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
			return ErrMarkdownContentDirRequired
		}
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
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
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "memory", "sqlite", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
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
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
