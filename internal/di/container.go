package di

import (
	"errors"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-content/internal/events"
	internalitems "github.com/goliatone/go-content/internal/items"
	"github.com/goliatone/go-content/internal/links"
	"github.com/goliatone/go-content/internal/logging"
	"github.com/goliatone/go-content/internal/logging/console"
	"github.com/goliatone/go-content/internal/logging/gologger"
	"github.com/goliatone/go-content/internal/markdown"
	"github.com/goliatone/go-content/internal/runtimeconfig"
	"github.com/goliatone/go-content/items"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/activity/usersink"
	"github.com/goliatone/go-content/pkg/interfaces"
)

// ErrBunDBRequired is returned when the configured storage driver needs a
// database handle that was never supplied.
var ErrBunDBRequired = errors.New("di: storage driver requires a bun db handle, use WithBunDB")

// Container wires the content services together. Construction is eager: every
// service the configuration enables exists once NewContainer returns.
type Container struct {
	cfg runtimeconfig.Config

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider

	repo    internalitems.Repository
	itemSvc items.Service

	bus           *events.Emitter
	emitter       interfaces.EventEmitter
	subscriptions []events.Subscription

	activityEmitter *activity.Emitter
	activityHooks   activity.Hooks
	activitySink    interfaces.ActivitySink

	routeManager *urlkit.RouteManager
	linkResolver *links.Resolver

	markdownSvc interfaces.MarkdownService
}

// Option customises container construction.
type Option func(*Container)

// WithBunDB supplies the database handle backing the bun repositories. The
// schema must already exist; run migrations.Migrate beforehand.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRepository replaces the storage layer entirely.
func WithRepository(repo internalitems.Repository) Option {
	return func(c *Container) {
		c.repo = repo
	}
}

// WithItemService replaces the item lifecycle service. Retention, emitter, and
// logger wiring are then the caller's responsibility.
func WithItemService(svc items.Service) Option {
	return func(c *Container) {
		c.itemSvc = svc
	}
}

// WithEmitter replaces the lifecycle event emitter handed to the item service.
func WithEmitter(emitter interfaces.EventEmitter) Option {
	return func(c *Container) {
		c.emitter = emitter
	}
}

// WithLoggerProvider supplies the logger provider used for module loggers,
// bypassing the provider selection driven by the logging configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithActivitySink bridges lifecycle events into a go-users activity sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithActivityHooks registers additional activity hooks, capture hooks for
// tests included.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// NewContainer builds the service graph for the given configuration. Options
// apply before any derived wiring, so an injected repository or emitter wins
// over the configured defaults.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureCache(); err != nil {
		return nil, err
	}
	if err := c.configureRepository(); err != nil {
		return nil, err
	}
	c.configureActivity()
	c.configureEvents()
	c.configureLinks()
	c.configureItemService()
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.cfg.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.cfg.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.cfg.Logging.Level,
			Format:    c.cfg.Logging.Format,
			AddSource: c.cfg.Logging.AddSource,
			Focus:     c.cfg.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: build gologger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{})
	}
	return nil
}

func (c *Container) configureCache() error {
	if !c.cfg.Cache.Enabled || c.cacheService != nil {
		return nil
	}

	cacheCfg := repocache.DefaultConfig()
	if ttl := c.cfg.Cache.DefaultTTL; ttl > 0 {
		cacheCfg.TTL = ttl
	}
	service, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		return fmt.Errorf("di: build cache service: %w", err)
	}
	c.cacheService = service
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepository() error {
	if c.repo != nil {
		return nil
	}

	driver := strings.ToLower(strings.TrimSpace(c.cfg.Storage.Driver))
	switch driver {
	case "sqlite", "postgres":
		if c.bunDB == nil {
			return fmt.Errorf("%w: driver %s", ErrBunDBRequired, driver)
		}
	}

	if c.bunDB != nil {
		if c.cacheService != nil {
			c.repo = internalitems.NewBunItemRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.repo = internalitems.NewBunItemRepository(c.bunDB)
		}
		return nil
	}

	c.repo = internalitems.NewMemoryItemRepository()
	return nil
}

func (c *Container) configureActivity() {
	if c.activityEmitter == nil {
		c.activityEmitter = activity.NewEmitter(c.activityHooks, activity.Config{
			Enabled: c.cfg.Features.Activity,
			Channel: c.cfg.Activity.Channel,
		})
	}
	if c.activitySink != nil {
		c.activityEmitter.AddHook(usersink.Hook{Sink: c.activitySink})
	}
}

func (c *Container) configureEvents() {
	c.bus = events.New(events.WithLogger(logging.EventsLogger(c.loggerProvider)))

	handler := events.NewActivityHandler(c.activityEmitter)

	if c.emitter == nil {
		if c.cfg.Events.Dispatcher {
			c.emitter = events.NewDispatcherEmitter()
		} else {
			c.emitter = c.bus
		}
	}

	if !c.activityEmitter.Enabled() {
		return
	}
	if _, ok := c.emitter.(events.DispatcherEmitter); ok {
		c.subscriptions = append(c.subscriptions, events.SubscribeDispatcher(handler))
		return
	}
	c.bus.Subscribe(handler)
}

func (c *Container) configureLinks() {
	if c.linkResolver != nil || c.cfg.Links.RouteConfig == nil {
		return
	}

	c.routeManager = urlkit.NewRouteManager(c.cfg.Links.RouteConfig)

	resolverCfg := c.cfg.Links.Resolver
	routes := make(map[items.Kind]string, len(resolverCfg.Routes))
	for kind, route := range resolverCfg.Routes {
		routes[items.Kind(kind)] = route
	}

	c.linkResolver = links.NewResolver(links.ResolverOptions{
		Manager:       c.routeManager,
		DefaultGroup:  resolverCfg.DefaultGroup,
		ScopeGroups:   resolverCfg.ScopeGroups,
		Routes:        routes,
		DefaultRoute:  resolverCfg.DefaultRoute,
		NameParam:     resolverCfg.NameParam,
		PathParam:     resolverCfg.PathParam,
		LanguageParam: resolverCfg.LanguageParam,
	})
}

func (c *Container) configureItemService() {
	if c.itemSvc != nil {
		return
	}

	c.itemSvc = internalitems.NewService(c.repo,
		internalitems.WithEmitter(c.emitter),
		internalitems.WithLogger(logging.ItemsLogger(c.loggerProvider)),
		internalitems.WithVersionRetentionLimit(c.cfg.Retention.Versions),
	)
}

func (c *Container) configureMarkdown() error {
	if c.markdownSvc != nil || !c.cfg.Markdown.Enabled {
		return nil
	}

	svc, err := markdown.NewService(markdown.Config{
		BasePath:  c.cfg.Markdown.ContentDir,
		Pattern:   c.cfg.Markdown.Pattern,
		Recursive: c.cfg.Markdown.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: c.cfg.Markdown.Parser.Extensions,
			Sanitize:   c.cfg.Markdown.Parser.Sanitize,
			HardWraps:  c.cfg.Markdown.Parser.HardWraps,
			SafeMode:   c.cfg.Markdown.Parser.SafeMode,
		},
	}, nil, c.itemSvc, logging.MarkdownLogger(c.loggerProvider))
	if err != nil {
		return fmt.Errorf("di: build markdown service: %w", err)
	}
	c.markdownSvc = svc
	return nil
}

// Config returns the configuration the container was built with.
func (c *Container) Config() runtimeconfig.Config {
	return c.cfg
}

// Items returns the item lifecycle service.
func (c *Container) Items() items.Service {
	return c.itemSvc
}

// Repository exposes the storage layer, mostly for migrations and tests.
func (c *Container) Repository() internalitems.Repository {
	return c.repo
}

// Emitter returns the lifecycle event emitter handed to the item service.
func (c *Container) Emitter() interfaces.EventEmitter {
	return c.emitter
}

// Events returns the in-process fan-out bus. Handlers subscribed here receive
// lifecycle events unless the dispatcher emitter was configured.
func (c *Container) Events() *events.Emitter {
	return c.bus
}

// Activity returns the activity emitter bridging lifecycle events to hooks.
func (c *Container) Activity() *activity.Emitter {
	return c.activityEmitter
}

// Markdown returns the markdown service, or nil when markdown is disabled.
func (c *Container) Markdown() interfaces.MarkdownService {
	return c.markdownSvc
}

// Links returns the URL resolver, or nil when no route config was supplied.
func (c *Container) Links() *links.Resolver {
	return c.linkResolver
}

// RouteManager returns the urlkit manager behind the link resolver, if any.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// LoggerProvider returns the configured provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns a module-scoped logger backed by the configured provider.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// Close detaches dispatcher subscriptions registered by the container.
func (c *Container) Close() {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}
	c.subscriptions = nil
}
