package links

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-content/items"
)

// ResolverOptions configures the go-urlkit backed item URL resolver.
type ResolverOptions struct {
	Manager *urlkit.RouteManager
	// DefaultGroup is the route group used when no scope mapping matches.
	DefaultGroup string
	// ScopeGroups maps item scopes to route group paths (dot-separated for
	// nested groups).
	ScopeGroups map[string]string
	// Routes maps item kinds to route names within the resolved group.
	Routes map[items.Kind]string
	// DefaultRoute is used when no kind mapping matches.
	DefaultRoute string
	// NameParam is the route parameter receiving the item name.
	NameParam string
	// PathParam, when set, receives the item URL path (pages).
	PathParam string
	// LanguageParam, when set, receives the item language code.
	LanguageParam string
}

// Resolver builds public URLs for content items using a go-urlkit
// RouteManager, the library analog of a web framework's url_for.
type Resolver struct {
	manager *urlkit.RouteManager

	defaultGroup string
	scopeGroups  map[string]string

	routes        map[items.Kind]string
	defaultRoute  string
	nameParam     string
	pathParam     string
	languageParam string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

// NewResolver constructs a resolver backed by go-urlkit.
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.NameParam == "" {
		opts.NameParam = "name"
	}

	routes := make(map[items.Kind]string, len(opts.Routes))
	for kind, route := range opts.Routes {
		routes[kind] = strings.TrimSpace(route)
	}

	return &Resolver{
		manager: opts.Manager,

		defaultGroup: strings.TrimSpace(opts.DefaultGroup),
		scopeGroups:  opts.ScopeGroups,

		routes:        routes,
		defaultRoute:  strings.TrimSpace(opts.DefaultRoute),
		nameParam:     opts.NameParam,
		pathParam:     strings.TrimSpace(opts.PathParam),
		languageParam: strings.TrimSpace(opts.LanguageParam),

		groupCache: make(map[string]*urlkit.Group),
	}
}

// Resolve builds the public URL for the item. Unresolvable items (no manager,
// no matching group or route) yield an empty URL without an error so callers
// can fall back to raw paths.
func (r *Resolver) Resolve(ctx context.Context, item *items.Item) (string, error) {
	_ = ctx // reserved for future use
	if r == nil || r.manager == nil || item == nil {
		return "", nil
	}

	groupPath := r.defaultGroup
	if r.scopeGroups != nil {
		if path, ok := r.scopeGroups[item.Scope]; ok && strings.TrimSpace(path) != "" {
			groupPath = strings.TrimSpace(path)
		}
	}
	if groupPath == "" {
		return "", nil
	}

	group, err := r.groupForPath(groupPath)
	if err != nil || group == nil {
		return "", err
	}

	routeName := r.defaultRoute
	if route, ok := r.routes[item.Kind]; ok && route != "" {
		routeName = route
	}
	if routeName == "" {
		return "", nil
	}

	builder, err := r.safeBuilder(group, routeName)
	if err != nil || builder == nil {
		return "", err
	}

	builder.WithParam(r.nameParam, item.Name)
	if r.pathParam != "" && item.URLPath != nil {
		builder.WithParam(r.pathParam, strings.TrimPrefix(*item.URLPath, "/"))
	}
	if r.languageParam != "" && item.LanguageCode != nil {
		builder.WithParam(r.languageParam, *item.LanguageCode)
	}

	url, err := builder.Build()
	if err != nil {
		return "", err
	}
	return url, nil
}

func (r *Resolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	if len(parts) == 0 {
		return nil, fmt.Errorf("links: invalid route group path %q", path)
	}

	root, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	current := root
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

// The lookup helpers use named results so the deferred recover can replace the
// return values; urlkit panics on unknown groups rather than returning errors.

func (r *Resolver) safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("links: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("links: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("links: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("links: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("links: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("links: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, nil
}
