package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// LinkResolver turns a named route plus params into a URL.
type LinkResolver interface {
	Resolve(route string, params map[string]any, query map[string]any) (string, error)
}

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager *urlkit.RouteManager
	// Group is a dotted group path such as "frontend" or "frontend.es".
	Group string
}

// URLKitResolver resolves link routes through a go-urlkit RouteManager. Route names may carry
// their own group prefix ("frontend.es:page"); otherwise the configured group is used.
type URLKitResolver struct {
	manager *urlkit.RouteManager
	group   string

	mu         sync.RWMutex
	groupCache map[string]*urlkit.Group
}

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	return &URLKitResolver{
		manager:    opts.Manager,
		group:      strings.TrimSpace(opts.Group),
		groupCache: make(map[string]*urlkit.Group),
	}
}

// Resolve builds the URL for route.
func (r *URLKitResolver) Resolve(route string, params map[string]any, query map[string]any) (string, error) {
	if r == nil || r.manager == nil {
		return "", fmt.Errorf("render: route manager not configured")
	}
	groupPath, routeName := r.group, strings.TrimSpace(route)
	if prefix, name, ok := strings.Cut(routeName, ":"); ok {
		groupPath, routeName = strings.TrimSpace(prefix), strings.TrimSpace(name)
	}
	if groupPath == "" || routeName == "" {
		return "", fmt.Errorf("render: route %q has no group", route)
	}

	group, err := r.groupForPath(groupPath)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, routeName)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range queryValues(query[key]) {
			builder.WithQuery(key, value)
		}
	}
	return builder.Build()
}

func queryValues(raw any) []string {
	switch value := raw.(type) {
	case nil:
		return nil
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(value)}
	}
}

func (r *URLKitResolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
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

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("render: route %q not found", route)
		}
	}()
	builder = group.Builder(route)
	if builder == nil {
		return nil, fmt.Errorf("render: route %q not found", route)
	}
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("render: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("render: route group %q not found", name)
	}
	return group, nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("render: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	if group == nil {
		return nil, fmt.Errorf("render: child group %q not found", name)
	}
	return group, nil
}
