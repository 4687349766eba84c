// Package router is a small client-side route table with navigation guards.
// It decides which screen the user may be on; it never talks to the network.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	ErrNoMatch          = errors.New("router: no route matches path")
	ErrTooManyRedirects = errors.New("router: too many guard redirects")
)

// DefaultMaxRedirects bounds how many times guards may redirect a single
// navigation before it is abandoned.
const DefaultMaxRedirects = 8

type Meta struct {
	RequiresAuth bool
}

// Route is one entry of the table. A child Path without a leading slash is
// relative to its parent; an empty child Path matches the parent itself.
type Route struct {
	Path     string
	Name     string
	Meta     Meta
	Children []Route
}

// Location is a resolved path: the full chain of matched records, parent
// first, plus any :param values.
type Location struct {
	Path    string
	Name    string
	Params  map[string]string
	Matched []Route
}

// RequiresAuth reports whether any matched record asks for a login.
func (l Location) RequiresAuth() bool {
	for _, r := range l.Matched {
		if r.Meta.RequiresAuth {
			return true
		}
	}
	return false
}

// Decision is what a guard says about a navigation.
type Decision struct {
	redirect string
}

func Allow() Decision { return Decision{} }

func Redirect(path string) Decision { return Decision{redirect: path} }

func (d Decision) Redirected() (string, bool) { return d.redirect, d.redirect != "" }

// Guard runs before a navigation is committed.
type Guard func(ctx context.Context, to, from Location) Decision

type record struct {
	segments []string
	chain    []Route
}

type Router struct {
	records      []record
	logger       *slog.Logger
	maxRedirects int

	mu      sync.Mutex
	guards  []Guard
	current Location
}

type Option func(*Router)

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

func WithMaxRedirects(n int) Option {
	return func(r *Router) { r.maxRedirects = n }
}

func New(routes []Route, opts ...Option) *Router {
	r := &Router{
		logger:       slog.Default(),
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, route := range routes {
		r.records = append(r.records, flatten("", nil, route)...)
	}
	return r
}

// flatten lists children before their parent so an empty child path wins
// over the bare parent.
func flatten(prefix string, parents []Route, route Route) []record {
	full := route.Path
	if !strings.HasPrefix(full, "/") {
		full = strings.TrimSuffix(prefix, "/") + "/" + full
	}

	node := route
	node.Children = nil
	chain := append(append([]Route(nil), parents...), node)

	var out []record
	for _, child := range route.Children {
		out = append(out, flatten(full, chain, child)...)
	}
	return append(out, record{segments: split(full), chain: chain})
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Resolve matches path against the table without navigating.
func (r *Router) Resolve(path string) (Location, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := split(path)

	for _, rec := range r.records {
		params, ok := match(rec.segments, segs)
		if !ok {
			continue
		}
		leaf := rec.chain[len(rec.chain)-1]
		return Location{
			Path:    "/" + strings.Join(segs, "/"),
			Name:    leaf.Name,
			Params:  params,
			Matched: rec.chain,
		}, nil
	}
	return Location{}, fmt.Errorf("%w: %s", ErrNoMatch, path)
}

func match(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// BeforeEach adds a guard. Guards run in registration order; the first
// redirect wins.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, g)
}

// Current is the last committed location. Zero before the first Push.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Push navigates to path. Guards may redirect, which restarts the navigation
// at the redirect target. The committed location is returned.
func (r *Router) Push(ctx context.Context, path string) (Location, error) {
	r.mu.Lock()
	guards := append([]Guard(nil), r.guards...)
	from := r.current
	r.mu.Unlock()

	target := path
	for hop := 0; ; hop++ {
		if hop > r.maxRedirects {
			return Location{}, fmt.Errorf("%w: navigating to %s", ErrTooManyRedirects, path)
		}
		if err := ctx.Err(); err != nil {
			return Location{}, err
		}

		to, err := r.Resolve(target)
		if err != nil {
			return Location{}, err
		}

		redirect, redirected := runGuards(ctx, guards, to, from)
		if !redirected {
			r.mu.Lock()
			r.current = to
			r.mu.Unlock()
			r.logger.DebugContext(ctx, "navigated", "path", to.Path, "name", to.Name, "redirects", hop)
			return to, nil
		}

		r.logger.DebugContext(ctx, "navigation redirected", "from", to.Path, "to", redirect)
		target = redirect
	}
}

// Navigate is Push without the location, for callers that only need to move
// the user, such as the expiry recovery after a failed renewal.
func (r *Router) Navigate(ctx context.Context, path string) error {
	_, err := r.Push(ctx, path)
	return err
}

func runGuards(ctx context.Context, guards []Guard, to, from Location) (string, bool) {
	for _, g := range guards {
		if redirect, ok := g(ctx, to, from).Redirected(); ok {
			return redirect, true
		}
	}
	return "", false
}
