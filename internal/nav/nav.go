// Package nav maps logical routes to screens and carries the one-shot payload
// handed from one screen to the next.
package nav

import (
	"sort"
	"strings"

	errors "github.com/Laisky/errors/v2"

	"github.com/snapshop/snapshop/internal/search"
)

// Route names a screen.
type Route string

const (
	RouteSubmission Route = "submission"
	RouteResults    Route = "results"
)

// Paths of the two screens.
const (
	PathSubmission = "/"
	PathResults    = "/results"
)

// ErrUnknownRoute is returned when no screen is registered for a path.
var ErrUnknownRoute = errors.New("unknown route")

// Payload is data attached to a single transition. It is never stored by the
// table; a screen that is re-entered without one must fetch on its own.
type Payload struct {
	Results search.ResultSet
}

// WithResults wraps results as a transition payload.
func WithResults(results search.ResultSet) *Payload {
	return &Payload{Results: results}
}

// Transition is one navigation request.
type Transition struct {
	Path    string
	Payload *Payload
}

// To builds a transition to path carrying payload (which may be nil).
func To(path string, payload *Payload) Transition {
	return Transition{Path: path, Payload: payload}
}

// Reload builds a payload-less transition, the equivalent of reloading the
// page at path.
func Reload(path string) Transition {
	return Transition{Path: path}
}

// Builder constructs a screen for a route. payload is nil when the
// transition carried none.
type Builder[S any] func(payload *Payload) S

type entry[S any] struct {
	route Route
	build Builder[S]
}

// Table is the routing table.
type Table[S any] struct {
	entries map[string]entry[S]
}

// NewTable returns an empty routing table.
func NewTable[S any]() *Table[S] {
	return &Table[S]{entries: make(map[string]entry[S])}
}

// Handle registers build as the screen for path.
func (t *Table[S]) Handle(path string, route Route, build Builder[S]) {
	t.entries[normalizePath(path)] = entry[S]{route: route, build: build}
}

// Resolve builds the screen for the transition's path. The payload is passed
// to exactly one builder call.
func (t *Table[S]) Resolve(tr Transition) (Route, S, error) {
	var zero S
	path := normalizePath(tr.Path)
	e, ok := t.entries[path]
	if !ok {
		return "", zero, errors.Wrapf(ErrUnknownRoute, "resolve %q", path)
	}
	return e.route, e.build(tr.Payload), nil
}

// PathOf returns the registered path for route.
func (t *Table[S]) PathOf(route Route) (string, bool) {
	for path, e := range t.entries {
		if e.route == route {
			return path, true
		}
	}
	return "", false
}

// Paths lists registered paths in sorted order.
func (t *Table[S]) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for path := range t.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathSubmission
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
