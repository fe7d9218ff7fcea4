// Package routes declares HTTP endpoints as prefix groups and registers them on a
// standard library ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds an HTTP method and a pattern relative to its group to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix. Children inherit the parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux and returns the
// registered patterns in registration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		patterns = group.register(mux, "", patterns)
	}
	return patterns
}

func (g Group) register(mux *http.ServeMux, parent string, patterns []string) []string {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		pattern := r.Method + " " + prefix + r.Pattern
		mux.HandleFunc(pattern, r.Handler)
		patterns = append(patterns, pattern)
	}
	for _, child := range g.Children {
		patterns = child.register(mux, prefix, patterns)
	}
	return patterns
}
