package module

import (
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/JaimeStill/inspector/pkg/handlers"
)

// Router dispatches on the first path segment to a mounted Module. Anything no
// module claims goes to a fallback ServeMux, which answers unknown paths with a
// JSON 404.
type Router struct {
	modules  map[string]*Module
	fallback *http.ServeMux
}

// NewRouter creates a Router with no modules mounted.
func NewRouter() *Router {
	fallback := http.NewServeMux()
	fallback.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	return &Router{
		modules:  map[string]*Module{},
		fallback: fallback,
	}
}

// Handle registers handler on the fallback mux.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.fallback.Handle(pattern, handler)
}

// HandleNative registers a handler function on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.fallback.HandleFunc(pattern, handler)
}

// Mount routes every request under m's prefix to m.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

// Prefixes lists the mounted module prefixes in sorted order.
func (r *Router) Prefixes() []string {
	return slices.Sorted(maps.Keys(r.modules))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	trimTrailingSlash(req)

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}
	r.fallback.ServeHTTP(w, req)
}

// firstSegment returns "/api" for "/api/properties/1".
func firstSegment(path string) string {
	rest, ok := strings.CutPrefix(path, "/")
	if !ok {
		return path
	}
	head, _, _ := strings.Cut(rest, "/")
	return "/" + head
}

func trimTrailingSlash(req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
		if req.URL.RawPath != "" {
			req.URL.RawPath = strings.TrimSuffix(req.URL.RawPath, "/")
		}
	}
}
