package module

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/JaimeStill/inspector/pkg/middleware"
)

// ErrInvalidPrefix is returned for prefixes that are not a single "/name" segment.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves an inner router under a single-level path prefix. Requests reach the
// router with the prefix stripped and pass through the module's middleware chain.
type Module struct {
	prefix string
	router http.Handler
	chain  middleware.Chain

	once    sync.Once
	handler http.Handler
}

// New creates a Module for prefix (e.g. "/api"). It panics on an invalid prefix.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix: prefix,
		router: router,
	}
}

// Use appends middleware to the module's chain. Middleware added after the
// module has served its first request is ignored.
func (m *Module) Use(mws ...middleware.Middleware) {
	m.chain.Use(mws...)
}

// Handler returns the router wrapped in the middleware chain. The chain is
// composed once.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.chain.Then(m.router)
	})
	return m.handler
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the prefix and dispatches to the wrapped router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, m.strip(req))
}

func (m *Module) strip(req *http.Request) *http.Request {
	u := new(url.URL)
	*u = *req.URL
	u.Path = trimPrefix(req.URL.Path, m.prefix)
	if req.URL.RawPath != "" {
		u.RawPath = trimPrefix(req.URL.RawPath, m.prefix)
	}

	stripped := new(http.Request)
	*stripped = *req
	stripped.URL = u
	return stripped
}

func trimPrefix(path, prefix string) string {
	path = strings.TrimPrefix(path, prefix)
	if path == "" {
		return "/"
	}
	return path
}

func validatePrefix(prefix string) error {
	name, ok := strings.CutPrefix(prefix, "/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q must be a single-level path such as /api", ErrInvalidPrefix, prefix)
	}
	return nil
}
