package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first middleware added runs outermost.
// The zero value is an empty chain.
type Chain struct {
	stack []Middleware
}

// Use appends middleware to the chain.
func (c *Chain) Use(mws ...Middleware) {
	c.stack = append(c.stack, mws...)
}

// Len returns the number of middleware in the chain.
func (c *Chain) Len() int {
	return len(c.stack)
}

// Then wraps handler with every middleware in the chain.
func (c *Chain) Then(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(c.stack) {
		handler = mw(handler)
	}
	return handler
}
