package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORS applies the configured cross-origin policy. A disabled policy or one
// without origins passes requests through untouched. Preflight requests are
// answered with 204 and never reach the wrapped handler.
func CORS(cfg *CORSConfig) Middleware {
	if !cfg.Enabled || len(cfg.Origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	static := corsHeaders(cfg)
	wildcard := slices.Contains(cfg.Origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if origin != "" && (wildcard || slices.Contains(cfg.Origins, origin)) {
				h.Set("Access-Control-Allow-Origin", origin)
				for k, v := range static {
					h.Set(k, v)
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func corsHeaders(cfg *CORSConfig) map[string]string {
	headers := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowedMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowedHeaders, ", "),
	}
	if len(cfg.ExposedHeaders) > 0 {
		headers["Access-Control-Expose-Headers"] = strings.Join(cfg.ExposedHeaders, ", ")
	}
	if cfg.AllowCredentials {
		headers["Access-Control-Allow-Credentials"] = "true"
	}
	if cfg.MaxAge > 0 {
		headers["Access-Control-Max-Age"] = strconv.Itoa(cfg.MaxAge)
	}
	return headers
}
