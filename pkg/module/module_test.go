package module_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/inspector/pkg/module"
)

func write(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func TestNewInvalidPrefixPanics(t *testing.T) {
	for _, prefix := range []string{"", "/", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, module.ErrInvalidPrefix) {
					t.Errorf("recover() = %v, want ErrInvalidPrefix for %q", r, prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestServePrefixStripping(t *testing.T) {
	mux := http.NewServeMux()

	var receivedPath string
	mux.HandleFunc("GET /properties/{id}", func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /", write("root"))

	m := module.New("/api", mux)
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api/properties/42", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if receivedPath != "/properties/42" {
		t.Errorf("inner path: got %s, want /properties/42", receivedPath)
	}

	rec = httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api", nil))
	if rec.Body.String() != "root" {
		t.Errorf("root path: got %s, want root", rec.Body.String())
	}
}

func TestServeEscapedPath(t *testing.T) {
	var gotPath, gotRaw string
	m := module.New("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRaw = r.URL.EscapedPath()
	}))

	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/properties/elm%2Fstreet", nil))

	if gotPath != "/properties/elm/street" {
		t.Errorf("path: got %s", gotPath)
	}
	if gotRaw != "/properties/elm%2Fstreet" {
		t.Errorf("escaped path: got %s", gotRaw)
	}
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", write("ok"))

	m := module.New("/api", mux)

	var called bool
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	})

	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if !called {
		t.Error("module middleware should have been called")
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /properties", write("properties"))

	router := module.NewRouter()
	router.Mount(module.New("/api", apiMux))
	router.HandleNative("GET /healthz", write("ok"))
	router.Handle("GET /metrics", write("metrics"))

	if got := router.Prefixes(); !slices.Equal(got, []string{"/api"}) {
		t.Errorf("prefixes: got %v", got)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"api module", "/api/properties", http.StatusOK, "properties"},
		{"trailing slash", "/api/properties/", http.StatusOK, "properties"},
		{"native handler", "/healthz", http.StatusOK, "ok"},
		{"native http.Handler", "/metrics", http.StatusOK, "metrics"},
		{"unmatched", "/nowhere", http.StatusNotFound, `{"error":"not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != tt.wantBody {
				t.Errorf("body: got %s, want %s", body, tt.wantBody)
			}
		})
	}
}
