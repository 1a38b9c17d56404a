// Package testsupport holds shared helpers for package tests: a recorded demo
// backend served over httptest and a notifier that keeps its messages.
package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-formkit/components/mockapi"
	"github.com/goliatone/go-formkit/pkg/pipeline"
)

// Recorder counts the request paths served by the wrapped handler.
type Recorder struct {
	mu      sync.Mutex
	paths   []string
	handler http.Handler
}

func NewRecorder(handler http.Handler) *Recorder {
	return &Recorder{handler: handler}
}

func (r *Recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.mu.Unlock()
	r.handler.ServeHTTP(w, req)
}

// Count returns how many requests hit path.
func (r *Recorder) Count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.paths {
		if p == path {
			n++
		}
	}
	return n
}

// Backend is a demo API mounted under /api on a test server.
type Backend struct {
	API      *mockapi.API
	Server   *httptest.Server
	Recorder *Recorder
	// Paths are the mounted paths, URLs the same routes on the server origin.
	Paths mockapi.Endpoints
	URLs  mockapi.Endpoints
}

// NewBackend starts a demo backend that is closed when the test ends.
func NewBackend(t *testing.T, fns ...mockapi.OptionFn) *Backend {
	t.Helper()
	api, err := mockapi.NewAPI(fns...)
	if err != nil {
		t.Fatalf("testsupport: mockapi: %v", err)
	}
	mux := http.NewServeMux()
	paths, err := api.RegisterRoutes(mux, "/api")
	if err != nil {
		t.Fatalf("testsupport: register routes: %v", err)
	}
	rec := NewRecorder(mux)
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return &Backend{
		API:      api,
		Server:   srv,
		Recorder: rec,
		Paths:    paths,
		URLs:     paths.Prefix(srv.URL),
	}
}

// Notes collects notifications.
type Notes struct {
	mu      sync.Mutex
	Errors  []string
	Success []string
}

func (n *Notes) Notifier() pipeline.Notifier {
	return pipeline.NotifierFuncs{
		OnError: func(msg string) {
			n.mu.Lock()
			n.Errors = append(n.Errors, msg)
			n.mu.Unlock()
		},
		OnSuccess: func(msg string) {
			n.mu.Lock()
			n.Success = append(n.Success, msg)
			n.mu.Unlock()
		},
	}
}
