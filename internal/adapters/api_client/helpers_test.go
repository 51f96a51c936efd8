package api_client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"houseclay-client/internal/core/port"
	"houseclay-client/pkg/clock"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu        sync.Mutex
	location  string
	redirects []string
	screens   []port.Screen
}

func (n *recordingNavigator) Navigate(screen port.Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.screens = append(n.screens, screen)
}

func (n *recordingNavigator) Replace(screen port.Screen) { n.Navigate(screen) }
func (n *recordingNavigator) Back()                      {}

func (n *recordingNavigator) HardRedirect(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, location)
}

func (n *recordingNavigator) CurrentLocation() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *recordingNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

type memoryPersister struct {
	mu     sync.Mutex
	slices map[string][]byte
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{slices: make(map[string][]byte)}
}

func (m *memoryPersister) Load(ctx context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.slices))
	for k, v := range m.slices {
		out[k] = v
	}
	return out, nil
}

func (m *memoryPersister) Save(ctx context.Context, slice string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slices[slice] = payload
	return nil
}

func (m *memoryPersister) Delete(ctx context.Context, slice string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slices, slice)
	return nil
}

func (m *memoryPersister) Close() error { return nil }

// backend - фейковый сервер API с подсчётом обращений по маршрутам.
type backend struct {
	*httptest.Server
	router chi.Router

	mu    sync.Mutex
	hits  map[string]int
	calls []*http.Request
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{router: chi.NewRouter(), hits: make(map[string]int)}
	b.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			b.hits[r.Method+" "+r.URL.Path]++
			b.calls = append(b.calls, r.Clone(context.Background()))
			b.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	b.Server = httptest.NewServer(b.router)
	t.Cleanup(b.Close)
	return b
}

func (b *backend) Hits(methodAndPath string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[methodAndPath]
}

func (b *backend) LastCall() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return nil
	}
	return b.calls[len(b.calls)-1]
}

type harness struct {
	backend   *backend
	navigator *recordingNavigator
	pipeline  *Pipeline
	client    *Client
	clock     *clock.FakeClock
	expired   int
}

func newHarness(t *testing.T, configure func(r chi.Router)) *harness {
	t.Helper()
	h := &harness{
		backend:   newBackend(t),
		navigator: &recordingNavigator{location: "/property/42?tab=info"},
		clock:     clock.Fake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	configure(h.backend.router)

	p, err := NewPipeline(context.Background(), PipelineConfig{
		BaseURL:          h.backend.URL + "/api",
		Navigator:        h.navigator,
		Timeout:          5 * time.Second,
		OnSessionExpired: func(context.Context) { h.expired++ },
	})
	require.NoError(t, err)
	h.pipeline = p
	h.client = NewClient(p, h.clock, 16)
	return h
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
