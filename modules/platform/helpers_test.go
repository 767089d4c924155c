package platform_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/modules/platform"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// apiServer is an httptest server that counts hits per "METHOD /path" and
// remembers the headers of the last request.
type apiServer struct {
	*httptest.Server
	mux *http.ServeMux

	mu          sync.Mutex
	hits        map[string]int
	lastHeaders http.Header
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	s := &apiServer{
		mux:  http.NewServeMux(),
		hits: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.lastHeaders = r.Header.Clone()
		s.mu.Unlock()
		s.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, h)
}

func (s *apiServer) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *apiServer) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeaders
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonHandler(status int, v interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, v)
	}
}

func loginHandler(token, expiresIn string) http.HandlerFunc {
	return jsonHandler(http.StatusOK, map[string]interface{}{
		"token":     token,
		"expiresIn": expiresIn,
		"user":      map[string]string{"id": "u1", "email": "ops@example.com", "role": "super_admin"},
	})
}

func quietLogger() log.FieldLogger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(s *apiServer, clock *fakeClock, opts ...platform.Option) platform.PlatformClient {
	base := []platform.Option{
		platform.WithClock(clock.Now),
		platform.WithLogger(quietLogger()),
	}
	return platform.NewPlatformClient(s.URL, common.NewHttpClient("schooladmin-test", nil), append(base, opts...)...)
}
