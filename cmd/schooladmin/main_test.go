package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/modules/platform"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token":     "tok-cli",
			"expiresIn": "1h",
			"user":      map[string]string{"id": "u1", "email": "ops@example.com"},
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("GET /schools", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-cli" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not authenticated"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"schools": []map[string]string{{"id": "s1", "name": "Hillside", "status": r.URL.Query().Get("status")}},
		})
	})
	mux.HandleFunc("GET /dashboard", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"totalSchools": 12})
	})
	mux.HandleFunc("GET /system/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": "2.3.0"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginThenListSchools(t *testing.T) {
	srv := newFakeAPI(t)
	tokenFile := filepath.Join(t.TempDir(), "session.json")
	flagArgs := []string{"--api-url", srv.URL, "--token-store", "file", "--token-file", tokenFile}

	_, err := runCommand(t, append([]string{"schools", "list"}, flagArgs...)...)
	require.Error(t, err, "listing without a session is rejected")

	out, err := runCommand(t, append([]string{"login", "--email", "ops@example.com", "--password", "secret"}, flagArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "ops@example.com")

	out, err = runCommand(t, append([]string{"schools", "list", "--status", "active"}, flagArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Hillside")
	assert.Contains(t, out, `"status": "active"`)

	_, err = runCommand(t, append([]string{"logout"}, flagArgs...)...)
	require.NoError(t, err)

	_, err = runCommand(t, append([]string{"schools", "list"}, flagArgs...)...)
	assert.Error(t, err)
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Setenv("SCHOOLADMIN_PASSWORD", "")
	_, err := runCommand(t, "login", "--email", "ops@example.com", "--token-store", "memory")
	assert.Error(t, err)
}

func TestHealthMinVersion(t *testing.T) {
	srv := newFakeAPI(t)
	args := []string{"health", "--api-url", srv.URL, "--token-store", "memory"}

	out, err := runCommand(t, append(args, "--min-version", "2.0.0")...)
	require.NoError(t, err)
	assert.Contains(t, out, "satisfies >= 2.0.0")

	_, err = runCommand(t, append(args, "--min-version", "3.0.0")...)
	assert.Error(t, err)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	srv := newFakeAPI(t)
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
api:
  url: `+srv.URL+`
  timeout: 5s
tokenStore:
  backend: memory
cachePolicies:
  health:
    ttl: 1m
`), 0o600))

	out, err := runCommand(t, "health", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "2.3.0"`)
}

func TestInvalidTokenStore(t *testing.T) {
	_, err := runCommand(t, "dashboard", "--token-store", "floppy")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version", "-o", "json")
	require.NoError(t, err)

	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Contains(t, v, "gitCommit")
	assert.Contains(t, v, "goVersion")

	_, err = runCommand(t, "version", "-o", "xml")
	assert.Error(t, err)
}

func TestWatchDashboardStopsWithContext(t *testing.T) {
	srv := newFakeAPI(t)
	client := platform.NewPlatformClient(srv.URL, common.NewHttpClient("test", nil))
	query := platform.NewQuery(client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, watchDashboard(ctx, query, common.CachePolicy{TTL: time.Minute, StaleTime: time.Second}, time.Second))

	entry, found := client.Cache().Entry("dashboard")
	require.True(t, found)
	assert.Equal(t, time.Minute, entry.ExpiresAt.Sub(entry.StoredAt))
}

func TestWatchUsesConfiguredDashboardPolicy(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
cachePolicies:
  dashboard:
    ttl: 7m
    staleTime: 20s
`), 0o600))

	clientFlags := NewClientFlags()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	clientFlags.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", config, "--token-store", "memory"}))

	p, err := clientFlags.NewPlatform(fs)
	require.NoError(t, err)
	assert.Equal(t, common.CachePolicy{TTL: 7 * time.Minute, StaleTime: 20 * time.Second}, p.policies.For(common.ResourceDashboard))
	assert.Equal(t, common.DefaultCachePolicies().For(common.ResourceSchools), p.policies.For(common.ResourceSchools))
}
