package platform_test

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
	"github.com/guarzo/schooladmin/common/store"
	"github.com/guarzo/schooladmin/modules/platform"
)

func TestParseExpiresIn(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1h", time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"3600", time.Hour, false},
		{" 24h ", 24 * time.Hour, false},
		{"", 0, true},
		{"0", 0, true},
		{"-5m", 0, true},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := platform.ParseExpiresIn(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlatformClient_Login(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		_ = model.JSONUnmarshal(mustRead(r), &req)
		if req.Email != "ops@example.com" || req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		loginHandler("tok-1", "7d")(w, r)
	})
	clock := newFakeClock()
	tokens := store.NewMemoryStore()
	client := newTestClient(srv, clock, platform.WithTokenStore(tokens))
	ctx := context.Background()

	assert.Equal(t, platform.Anonymous, client.State())

	_, err := client.Login(ctx, "ops@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAuthentication)
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Equal(t, platform.Anonymous, client.State())

	session, err := client.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", session.User.Email)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), session.ExpiresAt)
	assert.Equal(t, platform.Authenticated, client.State())

	token, ok := client.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-1", token.AccessToken)

	v, found, err := tokens.Get(platform.TokenKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok-1", v)
	v, found, _ = tokens.Get(platform.TokenExpiryKey)
	assert.True(t, found)
	assert.Equal(t, session.ExpiresAt.Format(time.RFC3339Nano), v)
}

func TestPlatformClient_LoginNumericExpiresIn(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", jsonHandler(http.StatusOK, map[string]interface{}{
		"token":     "tok-2",
		"expiresIn": 3600,
		"user":      map[string]string{"id": "u1"},
	}))
	clock := newFakeClock()
	client := newTestClient(srv, clock)

	session, err := client.Login(context.Background(), "ops@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), session.ExpiresAt)
}

func TestPlatformClient_LoginWithoutExpiresInUsesDefault(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", jsonHandler(http.StatusOK, map[string]interface{}{"token": "tok-3"}))
	clock := newFakeClock()
	client := newTestClient(srv, clock)

	session, err := client.Login(context.Background(), "ops@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(platform.DefaultSessionLifetime), session.ExpiresAt)
}

func TestPlatformClient_LoginWithoutToken(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", jsonHandler(http.StatusOK, map[string]interface{}{"expiresIn": "1h"}))
	client := newTestClient(srv, newFakeClock())

	_, err := client.Login(context.Background(), "ops@example.com", "secret")
	assert.ErrorIs(t, err, common.ErrAuthentication)
	assert.Equal(t, platform.Anonymous, client.State())
}

func TestPlatformClient_LogoutClearsEvenWhenServerFails(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", loginHandler("tok-1", "1h"))
	srv.handle("GET /dashboard", jsonHandler(http.StatusOK, map[string]int{"totalSchools": 1}))
	srv.handle("POST /auth/logout", jsonHandler(http.StatusInternalServerError, map[string]string{"message": "boom"}))
	tokens := store.NewMemoryStore()
	client := newTestClient(srv, newFakeClock(), platform.WithTokenStore(tokens))
	ctx := context.Background()

	_, err := client.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, client.GetJSON(ctx, "/dashboard", nil, nil, nil))
	require.Equal(t, 1, client.Cache().Len())

	assert.NoError(t, client.Logout(ctx))
	assert.Equal(t, 1, srv.Hits("POST /auth/logout"))
	assert.Equal(t, "Bearer tok-1", srv.LastHeaders().Get("Authorization"))

	_, ok := client.Token()
	assert.False(t, ok)
	assert.Equal(t, 0, client.Cache().Len())
	_, found, _ := tokens.Get(platform.TokenKey)
	assert.False(t, found)
}

func TestPlatformClient_LogoutWhenServerUnreachable(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", loginHandler("tok-1", "1h"))
	client := newTestClient(srv, newFakeClock())
	ctx := context.Background()

	_, err := client.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)
	srv.Close()

	assert.NoError(t, client.Logout(ctx))
	assert.Equal(t, platform.Anonymous, client.State())
}

func TestPlatformClient_ExpiredCredentialIsCleared(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", loginHandler("tok-1", "1h"))
	srv.handle("GET /dashboard", jsonHandler(http.StatusOK, map[string]int{}))
	clock := newFakeClock()
	tokens := store.NewMemoryStore()
	client := newTestClient(srv, clock, platform.WithTokenStore(tokens))
	ctx := context.Background()

	_, err := client.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, client.GetJSON(ctx, "/dashboard", nil, nil, &platform.CacheOptions{TTL: 2 * time.Hour}))

	clock.Advance(time.Hour - time.Second)
	assert.Equal(t, platform.Authenticated, client.State())

	clock.Advance(time.Second)
	assert.Equal(t, platform.Anonymous, client.State())
	assert.Equal(t, 0, client.Cache().Len())
	_, found, _ := tokens.Get(platform.TokenKey)
	assert.False(t, found)

	_, err = client.Request(ctx, "/dashboard", platform.RequestOptions{}, platform.NoCache())
	require.NoError(t, err)
	assert.Empty(t, srv.LastHeaders().Get("Authorization"))
}

func TestPlatformClient_RestoresPersistedSession(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("GET /dashboard", jsonHandler(http.StatusOK, map[string]int{}))
	clock := newFakeClock()
	tokens := store.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, tokens.Set(platform.TokenKey, "persisted"))
	require.NoError(t, tokens.Set(platform.TokenExpiryKey, clock.Now().Add(time.Hour).Format(time.RFC3339Nano)))

	client := newTestClient(srv, clock, platform.WithTokenStore(tokens))
	assert.Equal(t, platform.Authenticated, client.State())

	_, err := client.Request(context.Background(), "/dashboard", platform.RequestOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer persisted", srv.LastHeaders().Get("Authorization"))
}

func TestPlatformClient_DiscardsExpiredPersistedSession(t *testing.T) {
	srv := newAPIServer(t)
	clock := newFakeClock()
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.Set(platform.TokenKey, "old"))
	require.NoError(t, tokens.Set(platform.TokenExpiryKey, clock.Now().Add(-time.Minute).Format(time.RFC3339Nano)))

	client := newTestClient(srv, clock, platform.WithTokenStore(tokens))
	assert.Equal(t, platform.Anonymous, client.State())
	_, found, _ := tokens.Get(platform.TokenKey)
	assert.False(t, found)
}

func TestPlatformClient_DiscardsMalformedPersistedSession(t *testing.T) {
	srv := newAPIServer(t)
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.Set(platform.TokenKey, "tok"))
	require.NoError(t, tokens.Set(platform.TokenExpiryKey, "tomorrow"))

	client := newTestClient(srv, newFakeClock(), platform.WithTokenStore(tokens))
	assert.Equal(t, platform.Anonymous, client.State())
	_, found, _ := tokens.Get(platform.TokenExpiryKey)
	assert.False(t, found)
}

func TestPlatformClient_ResponseFromClearedSessionIsNotCached(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once atomic.Bool
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", loginHandler("tok-1", "1h"))
	srv.handle("POST /auth/logout", jsonHandler(http.StatusOK, map[string]bool{"success": true}))
	srv.handle("GET /schools", func(w http.ResponseWriter, r *http.Request) {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-release
		writeJSON(w, http.StatusOK, map[string]interface{}{"schools": []map[string]string{{"id": "s1"}}})
	})
	client := newTestClient(srv, newFakeClock())
	ctx := context.Background()

	_, err := client.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- client.GetJSON(ctx, "/schools", &model.SchoolList{}, nil, nil)
	}()
	<-started
	require.NoError(t, client.Logout(ctx))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, 0, client.Cache().Len())
}

// slowSetCache signals when a write starts and delays it, widening the gap
// between a request finishing and its body landing in the cache.
type slowSetCache struct {
	common.ResponseCache
	setting chan struct{}
	once    sync.Once
}

func (c *slowSetCache) Set(key string, value []byte, ttl time.Duration) {
	c.once.Do(func() { close(c.setting) })
	time.Sleep(100 * time.Millisecond)
	c.ResponseCache.Set(key, value, ttl)
}

func TestPlatformClient_SessionClearedDuringCacheWriteLeavesCacheEmpty(t *testing.T) {
	srv := newAPIServer(t)
	srv.handle("POST /auth/login", loginHandler("tok-1", "1h"))
	srv.handle("GET /schools", jsonHandler(http.StatusOK, map[string]interface{}{"schools": []map[string]string{{"id": "s1"}}}))
	srv.handle("POST /tickets", jsonHandler(http.StatusUnauthorized, map[string]string{"message": "Session revoked"}))

	clock := newFakeClock()
	cache := &slowSetCache{
		ResponseCache: common.NewResponseCache(common.WithCacheClock(clock.Now)),
		setting:       make(chan struct{}),
	}
	client := newTestClient(srv, clock, platform.WithCache(cache))
	ctx := context.Background()

	_, err := client.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- client.GetJSON(ctx, "/schools", &model.SchoolList{}, nil, nil)
	}()
	<-cache.setting

	err = client.PostJSON(ctx, "/tickets", map[string]string{"subject": "help"}, nil)
	require.ErrorIs(t, err, common.ErrAuthentication)
	require.NoError(t, <-done)

	assert.Equal(t, platform.Anonymous, client.State())
	assert.Equal(t, 0, client.Cache().Len())
}
