package flags_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/store"
	v1 "github.com/guarzo/schooladmin/pkg/apis/config/v1"
	"github.com/guarzo/schooladmin/pkg/flags"
	"github.com/guarzo/schooladmin/pkg/flags/configflags"
)

func TestAPIFlags_EnvDefault(t *testing.T) {
	t.Setenv("SCHOOLADMIN_API_URL", "https://admin.example.com/api")
	f := flags.NewAPIFlags()
	assert.Equal(t, "https://admin.example.com/api", f.URL)
	assert.Equal(t, common.DefaultRequestTimeout, f.Timeout)
	assert.NotEmpty(t, f.UserAgent)
}

func TestAPIFlags_ApplyConfigRespectsCommandLine(t *testing.T) {
	f := flags.NewAPIFlags()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--timeout", "3s"}))

	f.ApplyConfig(v1.APIConfig{URL: "https://from-config.example.com", Timeout: time.Minute}, fs)
	assert.Equal(t, "https://from-config.example.com", f.URL)
	assert.Equal(t, 3*time.Second, f.Timeout)
}

func TestAPIFlags_Validate(t *testing.T) {
	f := flags.NewAPIFlags()
	f.URL = "https://admin.example.com/api"
	assert.NoError(t, f.Validate())

	f.URL = "admin.example.com"
	assert.Error(t, f.Validate())

	f.URL = "https://admin.example.com/api"
	f.Timeout = 0
	assert.Error(t, f.Validate())
}

func TestTokenStoreFlags_GetTokenStore(t *testing.T) {
	f := flags.NewTokenStoreFlags()
	assert.Equal(t, flags.TokenStoreFile, f.Backend)

	f.Backend = flags.TokenStoreMemory
	s, err := f.GetTokenStore()
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	f.Backend = flags.TokenStoreFile
	f.File = filepath.Join(t.TempDir(), "session.json")
	s, err = f.GetTokenStore()
	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, s)

	f.Backend = flags.TokenStoreRedis
	f.RedisURL = ""
	_, err = f.GetTokenStore()
	assert.Error(t, err)

	f.Backend = "floppy"
	_, err = f.GetTokenStore()
	assert.Error(t, err)
}

func TestTokenStoreFlags_ApplyConfig(t *testing.T) {
	f := flags.NewTokenStoreFlags()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--token-store", "memory"}))

	f.ApplyConfig(v1.TokenStoreConfig{Backend: "redis", RedisURL: "redis://cache:6379"}, fs)
	assert.Equal(t, flags.TokenStoreMemory, f.Backend)
	assert.Equal(t, "redis://cache:6379", f.RedisURL)
}

func TestConfigFlags_GetConfig(t *testing.T) {
	empty, err := configflags.NewConfigFlags().GetConfig()
	require.NoError(t, err)
	assert.Empty(t, empty.API.URL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  url: https://admin.example.com/api
  timeout: 20s
tokenStore:
  backend: redis
  redisURL: redis://cache:6379
cachePolicies:
  dashboard:
    ttl: 1m
    staleTime: 5s
`), 0o600))

	f := &configflags.ConfigFlags{Path: path}
	config, err := f.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com/api", config.API.URL)
	assert.Equal(t, 20*time.Second, config.API.Timeout)
	assert.Equal(t, "redis", config.TokenStore.Backend)
	assert.Equal(t, common.CachePolicy{TTL: time.Minute, StaleTime: 5 * time.Second}, config.Cache[common.ResourceDashboard])

	_, err = (&configflags.ConfigFlags{Path: filepath.Join(t.TempDir(), "missing.yaml")}).GetConfig()
	assert.Error(t, err)
}
