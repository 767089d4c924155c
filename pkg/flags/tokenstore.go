package flags

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/store"
	v1 "github.com/guarzo/schooladmin/pkg/apis/config/v1"
)

const (
	TokenStoreMemory = "memory"
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
)

// TokenStoreFlags selects where the session credential is persisted.
type TokenStoreFlags struct {
	Backend  string
	File     string
	RedisURL string
}

func NewTokenStoreFlags() *TokenStoreFlags {
	return &TokenStoreFlags{
		Backend: TokenStoreFile,
		File:    defaultTokenFile(),
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "schooladmin", "session.json")
}

func (f *TokenStoreFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Backend, "token-store", f.Backend, "Where to keep the session credential: memory, file or redis")
	fs.StringVar(&f.File, "token-file", f.File, "Session file used by the file token store")
	fs.StringVar(&f.RedisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL used by the redis token store")
}

// ApplyConfig fills in values from the config file for flags not set on the command line.
func (f *TokenStoreFlags) ApplyConfig(cfg v1.TokenStoreConfig, fs *pflag.FlagSet) {
	if cfg.Backend != "" && !fs.Changed("token-store") {
		f.Backend = cfg.Backend
	}
	if cfg.File != "" && !fs.Changed("token-file") {
		f.File = cfg.File
	}
	if cfg.RedisURL != "" && !fs.Changed("redis-url") {
		f.RedisURL = cfg.RedisURL
	}
}

func (f *TokenStoreFlags) Validate() error {
	switch f.Backend {
	case TokenStoreMemory:
	case TokenStoreFile:
		if f.File == "" {
			return fmt.Errorf("--token-file is required for the file token store")
		}
	case TokenStoreRedis:
		if f.RedisURL == "" {
			return fmt.Errorf("--redis-url is required for the redis token store")
		}
	default:
		return fmt.Errorf("unknown token store %q", f.Backend)
	}
	return nil
}

func (f *TokenStoreFlags) GetTokenStore() (common.KeyValueStore, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	switch f.Backend {
	case TokenStoreRedis:
		rs, err := store.NewRedisStore(f.RedisURL)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case TokenStoreFile:
		return store.NewFileStore(f.File), nil
	default:
		return store.NewMemoryStore(), nil
	}
}
