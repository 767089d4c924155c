package v1

import (
	"time"

	"github.com/guarzo/schooladmin/common"
)

// SchoolAdminConfig is the optional YAML configuration file.
type SchoolAdminConfig struct {
	API        APIConfig            `yaml:"api"`
	TokenStore TokenStoreConfig     `yaml:"tokenStore"`
	Cache      common.CachePolicies `yaml:"cachePolicies"`
}

type APIConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// TokenStoreConfig selects where the session credential is kept between runs.
type TokenStoreConfig struct {
	// Backend is one of memory, file or redis.
	Backend  string `yaml:"backend"`
	File     string `yaml:"file"`
	RedisURL string `yaml:"redisURL"`
}
