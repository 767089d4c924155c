package flags

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/guarzo/schooladmin/common"
	v1 "github.com/guarzo/schooladmin/pkg/apis/config/v1"
	"github.com/guarzo/schooladmin/pkg/version"
)

const defaultAPIURL = "http://localhost:5000/api"

// APIFlags holds how to reach the platform API.
type APIFlags struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

func NewAPIFlags() *APIFlags {
	apiURL := os.Getenv("SCHOOLADMIN_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &APIFlags{
		URL:       apiURL,
		Timeout:   common.DefaultRequestTimeout,
		UserAgent: version.UserAgent(),
	}
}

func (f *APIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.URL, "api-url", f.URL, "Base URL of the platform API (env SCHOOLADMIN_API_URL)")
	fs.DurationVar(&f.Timeout, "timeout", f.Timeout, "Hard timeout for each API request")
	fs.StringVar(&f.UserAgent, "user-agent", f.UserAgent, "User-Agent sent with API requests")
}

// ApplyConfig fills in values from the config file for flags not set on the command line.
func (f *APIFlags) ApplyConfig(cfg v1.APIConfig, fs *pflag.FlagSet) {
	if cfg.URL != "" && !fs.Changed("api-url") {
		f.URL = cfg.URL
	}
	if cfg.Timeout > 0 && !fs.Changed("timeout") {
		f.Timeout = cfg.Timeout
	}
	if cfg.UserAgent != "" && !fs.Changed("user-agent") {
		f.UserAgent = cfg.UserAgent
	}
}

func (f *APIFlags) Validate() error {
	u, err := url.Parse(f.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("--api-url must be an absolute URL, got %q", f.URL)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}
	return nil
}
