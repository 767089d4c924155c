package configflags

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	v1 "github.com/guarzo/schooladmin/pkg/apis/config/v1"
)

// ConfigFlags holds the location of the schooladmin configuration file.
type ConfigFlags struct {
	Path string
}

func NewConfigFlags() *ConfigFlags {
	return &ConfigFlags{}
}

func (f *ConfigFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Path,
		"config",
		os.Getenv("SCHOOLADMIN_CONFIG"),
		"Optional YAML configuration file (API settings, token store, cache policies)")
}

// GetConfig loads the configuration file, or returns an empty config when none is set.
func (f *ConfigFlags) GetConfig() (*v1.SchoolAdminConfig, error) {
	var config v1.SchoolAdminConfig
	if f.Path == "" {
		return &config, nil
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.WithMessage(err, "could not load config")
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.WithMessage(err, "couldn't unmarshal config")
	}
	return &config, nil
}
