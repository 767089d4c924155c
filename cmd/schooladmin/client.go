package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/modules/platform"
	"github.com/guarzo/schooladmin/pkg/flags"
	"github.com/guarzo/schooladmin/pkg/flags/configflags"
)

// ClientFlags are the persistent flags every API command shares.
type ClientFlags struct {
	APIFlags        *flags.APIFlags
	TokenStoreFlags *flags.TokenStoreFlags
	ConfigFlags     *configflags.ConfigFlags
}

func NewClientFlags() *ClientFlags {
	return &ClientFlags{
		APIFlags:        flags.NewAPIFlags(),
		TokenStoreFlags: flags.NewTokenStoreFlags(),
		ConfigFlags:     configflags.NewConfigFlags(),
	}
}

func (f *ClientFlags) BindFlags(fs *pflag.FlagSet) {
	f.APIFlags.BindFlags(fs)
	f.TokenStoreFlags.BindFlags(fs)
	f.ConfigFlags.BindFlags(fs)
}

// PlatformHandle bundles what a command needs to talk to the API.
type PlatformHandle struct {
	client   platform.PlatformClient
	service  platform.PlatformService
	policies common.CachePolicies
}

// NewPlatform resolves flags against the config file and builds the client
// and typed service. fs must be the parsed flag set of the running command.
func (f *ClientFlags) NewPlatform(fs *pflag.FlagSet, opts ...platform.Option) (*PlatformHandle, error) {
	config, err := f.ConfigFlags.GetConfig()
	if err != nil {
		return nil, err
	}
	f.APIFlags.ApplyConfig(config.API, fs)
	f.TokenStoreFlags.ApplyConfig(config.TokenStore, fs)

	if err := f.APIFlags.Validate(); err != nil {
		return nil, errors.WithMessage(err, "error validating options")
	}
	tokens, err := f.TokenStoreFlags.GetTokenStore()
	if err != nil {
		return nil, errors.WithMessage(err, "couldn't get token store")
	}

	log.WithFields(log.Fields{
		"api":        f.APIFlags.URL,
		"timeout":    f.APIFlags.Timeout,
		"tokenStore": f.TokenStoreFlags.Backend,
	}).Debug("creating platform client")

	base := []platform.Option{
		platform.WithTimeout(f.APIFlags.Timeout),
		platform.WithTokenStore(tokens),
	}
	httpClient := common.NewHttpClient(f.APIFlags.UserAgent, nil)
	client := platform.NewPlatformClient(f.APIFlags.URL, httpClient, append(base, opts...)...)

	policies := common.DefaultCachePolicies().Merge(config.Cache)
	return &PlatformHandle{
		client:   client,
		service:  platform.NewPlatformService(client, policies),
		policies: policies,
	}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
