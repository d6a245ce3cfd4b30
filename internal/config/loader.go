package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/securefile"
	"github.com/spf13/viper"
)

const envPrefix = "PYRO"

const (
	TransportNative = "native"
	TransportHTTP   = "http"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type HostSettings struct {
	Transport      string
	LocalHost      string
	Port           string
	AllowedOrigins []string
	RequestTimeout time.Duration
	// NativeInflight bounds concurrent native-messaging requests. Above 1,
	// responses can arrive out of order.
	NativeInflight int
}

type StorageSettings struct {
	Backend string
	Dir     string
}

type PolicySettings struct {
	MinPasswordLength int
	MinPasswordScore  int
}

type Config struct {
	Host     HostSettings
	Storage  StorageSettings
	Policy   PolicySettings
	Ethereum chains.Config `mapstructure:"Ethereum"`
}

// SearchPaths lists the directories checked for a user config.yaml, lowest
// priority first.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{".", filepath.Join(home, "config")}
	if dirs, err := securefile.DataDirCandidates(constants.AppName); err == nil {
		for i := len(dirs) - 1; i >= 0; i-- {
			paths = append(paths, dirs[i])
		}
	}
	return paths
}

func Load() (*Config, error) {
	return LoadFrom(SearchPaths())
}

// LoadFrom layers the embedded defaults, every config.yaml found in paths
// (later paths win) and PYRO_* environment overrides.
func LoadFrom(paths []string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return nil, errors.Wrap(err, "read embedded config")
	}

	for _, dir := range paths {
		path := filepath.Join(dir, constants.ConfigFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "merge %s", path)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize lower-cases network names and aliases and fills storage defaults.
func (c *Config) Normalize() error {
	c.Host.Transport = strings.ToLower(strings.TrimSpace(c.Host.Transport))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))

	if c.Storage.Dir == "" && c.Storage.Backend != BackendMemory {
		dir, err := securefile.DefaultDataDir(constants.AppName)
		if err != nil {
			return errors.Wrap(err, "resolve data dir")
		}
		c.Storage.Dir = dir
	}

	nets := make(map[string]chains.NetworkConfig, len(c.Ethereum.Networks))
	for name, n := range c.Ethereum.Networks {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return errors.New("Ethereum.Networks has an empty network name")
		}
		for i, a := range n.Aliases {
			n.Aliases[i] = strings.ToLower(strings.TrimSpace(a))
		}
		nets[key] = n
	}
	c.Ethereum.Networks = nets
	c.Ethereum.DefaultNetwork = strings.ToLower(strings.TrimSpace(c.Ethereum.DefaultNetwork))
	return nil
}

func (c *Config) Validate() error {
	switch c.Host.Transport {
	case TransportNative, TransportHTTP:
	default:
		return errors.Newf("Host.Transport %q (allowed: native, http)", c.Host.Transport)
	}
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return errors.Newf("Storage.Backend %q (allowed: file, sqlite, memory)", c.Storage.Backend)
	}
	if c.Host.NativeInflight < 1 {
		return errors.Newf("Host.NativeInflight %d must be at least 1", c.Host.NativeInflight)
	}
	if c.Policy.MinPasswordScore < 0 || c.Policy.MinPasswordScore > 4 {
		return errors.Newf("Policy.MinPasswordScore %d out of range 0..4", c.Policy.MinPasswordScore)
	}

	if _, ok := c.Ethereum.Networks[c.Ethereum.DefaultNetwork]; !ok {
		return errors.Newf("Ethereum.DefaultNetwork %q is not configured", c.Ethereum.DefaultNetwork)
	}
	for name, n := range c.Ethereum.Networks {
		if n.ChainID == 0 {
			return errors.Newf("network %q: chainId is required", name)
		}
		hasURL := false
		for _, r := range n.RPCs {
			if strings.TrimSpace(r.URL) != "" {
				hasURL = true
				break
			}
		}
		if !hasURL {
			return errors.Newf("network %q: at least one rpc url is required", name)
		}
	}
	return nil
}

// InjectRPCURL overrides the first RPC of network, e.g. from PYRO_MAINNET_RPC.
func (c *Config) InjectRPCURL(network, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	n, ok := c.Ethereum.Networks[network]
	if !ok {
		return errors.Newf("unknown network %q", network)
	}

	if len(n.RPCs) == 0 {
		n.RPCs = []chains.RPC{{Name: "env", URL: url}}
	} else {
		n.RPCs[0] = chains.RPC{Name: "env", URL: url}
	}
	// map values are copies
	c.Ethereum.Networks[network] = n
	return nil
}

// ApplyRPCEnv applies PYRO_<NETWORK>_RPC for every configured network.
func (c *Config) ApplyRPCEnv() error {
	for name := range c.Ethereum.Networks {
		key := envPrefix + "_" + strings.ToUpper(name) + "_RPC"
		if err := c.InjectRPCURL(name, os.Getenv(key)); err != nil {
			return err
		}
	}
	return nil
}
