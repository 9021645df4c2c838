package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "reactor-config.yaml"

const (
	DefaultUnknownUser  = "unknown_user"
	DefaultWaitTimeout  = time.Hour
	DefaultPollInterval = 5 * time.Second
)

// ReactorConfig is the cluster-wide build configuration.
type ReactorConfig struct {
	Version  int                  `yaml:"version"`
	Koji     *KojiConfig          `yaml:"koji"`
	Cachito  *CachitoConfig       `yaml:"cachito"`
	Clusters map[string][]Cluster `yaml:"clusters"`
}

// KojiConfig locates the koji hub.
type KojiConfig struct {
	HubURL  string   `yaml:"hub_url"`
	RootURL string   `yaml:"root_url"`
	Auth    KojiAuth `yaml:"auth"`
}

// KojiAuth holds koji authentication settings. Only anonymous hub calls are
// made during input resolution, so these are carried but not used here.
type KojiAuth struct {
	KrbPrincipal  string `yaml:"krb_principal,omitempty"`
	KrbKeytabPath string `yaml:"krb_keytab_path,omitempty"`
	SSLCertsDir   string `yaml:"ssl_certs_dir,omitempty"`
	ProxyUser     string `yaml:"proxyuser,omitempty"`
}

// CachitoConfig configures the remote-source service. A nil *CachitoConfig
// means the feature is not available to builds.
type CachitoConfig struct {
	APIURL string      `yaml:"api_url"`
	Auth   CachitoAuth `yaml:"auth"`

	// UnknownUser is reported as the requester when the build's owner
	// cannot be determined.
	UnknownUser string `yaml:"unknown_user"`

	// Timeout bounds the wait for a request to complete.
	Timeout time.Duration `yaml:"timeout"`

	// PollInterval is the delay between request state checks.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// CachitoAuth holds client certificate settings. The directory is expected
// to contain a PEM file named "cert" with both certificate and key.
type CachitoAuth struct {
	SSLCertsDir string `yaml:"ssl_certs_dir"`
}

// Cluster is one build cluster serving a platform.
type Cluster struct {
	Name                string `yaml:"name"`
	MaxConcurrentBuilds int    `yaml:"max_concurrent_builds"`
	Enabled             *bool  `yaml:"enabled"` // nil = enabled
}

// IsEnabled reports whether the cluster accepts builds.
func (c Cluster) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// EnabledClustersForPlatform returns the enabled clusters configured for
// platform, in configuration order.
func (c *ReactorConfig) EnabledClustersForPlatform(platform string) []Cluster {
	var enabled []Cluster
	for _, cl := range c.Clusters[platform] {
		if cl.IsEnabled() {
			enabled = append(enabled, cl)
		}
	}
	return enabled
}

// Load reads the reactor configuration from a YAML file.
// If path is empty, it tries the default file.
// Returns defaults if the file doesn't exist.
func Load(path string) (*ReactorConfig, error) {
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a reactor configuration document.
func Parse(data []byte) (*ReactorConfig, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *ReactorConfig {
	return &ReactorConfig{
		Version:  1,
		Clusters: map[string][]Cluster{},
	}
}

func applyDefaults(cfg *ReactorConfig) {
	if cfg.Clusters == nil {
		cfg.Clusters = map[string][]Cluster{}
	}
	if c := cfg.Cachito; c != nil {
		if c.UnknownUser == "" {
			c.UnknownUser = DefaultUnknownUser
		}
		if c.Timeout == 0 {
			c.Timeout = DefaultWaitTimeout
		}
		if c.PollInterval == 0 {
			c.PollInterval = DefaultPollInterval
		}
	}
}
