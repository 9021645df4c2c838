package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfigFile is the per-repository build configuration file.
const SourceConfigFile = "container.yaml"

// SourceConfig is the build configuration a repository carries alongside
// its Dockerfile.
type SourceConfig struct {
	Platforms     PlatformLimits      `yaml:"platforms"`
	RemoteSource  *RemoteSource       `yaml:"remote_source"`
	RemoteSources []NamedRemoteSource `yaml:"remote_sources"`
}

// PlatformLimits narrows the platforms a repository builds for.
// Both fields accept a single platform or a list:
//
//	platforms:
//	  only: x86_64
//	  not: [s390x, ppc64le]
type PlatformLimits struct {
	Only StringList `yaml:"only"`
	Not  StringList `yaml:"not"`
}

// RemoteSource declares the dependency bundle to prefetch for the build.
type RemoteSource struct {
	Repo        string   `yaml:"repo"`
	Ref         string   `yaml:"ref"`
	PkgManagers []string `yaml:"pkg_managers,omitempty"`
	Flags       []string `yaml:"flags,omitempty"`
}

// NamedRemoteSource is one entry of the multi-source form.
type NamedRemoteSource struct {
	Name         string       `yaml:"name"`
	RemoteSource RemoteSource `yaml:"remote_source"`
}

// StringList decodes from either a scalar or a sequence of scalars.
type StringList []string

// UnmarshalYAML implements custom unmarshaling so lists accept both:
//
//	only: x86_64            → StringList{"x86_64"}
//	only: [x86_64, aarch64] → StringList{"x86_64", "aarch64"}
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return fmt.Errorf("expected list of strings: %w", err)
		}
		*l = items
		return nil
	}
	return fmt.Errorf("expected string or list, got YAML kind %d", value.Kind)
}

// LoadSource reads container.yaml from dir. A missing file yields an empty
// configuration.
func LoadSource(dir string) (*SourceConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, SourceConfigFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &SourceConfig{}, nil
		}
		return nil, err
	}
	return ParseSource(data)
}

// ParseSource decodes and validates a container.yaml document.
func ParseSource(data []byte) (*SourceConfig, error) {
	var cfg SourceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", SourceConfigFile, err)
	}
	if err := ValidateSource(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", SourceConfigFile, err)
	}
	return &cfg, nil
}
