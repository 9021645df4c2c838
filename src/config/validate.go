package config

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Validate checks structural invariants of a loaded ReactorConfig.
func Validate(cfg *ReactorConfig) error {
	var errs []string

	// ── Version ───────────────────────────────────────────────────────────

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("version: must be 1, got %d", cfg.Version))
	}

	// ── Koji ──────────────────────────────────────────────────────────────

	if cfg.Koji != nil && cfg.Koji.HubURL == "" {
		errs = append(errs, "koji.hub_url: required when koji is configured")
	}

	// ── Cachito ───────────────────────────────────────────────────────────

	if c := cfg.Cachito; c != nil {
		if c.APIURL == "" {
			errs = append(errs, "cachito.api_url: required when cachito is configured")
		}
		if c.Timeout < 0 {
			errs = append(errs, fmt.Sprintf("cachito.timeout: must not be negative, got %s", c.Timeout))
		}
		if c.PollInterval < 0 {
			errs = append(errs, fmt.Sprintf("cachito.poll_interval: must not be negative, got %s", c.PollInterval))
		}
	}

	// ── Clusters ──────────────────────────────────────────────────────────

	for platform, clusters := range cfg.Clusters {
		names := make(map[string]bool)
		for i, cl := range clusters {
			cpath := fmt.Sprintf("clusters.%s[%d]", platform, i)
			if cl.Name == "" {
				errs = append(errs, fmt.Sprintf("%s: name is required", cpath))
			} else if names[cl.Name] {
				errs = append(errs, fmt.Sprintf("%s: duplicate cluster name %q", cpath, cl.Name))
			} else {
				names[cl.Name] = true
			}
			if cl.MaxConcurrentBuilds < 0 {
				errs = append(errs, fmt.Sprintf("%s: max_concurrent_builds must not be negative", cpath))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateSource checks structural invariants of a loaded SourceConfig.
// Entries of remote_sources are not checked: the resolver rejects the
// multi-source form as a whole.
func ValidateSource(cfg *SourceConfig) error {
	var errs []string

	if rs := cfg.RemoteSource; rs != nil {
		errs = append(errs, validateRemoteSource(*rs, "remote_source")...)
	}

	for _, p := range append(append([]string{}, cfg.Platforms.Only...), cfg.Platforms.Not...) {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, "platforms: empty platform name")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRemoteSource(rs RemoteSource, path string) []string {
	var errs []string
	if rs.Repo == "" {
		errs = append(errs, fmt.Sprintf("%s.repo: required", path))
	}
	if rs.Ref == "" {
		errs = append(errs, fmt.Sprintf("%s.ref: required", path))
	} else if !plumbing.IsHash(rs.Ref) {
		errs = append(errs, fmt.Sprintf("%s.ref: must be a full 40 character commit hash, got %q", path, rs.Ref))
	}
	return errs
}
