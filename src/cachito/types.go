package cachito

import (
	"encoding/json"
	"time"
)

// Request states reported by the service.
const (
	StateInProgress = "in_progress"
	StateComplete   = "complete"
	StateFailed     = "failed"
	StateStale      = "stale"
)

// SourceRequest is a request as reported by the service. The typed fields
// are a convenience view; Fields keeps every top-level member exactly as
// received so callers can check presence and pass values through untouched.
type SourceRequest struct {
	ID                   int64             `json:"id"`
	Repo                 string            `json:"repo"`
	Ref                  string            `json:"ref"`
	State                string            `json:"state"`
	StateReason          string            `json:"state_reason"`
	Packages             []Package         `json:"packages"`
	Dependencies         []Dependency      `json:"dependencies"`
	EnvironmentVariables map[string]string `json:"environment_variables"`
	Flags                []string          `json:"flags"`
	PkgManagers          []string          `json:"pkg_managers"`
	ConfigurationFiles   string            `json:"configuration_files"`
	ContentManifest      string            `json:"content_manifest"`

	Fields map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed view and records the raw members.
func (r *SourceRequest) UnmarshalJSON(data []byte) error {
	// Decode into an alias type to avoid infinite recursion
	type requestAlias SourceRequest
	var alias requestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = SourceRequest(alias)
	r.Fields = fields
	return nil
}

// Has reports whether the service sent member key.
func (r *SourceRequest) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Package is a package the service resolved in the source repository.
type Package struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
}

// Dependency is a resolved dependency of the source repository's packages.
type Dependency struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Version  string      `json:"version"`
	Replaces *Dependency `json:"replaces,omitempty"`
}

// EnvVarKind says how an environment variable's value is to be read.
type EnvVarKind string

const (
	// KindLiteral values are used as-is.
	KindLiteral EnvVarKind = "literal"
	// KindPath values are paths relative to the unpacked source bundle.
	KindPath EnvVarKind = "path"
)

// Valid reports whether k is a kind this client understands.
func (k EnvVarKind) Valid() bool {
	return k == KindLiteral || k == KindPath
}

// EnvVar is one environment variable the bundle's build needs.
type EnvVar struct {
	Kind  EnvVarKind `json:"kind"`
	Value string     `json:"value"`
}

// DependencyReplacement asks the service to swap a dependency for another
// version, optionally under a new name.
type DependencyReplacement struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
	NewName string `json:"new_name,omitempty"`
}

// RequestParams is the body of a new source request.
type RequestParams struct {
	Repo                   string                  `json:"repo"`
	Ref                    string                  `json:"ref"`
	User                   string                  `json:"user,omitempty"`
	PkgManagers            []string                `json:"pkg_managers,omitempty"`
	Flags                  []string                `json:"flags,omitempty"`
	DependencyReplacements []DependencyReplacement `json:"dependency_replacements,omitempty"`
}

// WaitOptions bounds WaitForRequest.
type WaitOptions struct {
	// Timeout is the total time to wait. Zero waits until ctx is done.
	Timeout time.Duration

	// PollInterval is the delay between state checks. Zero uses
	// DefaultPollInterval.
	PollInterval time.Duration
}
