package remotesource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sofmeright/prebuild/src/cachito"
)

var requiredFields = []string{"repo", "ref", "packages"}

// recognizedFields are the request members carried into the build's
// metadata. Anything else the service reports is dropped.
var recognizedFields = []string{
	"repo",
	"ref",
	"environment_variables",
	"flags",
	"pkg_managers",
	"dependencies",
	"packages",
	"configuration_files",
	"content_manifest",
}

// ValidateRequest checks that a completed request carries the members a
// build depends on.
func ValidateRequest(req *cachito.SourceRequest) error {
	var missing []string
	for _, key := range requiredFields {
		if !req.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: received invalid source request: missing %s", ErrRemoteSource, strings.Join(missing, ", "))
	}
	return nil
}

// Sanitized is the remote-source description recorded with the build: the
// recognized request members, each exactly as the service sent it.
type Sanitized map[string]json.RawMessage

// Sanitize keeps the recognized members of req.
func Sanitize(req *cachito.SourceRequest) Sanitized {
	out := Sanitized{}
	for _, key := range recognizedFields {
		if raw, ok := req.Fields[key]; ok {
			out[key] = raw
		}
	}
	return out
}
