package remotesource

import (
	"fmt"
	"strings"

	"github.com/sofmeright/prebuild/src/cachito"
)

// ParseReplacement parses "type:name:version[:new_name]".
func ParseReplacement(s string) (cachito.DependencyReplacement, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return cachito.DependencyReplacement{}, fmt.Errorf(
			"%w: dependency replacements must be \"type:name:version[:new_name]\", got %q", ErrRemoteSource, s)
	}

	dr := cachito.DependencyReplacement{
		Type:    parts[0],
		Name:    parts[1],
		Version: parts[2],
	}
	if len(parts) > 3 {
		dr.NewName = parts[3]
	}
	return dr, nil
}

// ParseReplacements parses every string, failing on the first malformed one.
func ParseReplacements(strs []string) ([]cachito.DependencyReplacement, error) {
	if len(strs) == 0 {
		return nil, nil
	}
	out := make([]cachito.DependencyReplacement, 0, len(strs))
	for _, s := range strs {
		dr, err := ParseReplacement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, nil
}
