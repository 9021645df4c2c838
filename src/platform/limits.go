package platform

import (
	"log/slog"

	"github.com/sofmeright/prebuild/src/config"
)

// Limiter narrows a candidate platform set to what a particular build allows.
type Limiter interface {
	InLimits(candidates Set) Set
}

// Limits applies the repository's container.yaml platform limits.
// When Only is non-empty, candidates outside it are removed; candidates in
// Not are always removed.
type Limits struct {
	Only Set
	Not  Set
	Log  *slog.Logger
}

// LimitsFromSource builds Limits from a repository's configuration.
// A nil cfg imposes no limits.
func LimitsFromSource(cfg *config.SourceConfig, log *slog.Logger) Limits {
	l := Limits{Log: log}
	if cfg != nil {
		l.Only = NewSet(cfg.Platforms.Only...)
		l.Not = NewSet(cfg.Platforms.Not...)
	}
	return l
}

// InLimits implements Limiter.
func (l Limits) InLimits(candidates Set) Set {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	result := NewSet(candidates.Sorted()...)
	if len(l.Only) > 0 {
		if dropped := result.Difference(l.Only); len(dropped) > 0 {
			log.Info("platforms not listed in platforms.only, skipping", "platforms", dropped.Sorted())
		}
		result = result.Intersect(l.Only)
	}
	if excluded := result.Intersect(l.Not); len(excluded) > 0 {
		log.Info("platforms excluded by platforms.not", "platforms", excluded.Sorted())
		result = result.Difference(l.Not)
	}
	return result
}
