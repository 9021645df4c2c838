package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sofmeright/prebuild/src/config"
	"github.com/sofmeright/prebuild/src/koji"
	"github.com/sofmeright/prebuild/src/workspace"
)

// WorkspaceKey is where the resolved platform set is published.
var WorkspaceKey = workspace.NewKey[Set](workspace.StageCheckPlatforms)

// TagService is the part of the koji hub the resolver queries.
// *koji.Client implements it.
type TagService interface {
	GetLastEvent(ctx context.Context) (*koji.Event, error)
	GetBuildTarget(ctx context.Context, name string, event int) (*koji.BuildTarget, error)
	GetBuildConfig(ctx context.Context, tag int, event int) (*koji.BuildConfig, error)
}

// ClusterSource reports which build clusters serve a platform.
// *config.ReactorConfig implements it.
type ClusterSource interface {
	EnabledClustersForPlatform(platform string) []config.Cluster
}

// Request holds the per-build inputs to platform resolution.
type Request struct {
	// KojiTarget names the koji build target. Empty means the build has no
	// target and relies on UserPlatforms alone.
	KojiTarget string

	// UserPlatforms is the platform list supplied with the build request.
	UserPlatforms []string

	Scratch  bool
	Isolated bool
}

// Resolver determines the platforms a build runs on.
type Resolver struct {
	Tags     TagService // required when requests carry a KojiTarget
	Clusters ClusterSource
	Limits   Limiter // nil = no limits
	Log      *slog.Logger
}

// UserOverrideWins reports whether an explicit user platform list replaces
// the koji-derived one. It does so only on scratch or isolated builds, and
// only when the user list is non-empty and differs from what koji reports:
// a user list that matches koji is not treated as an override.
func UserOverrideWins(scratchOrIsolated bool, override, derived Set) bool {
	return scratchOrIsolated && len(override) > 0 && !override.Equal(derived)
}

// Resolve determines the build's platforms and publishes them to ws.
//
// A koji target whose build tag lists no arches leaves the platforms
// undetermined: Resolve returns a nil set and a nil error and publishes
// nothing. If no platform source exists at all, or every platform is
// filtered out, it returns ErrNoPlatforms.
func (r *Resolver) Resolve(ctx context.Context, ws *workspace.Workspace, req Request) (Set, error) {
	log := r.logger()
	override := NewSet(req.UserPlatforms...)

	var platforms Set
	if req.KojiTarget != "" {
		log.Info("checking koji target for platforms", "target", req.KojiTarget)
		derived, err := r.kojiPlatforms(ctx, req.KojiTarget)
		if err != nil {
			return nil, err
		}
		if len(derived) == 0 {
			log.Info("no platforms found in koji target", "target", req.KojiTarget)
			return nil, nil
		}
		log.Info("koji platforms", "platforms", derived.Sorted())

		if UserOverrideWins(req.Scratch || req.Isolated, override, derived) {
			log.Info("using user specified platforms instead of koji platforms", "platforms", override.Sorted())
			return override, r.publish(ws, override)
		}
		platforms = derived
	} else {
		platforms = override
		log.Info("no koji platforms, using user specified platforms", "platforms", platforms.Sorted())
	}

	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	enabled := r.withClusters(platforms)

	final := enabled
	if r.Limits != nil {
		final = r.Limits.InLimits(enabled)
	}
	log.Info("platforms in limits", "platforms", final.Sorted())

	if len(final) == 0 {
		return nil, fmt.Errorf("%w: all of %s were filtered out", ErrNoPlatforms, strings.Join(platforms.Sorted(), ", "))
	}
	return final, r.publish(ws, final)
}

// kojiPlatforms reads the arches of the target's build tag. Every query uses
// the same event so target and tag are read from one snapshot.
func (r *Resolver) kojiPlatforms(ctx context.Context, target string) (Set, error) {
	if r.Tags == nil {
		return nil, fmt.Errorf("koji target %q given but koji is not configured", target)
	}

	event, err := r.Tags.GetLastEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting last koji event: %w", err)
	}
	info, err := r.Tags.GetBuildTarget(ctx, target, event.ID)
	if err != nil {
		return nil, fmt.Errorf("getting koji build target %q: %w", target, err)
	}
	conf, err := r.Tags.GetBuildConfig(ctx, info.BuildTag, event.ID)
	if err != nil {
		return nil, fmt.Errorf("getting koji build config for tag %d: %w", info.BuildTag, err)
	}
	return NewSet(strings.Fields(conf.Arches)...), nil
}

// withClusters drops platforms that have no enabled build cluster.
func (r *Resolver) withClusters(platforms Set) Set {
	enabled := Set{}
	for _, p := range platforms.Sorted() {
		if r.Clusters != nil && len(r.Clusters.EnabledClustersForPlatform(p)) > 0 {
			enabled[p] = struct{}{}
			continue
		}
		r.logger().Warn("no cluster found for platform in reactor config, skipping", "platform", p)
	}
	return enabled
}

func (r *Resolver) publish(ws *workspace.Workspace, platforms Set) error {
	if ws == nil {
		return nil
	}
	return workspace.Put(ws, WorkspaceKey, platforms)
}

func (r *Resolver) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
