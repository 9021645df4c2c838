package workspace

// AllPlatforms is the platform key of an override that applies to every
// worker build.
const AllPlatforms = ""

// WorkerOverride is the set of per-worker build parameters a resolution stage
// contributes to the orchestrated worker builds.
type WorkerOverride struct {
	RemoteSourceURL       string            `json:"remote_source_url,omitempty"`
	RemoteSourceConfigs   string            `json:"remote_source_configs,omitempty"`
	RemoteSourceBuildArgs map[string]string `json:"remote_source_build_args,omitempty"`
	RemoteSourceICMURL    string            `json:"remote_source_icm_url,omitempty"`
}

// WorkerOverrides maps a platform (or AllPlatforms) to its overrides.
type WorkerOverrides map[string]WorkerOverride

// For returns the overrides that apply to platform: the AllPlatforms entry
// with any platform-specific fields laid over it.
func (o WorkerOverrides) For(platform string) WorkerOverride {
	merged := o[AllPlatforms]
	specific, ok := o[platform]
	if !ok || platform == AllPlatforms {
		return merged
	}
	if specific.RemoteSourceURL != "" {
		merged.RemoteSourceURL = specific.RemoteSourceURL
	}
	if specific.RemoteSourceConfigs != "" {
		merged.RemoteSourceConfigs = specific.RemoteSourceConfigs
	}
	if specific.RemoteSourceICMURL != "" {
		merged.RemoteSourceICMURL = specific.RemoteSourceICMURL
	}
	if len(specific.RemoteSourceBuildArgs) > 0 {
		args := make(map[string]string, len(merged.RemoteSourceBuildArgs)+len(specific.RemoteSourceBuildArgs))
		for k, v := range merged.RemoteSourceBuildArgs {
			args[k] = v
		}
		for k, v := range specific.RemoteSourceBuildArgs {
			args[k] = v
		}
		merged.RemoteSourceBuildArgs = args
	}
	return merged
}

// OrchestrateBuild is the orchestration stage's entry.
type OrchestrateBuild struct {
	OverrideKwargs WorkerOverrides `json:"override_kwargs"`
}

// OrchestrateBuildKey is the well-known key resolution stages publish worker
// overrides under.
var OrchestrateBuildKey = NewKey[*OrchestrateBuild](StageOrchestrateBuild)

