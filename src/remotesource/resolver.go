package remotesource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/sofmeright/prebuild/src/cachito"
	"github.com/sofmeright/prebuild/src/config"
	"github.com/sofmeright/prebuild/src/workspace"
)

// AnnotationURL is the result annotation holding the bundle download URL.
const AnnotationURL = "remote_source_url"

// WorkspaceKey is where the resolution result is published.
var WorkspaceKey = workspace.NewKey[*Result](workspace.StageResolveRemoteSource)

// SourceService is the Cachito API surface the resolver drives.
// *cachito.Client implements it.
type SourceService interface {
	RequestSources(ctx context.Context, params cachito.RequestParams) (*cachito.SourceRequest, error)
	WaitForRequest(ctx context.Context, id int64, opts cachito.WaitOptions) (*cachito.SourceRequest, error)
	DownloadSources(ctx context.Context, req *cachito.SourceRequest, destDir string) (string, error)
	AssembleDownloadURL(req *cachito.SourceRequest) string
	RequestEnvVars(ctx context.Context, id int64) (map[string]cachito.EnvVar, error)
}

// DialFunc connects to the service described by cfg.
type DialFunc func(cfg *config.CachitoConfig) (SourceService, error)

// DialCachito is the default DialFunc.
func DialCachito(cfg *config.CachitoConfig) (SourceService, error) {
	return cachito.NewClient(cachito.ClientConfig{
		APIURL:   cfg.APIURL,
		CertsDir: cfg.Auth.SSLCertsDir,
	})
}

// Request holds the per-build inputs to remote-source resolution.
type Request struct {
	// Source is the repository's container.yaml. Nil means none.
	Source *config.SourceConfig

	// DependencyReplacements are "type:name:version[:new_name]" strings.
	DependencyReplacements []string

	Scratch bool

	// Build is the build object, used to identify the requester.
	Build *BuildInfo

	// WorkDir receives the downloaded bundle. Empty means the current
	// directory.
	WorkDir string
}

// Result describes the resolved remote source.
type Result struct {
	Annotations map[string]string `json:"annotations"`
	SourceJSON  Sanitized         `json:"remote_source_json"`
	Path        string            `json:"remote_source_path"`
}

// Resolver resolves remote sources through Cachito.
type Resolver struct {
	// Cachito is the service configuration. Nil means the service is not
	// available and resolution is skipped.
	Cachito *config.CachitoConfig

	// Dial defaults to DialCachito.
	Dial DialFunc

	// Owners identifies the requesting user. Nil falls back to the
	// unknown user.
	Owners OwnerLookup

	Log *slog.Logger
}

// Resolve resolves the remote source of a build and publishes the result
// and the worker-build overrides to ws.
//
// A build without a remote source, or a cluster without Cachito, is not an
// error: Resolve returns nil, nil.
func (r *Resolver) Resolve(ctx context.Context, ws *workspace.Workspace, req Request) (*Result, error) {
	log := r.logger()

	replacements, err := ParseReplacements(req.DependencyReplacements)
	if err != nil {
		return nil, err
	}
	if len(replacements) > 0 && !req.Scratch {
		return nil, fmt.Errorf("%w: dependency replacements are only allowed for scratch builds", ErrRemoteSource)
	}

	if req.Source != nil && len(req.Source.RemoteSources) > 0 {
		return nil, fmt.Errorf("%w: multiple remote sources are not supported, use single remote source in %s",
			ErrRemoteSource, config.SourceConfigFile)
	}
	if req.Source == nil || req.Source.RemoteSource == nil {
		log.Info("no remote source configured, skipping")
		return nil, nil
	}
	if r.Cachito == nil {
		log.Info("cachito is not configured, skipping remote source")
		return nil, nil
	}
	source := req.Source.RemoteSource

	if err := checkCertsDir(r.Cachito.Auth.SSLCertsDir); err != nil {
		return nil, err
	}

	dial := r.Dial
	if dial == nil {
		dial = DialCachito
	}
	svc, err := dial(r.Cachito)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteSource, err)
	}

	user, err := r.requester(ctx, req.Build)
	if err != nil {
		return nil, err
	}

	created, err := svc.RequestSources(ctx, cachito.RequestParams{
		Repo:                   source.Repo,
		Ref:                    source.Ref,
		User:                   user,
		PkgManagers:            source.PkgManagers,
		Flags:                  source.Flags,
		DependencyReplacements: replacements,
	})
	if err != nil {
		return nil, err
	}
	log.Info("submitted remote source request", "id", created.ID, "repo", source.Repo, "ref", source.Ref, "user", user)

	done, err := svc.WaitForRequest(ctx, created.ID, cachito.WaitOptions{
		Timeout:      r.Cachito.Timeout,
		PollInterval: r.Cachito.PollInterval,
	})
	if err != nil {
		return nil, err
	}
	if err := ValidateRequest(done); err != nil {
		return nil, err
	}

	workDir := req.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
	}
	archive, err := svc.DownloadSources(ctx, done, workDir)
	if err != nil {
		return nil, err
	}
	downloadURL := svc.AssembleDownloadURL(done)
	log.Info("downloaded remote source", "id", done.ID, "path", archive)

	vars, err := svc.RequestEnvVars(ctx, done.ID)
	if err != nil {
		return nil, err
	}
	buildArgs, err := BuildArgs(vars)
	if err != nil {
		return nil, err
	}

	orchestrate := &workspace.OrchestrateBuild{
		OverrideKwargs: workspace.WorkerOverrides{
			workspace.AllPlatforms: {
				RemoteSourceURL:       downloadURL,
				RemoteSourceConfigs:   done.ConfigurationFiles,
				RemoteSourceBuildArgs: buildArgs,
				RemoteSourceICMURL:    done.ContentManifest,
			},
		},
	}
	result := &Result{
		Annotations: map[string]string{AnnotationURL: downloadURL},
		SourceJSON:  Sanitize(done),
		Path:        archive,
	}

	if ws != nil {
		if err := workspace.Put(ws, workspace.OrchestrateBuildKey, orchestrate); err != nil {
			return nil, err
		}
		if err := workspace.Put(ws, WorkspaceKey, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func checkCertsDir(dir string) error {
	if dir == "" {
		return nil
	}
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: cachito ssl_certs_dir doesn't exist: %s", ErrRemoteSource, dir)
		}
		return fmt.Errorf("%w: cachito ssl_certs_dir: %v", ErrRemoteSource, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: cachito ssl_certs_dir is not a directory: %s", ErrRemoteSource, dir)
	}
	return nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
