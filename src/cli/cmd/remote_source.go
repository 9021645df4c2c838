package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sofmeright/prebuild/src/config"
	"github.com/sofmeright/prebuild/src/output"
	"github.com/sofmeright/prebuild/src/remotesource"
	"github.com/sofmeright/prebuild/src/workspace"
	"github.com/spf13/cobra"
)

var remoteSourceFlags buildFlags

var remoteSourceCmd = &cobra.Command{
	Use:   "remote-source",
	Short: "Fetch the build's remote source through Cachito",
	Long: `Fetch the build's remote source through Cachito.

Submits the remote_source of container.yaml, waits for the request to
complete, downloads the bundle and prints the build arguments the bundle's
environment translates to. The requesting user is read from the koji task
named by the build object in $BUILD.`,
	RunE: runRemoteSource,
}

func init() {
	remoteSourceFlags.bindSource(remoteSourceCmd)
	remoteSourceFlags.bindRemoteSource(remoteSourceCmd)

	rootCmd.AddCommand(remoteSourceCmd)
}

func runRemoteSource(cmd *cobra.Command, args []string) error {
	src, err := config.LoadSource(remoteSourceFlags.sourceDir)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	_, err = resolveRemoteSource(cmd.Context(), w, output.UseColor(), workspace.New(), src, &remoteSourceFlags)
	return err
}

// resolveRemoteSource runs remote-source resolution and renders its
// section. A build without a remote source yields nil.
func resolveRemoteSource(ctx context.Context, w io.Writer, color bool, ws *workspace.Workspace, src *config.SourceConfig, f *buildFlags) (*remotesource.Result, error) {
	build, err := buildObject()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	output.SectionStart(w, "prebuild_remote_source", "Remote source")
	defer output.SectionEnd(w, "prebuild_remote_source")

	res, err := newRemoteSourceResolver().Resolve(ctx, ws, remotesource.Request{
		Source:                 src,
		DependencyReplacements: f.replacements,
		Scratch:                f.scratch,
		Build:                  build,
		WorkDir:                f.workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("remote source: %w", err)
	}

	sec := output.NewSection(w, "Remote source", time.Since(start), color)
	if res == nil {
		sec.Row("%s", output.Dimmed("no remote source to resolve", color))
		sec.Close()
		return nil, nil
	}

	sec.Field("url", res.Annotations[remotesource.AnnotationURL])
	sec.Field("archive", res.Path)
	if orchestrate, ok := workspace.Get(ws, workspace.OrchestrateBuildKey); ok {
		args := orchestrate.OverrideKwargs.For(workspace.AllPlatforms).RemoteSourceBuildArgs
		names := make([]string, 0, len(args))
		for name := range args {
			names = append(names, name)
		}
		sort.Strings(names)

		sec.Separator()
		for _, name := range names {
			sec.Field(name, args[name])
		}
	}
	sec.Close()

	return res, nil
}
