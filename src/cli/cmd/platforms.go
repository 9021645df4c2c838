package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sofmeright/prebuild/src/config"
	"github.com/sofmeright/prebuild/src/output"
	"github.com/sofmeright/prebuild/src/platform"
	"github.com/sofmeright/prebuild/src/workspace"
	"github.com/spf13/cobra"
)

var platformsFlags buildFlags

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Determine the platforms a build runs on",
	Long: `Determine the platforms a build runs on.

Architectures come from the koji target's build tag. On scratch and isolated
builds an explicit --platform list replaces them. Otherwise the list is
narrowed to platforms with an enabled cluster, then by the platforms section
of container.yaml.`,
	RunE: runPlatforms,
}

func init() {
	platformsFlags.bindSource(platformsCmd)
	platformsFlags.bindPlatforms(platformsCmd)

	rootCmd.AddCommand(platformsCmd)
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	src, err := config.LoadSource(platformsFlags.sourceDir)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	color := output.UseColor()
	output.ContextBlock(w, output.BuildContext(
		output.KV{Key: "target", Value: platformsFlags.kojiTarget},
		output.KV{Key: "source", Value: platformsFlags.sourceDir},
	))

	_, err = resolvePlatforms(cmd.Context(), w, color, workspace.New(), src, &platformsFlags)
	return err
}

// resolvePlatforms runs platform resolution and renders its section.
func resolvePlatforms(ctx context.Context, w io.Writer, color bool, ws *workspace.Workspace, src *config.SourceConfig, f *buildFlags) (platform.Set, error) {
	start := time.Now()
	output.SectionStart(w, "prebuild_platforms", "Platforms")
	defer output.SectionEnd(w, "prebuild_platforms")

	set, err := newPlatformResolver(src).Resolve(ctx, ws, platform.Request{
		KojiTarget:    f.kojiTarget,
		UserPlatforms: f.platforms,
		Scratch:       f.scratch,
		Isolated:      f.isolated,
	})
	if err != nil {
		return nil, fmt.Errorf("platforms: %w", err)
	}

	sec := output.NewSection(w, "Platforms", time.Since(start), color)
	if f.kojiTarget != "" {
		sec.Field("koji target", f.kojiTarget)
	}
	if len(f.platforms) > 0 {
		sec.Field("requested", output.List(f.platforms, color))
	}
	if set == nil {
		sec.Field("platforms", output.Dimmed("undetermined", color))
	} else {
		sec.Field("platforms", output.List(set.Sorted(), color))
	}
	sec.Close()

	return set, nil
}
