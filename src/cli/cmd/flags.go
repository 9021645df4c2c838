package cmd

import (
	"github.com/spf13/cobra"
)

// buildFlags are the per-build inputs shared by the resolution commands.
type buildFlags struct {
	sourceDir    string
	kojiTarget   string
	platforms    []string
	replacements []string
	workDir      string
	scratch      bool
	isolated     bool
}

func (f *buildFlags) bindSource(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sourceDir, "source-dir", ".", "directory holding container.yaml")
	cmd.Flags().BoolVar(&f.scratch, "scratch", false, "scratch build")
}

func (f *buildFlags) bindPlatforms(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kojiTarget, "koji-target", "", "koji build target")
	cmd.Flags().StringSliceVar(&f.platforms, "platform", nil, "platforms to build for when there is no koji target; on scratch or isolated builds, overrides the koji platforms (comma-separated)")
	cmd.Flags().BoolVar(&f.isolated, "isolated", false, "isolated build")
}

func (f *buildFlags) bindRemoteSource(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.replacements, "dependency-replacement", nil, "replace a dependency, as type:name:version[:new_name] (scratch builds only)")
	cmd.Flags().StringVar(&f.workDir, "workdir", "", "directory the source bundle is downloaded to (default: current directory)")
}
