package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sofmeright/prebuild/src/config"
	"github.com/sofmeright/prebuild/src/output"
	"github.com/sofmeright/prebuild/src/workspace"
	"github.com/spf13/cobra"
)

var (
	resolveFlags  buildFlags
	resolveOutput string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve platforms and remote sources for a build",
	Long: `Resolve platforms and remote sources for a build.

Runs platform resolution, then remote-source resolution, against one shared
build state. With --output the state is written as JSON, keyed by stage.`,
	RunE: runResolve,
}

func init() {
	resolveFlags.bindSource(resolveCmd)
	resolveFlags.bindPlatforms(resolveCmd)
	resolveFlags.bindRemoteSource(resolveCmd)
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "write the resolved build state to this file")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	src, err := config.LoadSource(resolveFlags.sourceDir)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	color := output.UseColor()
	ws := workspace.New()
	start := time.Now()

	output.ContextBlock(w, output.BuildContext(
		output.KV{Key: "target", Value: resolveFlags.kojiTarget},
		output.KV{Key: "source", Value: resolveFlags.sourceDir},
	))

	platStart := time.Now()
	platforms, err := resolvePlatforms(ctx, w, color, ws, src, &resolveFlags)
	if err != nil {
		output.PhaseResult(w, "platforms", output.StatusFailed, err.Error(), time.Since(platStart), color)
		return err
	}
	platElapsed := time.Since(platStart)

	rsStart := time.Now()
	remote, err := resolveRemoteSource(ctx, w, color, ws, src, &resolveFlags)
	if err != nil {
		output.PhaseResult(w, "remote source", output.StatusFailed, err.Error(), time.Since(rsStart), color)
		return err
	}
	rsElapsed := time.Since(rsStart)

	sum := output.NewSection(w, "Summary", 0, color)
	if platforms == nil {
		output.SummaryRow(w, "platforms", output.StatusSkipped, "undetermined "+output.Dimmed(platElapsed.Round(time.Millisecond).String(), color), color)
	} else {
		output.SummaryRow(w, "platforms", output.StatusSuccess, strings.Join(platforms.Sorted(), ", ")+" "+output.Dimmed(platElapsed.Round(time.Millisecond).String(), color), color)
	}
	if remote == nil {
		output.SummaryRow(w, "remote source", output.StatusSkipped, "not requested", color)
	} else {
		output.SummaryRow(w, "remote source", output.StatusSuccess, remote.Path+" "+output.Dimmed(rsElapsed.Round(time.Millisecond).String(), color), color)
	}
	sum.Separator()
	output.SummaryTotal(w, time.Since(start), output.StatusSuccess, color)
	sum.Close()

	if resolveOutput != "" {
		if err := writeWorkspace(resolveOutput, ws); err != nil {
			return err
		}
		logger.Info("wrote build state", "path", resolveOutput, "stages", len(ws.Stages()))
	}
	return nil
}

func writeWorkspace(path string, ws *workspace.Workspace) error {
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding build state: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
