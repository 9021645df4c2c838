package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sofmeright/prebuild/src/config"
	"github.com/sofmeright/prebuild/src/koji"
	"github.com/sofmeright/prebuild/src/platform"
	"github.com/sofmeright/prebuild/src/remotesource"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
	cfg     *config.ReactorConfig
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prebuild",
	Short: "Resolve container build inputs",
	Long:  "prebuild determines the platforms a container build runs on and fetches its remote sources before the build starts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.ErrOrStderr())
		slog.SetDefault(logger)

		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "reactor config file (default: reactor-config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
}

// Execute runs the root command. SIGINT and SIGTERM cancel in-flight
// service calls.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newPlatformResolver wires the platform resolver to the configured koji
// hub and clusters.
func newPlatformResolver(src *config.SourceConfig) *platform.Resolver {
	r := &platform.Resolver{
		Clusters: cfg,
		Limits:   platform.LimitsFromSource(src, logger),
		Log:      logger.With("stage", "platforms"),
	}
	if cfg.Koji != nil {
		r.Tags = koji.NewClient(cfg.Koji.HubURL)
	}
	return r
}

// newRemoteSourceResolver wires the remote-source resolver to the
// configured Cachito service. Koji, when configured, identifies the
// requesting user.
func newRemoteSourceResolver() *remotesource.Resolver {
	r := &remotesource.Resolver{
		Cachito: cfg.Cachito,
		Dial:    remotesource.DialCachito,
		Log:     logger.With("stage", "remote_source"),
	}
	if cfg.Koji != nil {
		r.Owners = koji.NewClient(cfg.Koji.HubURL)
	}
	return r
}

// buildObject reads the build object from the BUILD environment variable.
// An unset variable yields nil.
func buildObject() (*remotesource.BuildInfo, error) {
	raw := os.Getenv("BUILD")
	if raw == "" {
		return nil, nil
	}
	info, err := remotesource.ParseBuildInfo([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("reading BUILD: %w", err)
	}
	return info, nil
}
