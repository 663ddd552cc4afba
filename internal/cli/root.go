package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/seo-detector/internal/config"
	"github.com/example/seo-detector/internal/log"
)

// version is set at build time.
var version = "dev"

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	loader := &config.Loader{ConfigPath: config.DefaultConfigPath}
	rootOpts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "seo-detector",
		Short:         "Report SEO defects in HTML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.SetVersionTemplate("seo-detector version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootOpts.ConfigPath, "config", config.DefaultConfigPath, "Path to seo-detector.config.yml (optional)")
	pf.String("log-level", "", fmt.Sprintf("Log level (%s)", strings.Join(log.AllLevels, ", ")))
	pf.String("log-format", "", fmt.Sprintf("Log format (%s)", strings.Join(log.AllFormats, ", ")))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if rootOpts.ConfigPath != "" {
			loader.ConfigPath = rootOpts.ConfigPath
		}

		return setupLogging(cmd, loader)
	}

	rootCmd.AddCommand(
		newInitCmd(loader),
		newScanCmd(loader),
		newRulesCmd(loader),
		newDoctorCmd(loader),
	)

	return rootCmd
}

type rootOptions struct {
	ConfigPath string
}

// setupLogging installs the configured logger as the default and in the
// command context. Logs go to stderr so reports on stdout stay clean.
func setupLogging(cmd *cobra.Command, loader *config.Loader) error {
	cfg, err := loader.Load(logOverrides(cmd, config.Overrides{}))
	if err != nil {
		return err
	}

	handler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	cmd.SetContext(log.NewContext(commandContext(cmd), logger))

	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
