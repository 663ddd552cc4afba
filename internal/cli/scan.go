package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/seo-detector/internal/config"
	"github.com/example/seo-detector/internal/detector"
	"github.com/example/seo-detector/internal/log"
	"github.com/example/seo-detector/internal/output"
)

var errInputsFailed = errors.New("some inputs could not be scanned")

func newScanCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "scan [inputs...]",
		Short: "Scan HTML documents for SEO defects",
		Long: `Scan each input against the built-in rules plus any configured overrides.

Inputs are file paths, http(s) URLs, or - for standard input. Reports are
delivered to every configured output; a clean document produces no report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			if len(args) > 0 {
				overrides.Inputs = append(append([]string{}, args...), overrides.Inputs...)
			}

			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := commandContext(cmd)
			logger := log.WithContext(ctx)

			d, err := newDetector(cfg, logger, cmd.InOrStdin())
			if err != nil {
				return err
			}

			sinks, err := output.DefaultRegistry.BuildSinks(cfg.Outputs, output.Options{
				Stdout: cmd.OutOrStdout(),
				Dir:    cfg.OutputDir,
				Logger: logger,
			})
			if err != nil {
				return err
			}

			results, err := detector.Run(ctx, d, cfg.Inputs)
			if err != nil {
				return err
			}

			if err := output.WriteAll(sinks, results); err != nil {
				return err
			}

			if cfg.Watch {
				return watchInputs(ctx, cfg.Inputs, d, sinks, logger)
			}

			if detector.Failed(results) {
				failed := 0
				for _, res := range results {
					if res.Err != nil {
						failed++
					}
				}
				logger.Debug("scan finished", slog.Int("inputs", len(results)), slog.Int("failed", failed))

				return fmt.Errorf("%w: %d of %d", errInputsFailed, failed, len(results))
			}

			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}
