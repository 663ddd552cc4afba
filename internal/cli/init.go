package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/seo-detector/internal/config"
)

const starterConfig = `# seo-detector configuration
inputs:
  - index.html
output: console
# outputDir: seo-results
logLevel: info
logFormat: text
# Rule overrides, keyed by rule name. Existing names replace the built-in
# rule's tag and/or conditions; new names add a rule.
rules:
  strong:
    conditions:
      - itself:
          assertion: length.to.be.below
          assertValue: 16
        defectMessage: This HTML has more than 15 <strong> tag
`

func newInitCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var writeConfig, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Validate the configuration and optionally write a starter config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if writeConfig {
				if err := writeStarterConfig(loader.ConfigPath, force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Starter configuration written to %s\n", loader.ConfigPath)
			}

			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}

			if err := cfg.ValidateSettings(); err != nil {
				return err
			}

			if _, err := cfg.LoadRuleOverrides(); err != nil {
				return err
			}

			if usesOutput(cfg, "file") {
				if err := ensureOutputDir(cfg.OutputDir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration looks good. Reports will be stored in %s\n", cfg.OutputDir)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration looks good. %d inputs configured.\n", len(cfg.Inputs))
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Write a starter configuration to the --config path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func writeStarterConfig(path string, force bool) error {
	if path == "" {
		return errors.New("config path cannot be empty")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, []byte(starterConfig), 0o644)
}
