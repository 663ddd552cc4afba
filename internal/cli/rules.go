package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/seo-detector/internal/assertion"
	"github.com/example/seo-detector/internal/config"
	"github.com/example/seo-detector/internal/log"
	"github.com/example/seo-detector/internal/rules"
)

func newRulesCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var asJSON, paths bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule set after applying overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			if paths {
				for _, p := range assertion.Paths() {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			}

			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}

			sets, err := cfg.LoadRuleOverrides()
			if err != nil {
				return err
			}

			set := rules.Build(log.WithContext(commandContext(cmd)), sets...)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(set)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(set); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the rules as JSON instead of YAML")
	cmd.Flags().BoolVar(&paths, "paths", false, "List the supported assertion paths and exit")

	return cmd
}
