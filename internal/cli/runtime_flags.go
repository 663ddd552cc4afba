package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/seo-detector/internal/config"
)

// runtimeFlagSet tracks shared scan/init flags before they are converted into config overrides.
type runtimeFlagSet struct {
	inputs     string
	inputsFile string
	output     string
	outputDir  string
	rulesFile  string
	rules      string
	watch      bool
}

func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().StringVar(&flags.inputs, "inputs", "", "Comma-separated list of files, URLs or - for stdin (overrides config)")
	cmd.Flags().StringVar(&flags.inputsFile, "inputs-file", "", "Path to a file with one input per line")
	cmd.Flags().StringVar(&flags.output, "output", "", "Comma-separated outputs: console, stream, file, string")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for the file output")
	cmd.Flags().StringVar(&flags.rulesFile, "rules-file", "", "YAML or JSON file with rule overrides")
	cmd.Flags().StringVar(&flags.rules, "rules", "", "Rule overrides as a JSON object")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Rescan file inputs whenever they change")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("inputs") {
		ov.Inputs = config.ParseInputsList(f.inputs)
	}

	if cmd.Flags().Changed("inputs-file") {
		ov.InputsFile = f.inputsFile
	}

	if cmd.Flags().Changed("output") {
		ov.Outputs = config.ParseOutputs(f.output)
	}

	if cmd.Flags().Changed("output-dir") {
		ov.OutputDir = f.outputDir
	}

	if cmd.Flags().Changed("rules-file") {
		ov.RulesFile = f.rulesFile
	}

	if cmd.Flags().Changed("rules") {
		ov.Rules = f.rules
	}

	if cmd.Flags().Changed("watch") {
		ov.Watch = &f.watch
	}

	return logOverrides(cmd, ov)
}

// logOverrides copies the persistent log flags into ov when they were set.
func logOverrides(cmd *cobra.Command, ov config.Overrides) config.Overrides {
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		ov.LogLevel = flag.Value.String()
	}

	if flag := cmd.Flags().Lookup("log-format"); flag != nil && flag.Changed {
		ov.LogFormat = flag.Value.String()
	}

	return ov
}
