package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/seo-detector/internal/assertion"
	"github.com/example/seo-detector/internal/config"
	"github.com/example/seo-detector/internal/log"
	"github.com/example/seo-detector/internal/rules"
	"github.com/example/seo-detector/internal/source"
)

type doctorCheck struct {
	Name   string
	Status string // "✓", "✗" or "⊘"
	Detail string
	Error  error
}

func newDoctorCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var timeout int

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, rules and input reachability",
		Long: `The doctor subcommand checks the seo-detector environment:
- Go runtime version
- Configuration validity
- Rule overrides and assertion paths
- Reachability of the configured inputs
- Output directory, when the file output is used`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(commandContext(cmd), time.Duration(timeout)*time.Second)
			defer cancel()

			checks := runDoctorChecks(ctx, &cfg)
			printDoctorReport(cmd, checks)

			for _, check := range checks {
				if check.Error != nil {
					return fmt.Errorf("doctor checks failed")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n✓ All checks passed. Ready to scan.")
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().IntVar(&timeout, "timeout", 30, "Timeout in seconds for network checks")

	return cmd
}

func runDoctorChecks(ctx context.Context, cfg *config.RuntimeConfig) []doctorCheck {
	checks := []doctorCheck{checkGoVersion(), checkConfiguration(cfg)}
	checks = append(checks, checkRules(ctx, cfg))

	if len(cfg.Inputs) > 0 {
		checks = append(checks, checkInputs(ctx, cfg.Inputs)...)
	}

	if usesOutput(*cfg, "file") {
		checks = append(checks, checkOutputDirectory(cfg.OutputDir))
	}

	return checks
}

func checkGoVersion() doctorCheck {
	return doctorCheck{
		Name:   "Go Runtime",
		Status: "✓",
		Detail: fmt.Sprintf("Version %s", runtime.Version()),
	}
}

func checkConfiguration(cfg *config.RuntimeConfig) doctorCheck {
	if err := cfg.ValidateSettings(); err != nil {
		return doctorCheck{
			Name:   "Configuration",
			Status: "✗",
			Detail: "Invalid configuration",
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Configuration",
		Status: "✓",
		Detail: fmt.Sprintf("%d inputs, outputs=%v", len(cfg.Inputs), cfg.Outputs),
	}
}

func checkRules(ctx context.Context, cfg *config.RuntimeConfig) doctorCheck {
	sets, err := cfg.LoadRuleOverrides()
	if err != nil {
		return doctorCheck{
			Name:   "Rules",
			Status: "✗",
			Detail: "Overrides cannot be parsed",
			Error:  err,
		}
	}

	set := rules.Build(log.WithContext(ctx), sets...)

	unknown := 0
	for _, rule := range set.All() {
		for _, cond := range rule.Conditions {
			if _, err := assertion.Resolve(cond.Assertion); err != nil {
				unknown++
			}
		}
	}

	if unknown > 0 {
		return doctorCheck{
			Name:   "Rules",
			Status: "✗",
			Detail: fmt.Sprintf("%d rules, %d unknown assertion paths", set.Len(), unknown),
			Error:  fmt.Errorf("%w: %d conditions will report invalid rule conditions", assertion.ErrInvalidAssertion, unknown),
		}
	}

	return doctorCheck{
		Name:   "Rules",
		Status: "✓",
		Detail: fmt.Sprintf("%d rules", set.Len()),
	}
}

func checkInputs(ctx context.Context, inputs []string) []doctorCheck {
	checks := []doctorCheck{}

	// Limit to the first inputs for performance
	maxChecks := 3
	originalCount := len(inputs)
	if len(inputs) > maxChecks {
		inputs = inputs[:maxChecks]
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for _, input := range inputs {
		check := doctorCheck{Name: fmt.Sprintf("Input: %s", input)}

		switch source.Kind(input) {
		case "stdin":
			check.Status = "⊘"
			check.Detail = "Standard input"

		case "url":
			req, err := http.NewRequestWithContext(ctx, http.MethodHead, input, nil)
			if err != nil {
				check.Status = "✗"
				check.Detail = "Invalid URL"
				check.Error = err
				break
			}

			resp, err := client.Do(req)
			if err != nil {
				check.Status = "✗"
				check.Detail = "Unreachable"
				check.Error = err
				break
			}
			resp.Body.Close()

			check.Status = "✓"
			check.Detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
			if resp.StatusCode >= 400 {
				check.Status = "✗"
				check.Error = fmt.Errorf("unexpected status code %d", resp.StatusCode)
			}

		default:
			info, err := os.Stat(input)
			switch {
			case err != nil:
				check.Status = "✗"
				check.Detail = "Not readable"
				check.Error = fmt.Errorf("%w: %w", source.ErrInvalidInput, err)
			case info.IsDir():
				check.Status = "✗"
				check.Detail = "Is a directory"
				check.Error = source.ErrInvalidInput
			default:
				check.Status = "✓"
				check.Detail = humanize.Bytes(uint64(info.Size()))
			}
		}

		checks = append(checks, check)
	}

	if originalCount > maxChecks {
		checks = append(checks, doctorCheck{
			Name:   fmt.Sprintf("Input: ... (%d more)", originalCount-maxChecks),
			Status: "⊘",
			Detail: "Skipped for brevity",
		})
	}

	return checks
}

func checkOutputDirectory(outputDir string) doctorCheck {
	if err := ensureOutputDir(outputDir); err != nil {
		return doctorCheck{
			Name:   "Output Directory",
			Status: "✗",
			Detail: outputDir,
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Output Directory",
		Status: "✓",
		Detail: outputDir,
	}
}

func printDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	fmt.Fprintln(cmd.OutOrStdout(), "Running environment diagnostics...")

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-30s %s\n", check.Status, check.Name+":", check.Detail)
		if check.Error != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "   Error: %v\n", check.Error)
		}
	}
}
