package detector

import (
	"context"
	"log/slog"
	"time"
)

// Result is the outcome of scanning one input. Report is nil when Err is set.
type Result struct {
	Input    string
	Report   *Report
	Err      error
	Duration time.Duration
}

// Run scans each input in turn with d. An input that cannot be read yields a
// Result with Err set and the remaining inputs still run. Cancelling ctx stops
// the loop and returns the results gathered so far with the context error.
func Run(ctx context.Context, d *Detector, inputs []string) ([]Result, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(inputs))
	for _, input := range inputs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		start := time.Now()
		report, err := d.ScanInput(ctx, input)
		res := Result{Input: input, Report: report, Err: err, Duration: time.Since(start)}
		if err == nil {
			d.logger.Debug("input scanned",
				slog.String("input", input),
				slog.Int("defects", report.Defects()),
				slog.Duration("took", res.Duration),
			)
		}
		results = append(results, res)
	}

	return results, nil
}

// Failed reports whether any result carries an error.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}

	return false
}
