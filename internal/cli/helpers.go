package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/seo-detector/internal/config"
	"github.com/example/seo-detector/internal/detector"
	"github.com/example/seo-detector/internal/source"
)

func ensureOutputDir(path string) error {
	if path == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	return os.MkdirAll(path, 0o755)
}

// newDetector builds a detector with every rule override cfg names.
func newDetector(cfg config.RuntimeConfig, logger *slog.Logger, stdin io.Reader) (*detector.Detector, error) {
	sets, err := cfg.LoadRuleOverrides()
	if err != nil {
		return nil, err
	}

	opts := []detector.Option{
		detector.WithLogger(logger),
		detector.WithOpener(source.NewOpener(nil).WithStdin(stdin)),
	}
	for _, set := range sets {
		opts = append(opts, detector.WithOverrides(set))
	}

	return detector.New(opts...)
}

func usesOutput(cfg config.RuntimeConfig, name string) bool {
	for _, o := range cfg.Outputs {
		if strings.EqualFold(o, name) {
			return true
		}
	}
	return false
}
