package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/example/seo-detector/internal/detector"
	"github.com/example/seo-detector/internal/output"
	"github.com/example/seo-detector/internal/source"
)

var errNothingToWatch = errors.New("watch needs at least one file input")

// watchInputs rescans file inputs whenever they are written, until ctx is
// done. Directories are watched rather than files so that editors replacing
// a file on save are noticed.
func watchInputs(ctx context.Context, inputs []string, d *detector.Detector, sinks []output.Sink, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Error("close watcher", slog.Any("err", err))
		}
	}()

	files := map[string]string{}
	dirs := map[string]struct{}{}
	for _, input := range inputs {
		if source.Kind(input) != "file" {
			continue
		}

		abs, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", input, err)
		}
		files[abs] = input

		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("add path to watcher: %w", err)
		}
		dirs[dir] = struct{}{}
	}

	if len(files) == 0 {
		return errNothingToWatch
	}

	logger.Info("watching inputs", slog.Int("files", len(files)), slog.Int("dirs", len(dirs)))

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			input, watched := files[filepath.Clean(evt.Name)]
			if !watched || !(evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create)) {
				continue
			}

			logger.Debug("input changed", slog.String("input", input), slog.String("op", evt.Op.String()))

			results, err := detector.Run(ctx, d, []string{input})
			if err != nil {
				return nil
			}
			if err := output.WriteAll(sinks, results); err != nil {
				logger.Error("write results", slog.Any("err", err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch inputs", slog.Any("err", err))
		}
	}
}
