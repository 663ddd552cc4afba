package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/seo-detector/internal/detector"
	"github.com/example/seo-detector/internal/output"
)

func TestWatchInputsRescansOnWrite(t *testing.T) {
	dir := t.TempDir()
	page := writeTestFile(t, dir, "page.html", "<h1>a</h1>")

	d, err := detector.New(detector.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}

	sink := output.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watchInputs(ctx, []string{page, "https://example.test"}, d, []output.Sink{sink}, slog.New(slog.DiscardHandler))
	}()

	deadline := time.Now().Add(5 * time.Second)
	for len(sink.Reports()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no rescan after writing %s", page)
		}
		// Rewrite until the watcher has been registered and picks it up.
		if err := os.WriteFile(page, []byte("<h1>a</h1><h1>b</h1>"), 0o600); err != nil {
			t.Fatalf("rewrite page: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if got := sink.String(); got != "This HTML has more than one <h1> tag" {
		t.Fatalf("unexpected report %q", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop after cancel")
	}
}

func TestWatchInputsNeedsFiles(t *testing.T) {
	d, err := detector.New(detector.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}

	err = watchInputs(context.Background(), []string{"-", "https://example.test"}, d, nil, slog.New(slog.DiscardHandler))
	if !errors.Is(err, errNothingToWatch) {
		t.Fatalf("expected errNothingToWatch, got %v", err)
	}
}

func TestWatchInputsMissingDirectory(t *testing.T) {
	d, err := detector.New(detector.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}

	missing := filepath.Join(t.TempDir(), "nope", "page.html")
	if err := watchInputs(context.Background(), []string{missing}, d, nil, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatalf("expected error watching a missing directory")
	}
}
