// Package source opens scan inputs: local files, standard input and
// http(s) URLs.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidInput is returned when a file input cannot be used.
var ErrInvalidInput = errors.New("invalid file path")

// Stdin is the input name that reads standard input.
const Stdin = "-"

const defaultMaxBodyBytes = 5 << 20

// Opener resolves input names to readers.
type Opener struct {
	client       *http.Client
	maxBodyBytes int64
	stdin        io.Reader
}

// NewOpener builds an opener with an optional custom HTTP client.
func NewOpener(client *http.Client) *Opener {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Opener{client: client, maxBodyBytes: defaultMaxBodyBytes, stdin: os.Stdin}
}

// WithStdin returns a copy of the opener that reads [Stdin] from r.
func (o *Opener) WithStdin(r io.Reader) *Opener {
	c := *o
	c.stdin = r

	return &c
}

// Open returns a reader for input. The caller closes it.
func (o *Opener) Open(ctx context.Context, input string) (io.ReadCloser, error) {
	trimmed := strings.TrimSpace(input)

	switch {
	case trimmed == Stdin:
		return io.NopCloser(o.stdin), nil
	case IsURL(trimmed):
		return o.fetch(ctx, trimmed)
	}

	return openFile(trimmed)
}

// Kind names the kind of input: "stdin", "url" or "file".
func Kind(input string) string {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == Stdin:
		return "stdin"
	case IsURL(trimmed):
		return "url"
	}

	return "file"
}

// IsURL reports whether input is an http or https URL.
func IsURL(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func openFile(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}

	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidInput, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w %q: is a directory", ErrInvalidInput, path)
	}

	f, err := os.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidInput, path, err)
	}

	return f, nil
}

func (o *Opener) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("fetch %s: unexpected status code %d", url, resp.StatusCode)
	}

	return limitedBody{Reader: io.LimitReader(resp.Body, o.maxBodyBytes), Closer: resp.Body}, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}
