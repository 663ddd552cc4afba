// Package output delivers scan reports to their destinations.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/example/seo-detector/internal/detector"
)

// Sink receives the result of each scanned input.
type Sink interface {
	Name() string
	Write(res detector.Result) error
}

// Options carries what sink constructors may need.
type Options struct {
	// Stdout receives console and stream output. Defaults to os.Stdout.
	Stdout io.Writer
	// Dir is the directory of the file sink.
	Dir    string
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	return o
}

// Factory builds a sink.
type Factory func(opts Options) (Sink, error)

// Registry maps sink names to constructors.
type Registry map[string]Factory

// DefaultRegistry contains the built-in sinks.
var DefaultRegistry = Registry{
	"console": func(opts Options) (Sink, error) { return NewConsole(opts.Stdout), nil },
	"stream":  func(opts Options) (Sink, error) { return NewStream(opts.Stdout), nil },
	"file":    func(opts Options) (Sink, error) { return NewFile(opts.Dir, opts.Logger) },
	"string":  func(opts Options) (Sink, error) { return NewString(), nil },
}

// Names returns the registered sink names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Has reports whether name is registered.
func (r Registry) Has(name string) bool {
	_, ok := r[strings.ToLower(strings.TrimSpace(name))]

	return ok
}

// BuildSinks instantiates sinks from the provided names, skipping duplicates.
func (r Registry) BuildSinks(names []string, opts Options) ([]Sink, error) {
	if len(names) == 0 {
		return nil, nil
	}

	opts = opts.withDefaults()

	var sinks []Sink
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		factory, ok := r[key]
		if !ok {
			return nil, fmt.Errorf("unknown output: %s (known: %s)", name, strings.Join(r.Names(), ", "))
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		sink, err := factory(opts)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", key, err)
		}
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

// WriteAll hands each result to every sink. All sinks see every result; the
// first error is returned.
func WriteAll(sinks []Sink, results []detector.Result) error {
	var first error
	for _, res := range results {
		for _, s := range sinks {
			if err := s.Write(res); err != nil && first == nil {
				first = fmt.Errorf("%s output: %w", s.Name(), err)
			}
		}
	}

	return first
}
