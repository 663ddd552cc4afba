// Package detector scans HTML documents against a rule set and reports
// SEO defects.
package detector

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/seo-detector/internal/document"
	"github.com/example/seo-detector/internal/log"
	"github.com/example/seo-detector/internal/rules"
	"github.com/example/seo-detector/internal/source"
)

// Detector holds one rule set and the report of its latest scan. It is not
// safe for concurrent use; independent detectors may run concurrently.
type Detector struct {
	rules  *rules.RuleSet
	logger *slog.Logger
	opener *source.Opener
	last   *Report
}

type options struct {
	logger    *slog.Logger
	opener    *source.Opener
	overrides []func() (*rules.Overrides, error)
}

// Option configures a [Detector].
type Option func(*options)

// WithLogger sets the logger for rule warnings and ingestion errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOverrides applies o on top of the built-in rules.
func WithOverrides(o *rules.Overrides) Option {
	return func(opts *options) {
		opts.overrides = append(opts.overrides, func() (*rules.Overrides, error) {
			return o, nil
		})
	}
}

// WithOverridesString parses data with [rules.ParseOverrides] and applies
// the result on top of the built-in rules.
func WithOverridesString(data string) Option {
	return func(opts *options) {
		opts.overrides = append(opts.overrides, func() (*rules.Overrides, error) {
			return rules.ParseOverrides(data)
		})
	}
}

// WithOpener sets how [Detector.ScanInput] opens inputs.
func WithOpener(opener *source.Opener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// New builds a detector. Overrides are applied in the order their options
// were given. A malformed overrides string fails with [rules.ErrConfig].
func New(opts ...Option) (*Detector, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.opener == nil {
		o.opener = source.NewOpener(nil)
	}

	sets := make([]*rules.Overrides, 0, len(o.overrides))
	for _, load := range o.overrides {
		set, err := load()
		if err != nil {
			return nil, fmt.Errorf("build rules: %w", err)
		}
		sets = append(sets, set)
	}

	return &Detector{
		rules:  rules.Build(o.logger, sets...),
		logger: o.logger,
		opener: o.opener,
	}, nil
}

// Rules returns a copy of the detector's rule set.
func (d *Detector) Rules() *rules.RuleSet {
	return d.rules.Clone()
}

// Scan runs every condition of every rule against doc. The report replaces
// the one kept from any earlier scan.
func (d *Detector) Scan(doc *document.Document) *Report {
	report := &Report{}

	for name, rule := range d.rules.All() {
		for _, cond := range rule.Conditions {
			count := Scan(doc, rule.Tag, cond)
			if count == InvalidCount {
				d.logger.Warn("invalid rule conditions",
					slog.String("rule", name),
					slog.String("tag", rule.Tag),
					slog.String("assertion", cond.Assertion),
				)
			}

			report.Findings = append(report.Findings, Finding{
				Rule:      name,
				Tag:       rule.Tag,
				Condition: cond,
				Defects:   count,
			})
		}
	}

	d.last = report

	return report
}

// ScanString normalizes and scans a complete HTML document.
func (d *Detector) ScanString(html string) (*Report, error) {
	doc, err := document.ParseString(document.Normalize(html))
	if err != nil {
		return nil, err
	}

	return d.Scan(doc), nil
}

// ScanReader reads r to the end, then scans the document. Nothing is
// scanned when reading fails.
func (d *Detector) ScanReader(ctx context.Context, r io.Reader) (*Report, error) {
	doc, err := document.Load(log.NewContext(ctx, d.logger), r)
	if err != nil {
		return nil, err
	}

	return d.Scan(doc), nil
}

// ScanInput opens input (a file path, "-" or an http(s) URL) and scans it.
func (d *Detector) ScanInput(ctx context.Context, input string) (*Report, error) {
	rc, err := d.opener.Open(ctx, input)
	if err != nil {
		d.logger.Error("cannot open input", slog.String("input", input), slog.Any("err", err))

		return nil, err
	}
	defer rc.Close()

	report, err := d.ScanReader(ctx, rc)
	if err != nil {
		d.logger.Error("cannot read input", slog.String("input", input), slog.Any("err", err))

		return nil, fmt.Errorf("%s: %w", input, err)
	}

	return report, nil
}

// Result returns the rendered report of the latest scan. The boolean is
// false when nothing has been scanned yet.
func (d *Detector) Result() (string, bool) {
	if d.last == nil {
		return "", false
	}

	return d.last.String(), true
}
