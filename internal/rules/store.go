package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/example/seo-detector/internal/assertion"
)

//go:embed defaults.yml
var defaultsYAML []byte

// template holds the built-in rules. It is never handed out directly.
var template = mustLoadTemplate()

func mustLoadTemplate() *RuleSet {
	s := newRuleSet()
	if err := yaml.Unmarshal(defaultsYAML, s); err != nil {
		panic(fmt.Errorf("built-in rules: %w", err))
	}

	return s
}

// Defaults returns a fresh copy of the built-in rules.
func Defaults() *RuleSet {
	return template.Clone()
}

// Build returns the built-in rules with every set of overrides applied in
// order. Overrides that cannot be applied are logged and skipped.
func Build(logger *slog.Logger, overrides ...*Overrides) *RuleSet {
	if logger == nil {
		logger = slog.Default()
	}

	set := Defaults()
	for _, o := range overrides {
		for name, ov := range o.All() {
			set.apply(logger, name, ov)
		}
	}

	return set
}

func (s *RuleSet) apply(logger *slog.Logger, name string, ov Override) {
	if ov.err != nil {
		logger.Warn("invalid custom rule", slog.String("rule", name), slog.Any("reason", ov.err))

		return
	}

	tag, hasTag := ov.tag()
	conds, condErr := ov.conditions()
	hasConds := condErr == nil && conds != nil

	current, exists := s.rules.Get(name)
	if (exists && !hasTag && !hasConds) || (!exists && (!hasTag || !hasConds)) {
		logger.Warn("invalid custom rule",
			slog.String("rule", name),
			slog.Bool("exists", exists),
			slog.Any("reason", missingReason(ov, hasTag, hasConds, condErr)),
		)

		return
	}

	if ov.tagErr != nil {
		logger.Warn("ignoring custom rule tag", slog.String("rule", name), slog.Any("reason", ov.tagErr))
	}
	if condErr != nil {
		logger.Warn("ignoring custom rule conditions", slog.String("rule", name), slog.Any("reason", condErr))
	}

	if hasTag {
		current.Tag = tag
	}
	if hasConds {
		current.Conditions = make([]Condition, len(conds))
		for i, c := range conds {
			current.Conditions[i] = c.clone()
			if _, err := assertion.Resolve(c.Assertion); err != nil {
				logger.Warn("unknown assertion",
					slog.String("rule", name),
					slog.String("assertion", c.Assertion),
				)
			}
		}
	}

	s.rules.Set(name, current)
}

func missingReason(ov Override, hasTag, hasConds bool, condErr error) error {
	var errs []error
	if !hasTag {
		if ov.tagErr != nil {
			errs = append(errs, ov.tagErr)
		} else {
			errs = append(errs, errNoTag)
		}
	}
	if !hasConds {
		if condErr != nil {
			errs = append(errs, condErr)
		} else {
			errs = append(errs, errNoConditions)
		}
	}

	return errors.Join(errs...)
}
