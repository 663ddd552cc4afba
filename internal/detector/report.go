package detector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/example/seo-detector/internal/rules"
)

var placeholder = regexp.MustCompile(`%%|%(?:\d+\$)?[dis]`)

// Finding is the outcome of one condition of one rule.
type Finding struct {
	Rule      string
	Tag       string
	Condition rules.Condition
	Defects   int
}

// Invalid reports whether the condition could not be evaluated.
func (f Finding) Invalid() bool {
	return f.Defects == InvalidCount
}

// Message returns the report line for the finding, or "" when it found
// nothing.
func (f Finding) Message() string {
	switch {
	case f.Invalid():
		return `Invalid rule conditions for HTML tag "` + f.Tag + `"`
	case f.Defects > 0:
		return formatMessage(f.Condition.DefectMessage, f.Defects)
	}

	return ""
}

// formatMessage substitutes count into the first placeholder of msg.
// Messages without a placeholder are returned as they are.
func formatMessage(msg string, count int) string {
	substituted := false

	return placeholder.ReplaceAllStringFunc(msg, func(m string) string {
		if m == "%%" {
			return "%"
		}
		if substituted {
			return m
		}
		substituted = true

		return strconv.Itoa(count)
	})
}

// Report holds the findings of one scan in rule order, then condition order.
type Report struct {
	Findings []Finding
}

// Messages returns one line per condition that found defects or could not
// be evaluated.
func (r *Report) Messages() []string {
	if r == nil {
		return nil
	}

	var out []string
	for _, f := range r.Findings {
		if msg := f.Message(); msg != "" {
			out = append(out, msg)
		}
	}

	return out
}

// String renders the report.
func (r *Report) String() string {
	return strings.Join(r.Messages(), "\n")
}

// Clean reports whether the scan found nothing to report.
func (r *Report) Clean() bool {
	return len(r.Messages()) == 0
}

// Defects returns the total number of defects found.
func (r *Report) Defects() int {
	if r == nil {
		return 0
	}

	total := 0
	for _, f := range r.Findings {
		if f.Defects > 0 {
			total += f.Defects
		}
	}

	return total
}

// Invalid returns the number of conditions that could not be evaluated.
func (r *Report) Invalid() int {
	if r == nil {
		return 0
	}

	n := 0
	for _, f := range r.Findings {
		if f.Invalid() {
			n++
		}
	}

	return n
}

// Render returns the newline-joined report lines.
func Render(r *Report) string {
	return r.String()
}
