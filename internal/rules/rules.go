package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfig marks rule configuration that cannot be used at all, such as
	// an override string that is not a JSON object.
	ErrConfig = errors.New("invalid rule configuration")

	errNoTarget       = errors.New("condition needs one of itself, attribute or children")
	errManyTargets    = errors.New("condition sets more than one of itself, attribute and children")
	errNoAssertion    = errors.New("condition has no assertion")
	errNoMessage      = errors.New("condition has no defectMessage")
	errNoTag          = errors.New("rule has no tag")
	errNoConditions   = errors.New("rule has no conditions")
	errNotObject      = errors.New("rule must be an object")
	errNotArray       = errors.New("conditions must be an array")
	errTagNotString   = errors.New("tag must be a string")
	errRuleSetMapping = errors.New("rules must be a mapping of name to rule")
)

// Target selects what a condition's assertion is applied to.
type Target int

const (
	TargetNone Target = iota
	// TargetItself asserts against the whole collection of matched elements.
	TargetItself
	// TargetAttribute asserts against each matched element's attributes.
	TargetAttribute
	// TargetChildren asserts against each matched element's child nodes.
	TargetChildren
)

func (t Target) String() string {
	switch t {
	case TargetItself:
		return "itself"
	case TargetAttribute:
		return "attribute"
	case TargetChildren:
		return "children"
	}

	return "none"
}

// Condition is one assertion run against the elements a rule selects.
type Condition struct {
	Target        Target
	Assertion     string
	AssertValue   any
	DefectMessage string
}

// Validate reports whether the condition can be scanned.
func (c Condition) Validate() error {
	if c.Target == TargetNone {
		return errNoTarget
	}
	if strings.TrimSpace(c.Assertion) == "" {
		return errNoAssertion
	}
	if c.DefectMessage == "" {
		return errNoMessage
	}

	return nil
}

func (c Condition) clone() Condition {
	c.AssertValue = cloneValue(c.AssertValue)

	return c
}

// Rule ties a tag name to an ordered list of conditions.
type Rule struct {
	Tag        string      `json:"tag"        yaml:"tag"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// Validate reports whether the rule can be scanned.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Tag) == "" {
		return errNoTag
	}
	if len(r.Conditions) == 0 {
		return errNoConditions
	}
	for i, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}

	return nil
}

func (r Rule) clone() Rule {
	out := Rule{Tag: r.Tag, Conditions: make([]Condition, len(r.Conditions))}
	for i, c := range r.Conditions {
		out.Conditions[i] = c.clone()
	}

	return out
}

// RuleSet is an ordered mapping of rule name to [Rule].
type RuleSet struct {
	rules *orderedmap.OrderedMap[string, Rule]
}

func newRuleSet() *RuleSet {
	return &RuleSet{rules: orderedmap.New[string, Rule]()}
}

// Get returns a copy of the named rule.
func (s *RuleSet) Get(name string) (Rule, bool) {
	r, ok := s.rules.Get(name)
	if !ok {
		return Rule{}, false
	}

	return r.clone(), true
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	return s.rules.Len()
}

// Names returns the rule names in order.
func (s *RuleSet) Names() []string {
	out := make([]string, 0, s.rules.Len())
	for p := s.rules.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}

	return out
}

// All iterates over the rules in order. The yielded rules share memory with
// the set and must not be modified.
func (s *RuleSet) All() iter.Seq2[string, Rule] {
	return func(yield func(string, Rule) bool) {
		for p := s.rules.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the set.
func (s *RuleSet) Clone() *RuleSet {
	out := newRuleSet()
	for p := s.rules.Oldest(); p != nil; p = p.Next() {
		out.rules.Set(p.Key, p.Value.clone())
	}

	return out
}

// MarshalJSON encodes the set in its configuration form, keeping rule order.
func (s *RuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.rules)
}

// MarshalYAML encodes the set in its configuration form, keeping rule order.
func (s *RuleSet) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for p := s.rules.Oldest(); p != nil; p = p.Next() {
		value := &yaml.Node{}
		if err := value.Encode(p.Value); err != nil {
			return nil, fmt.Errorf("encode rule %q: %w", p.Key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Key},
			value,
		)
	}

	return node, nil
}

// UnmarshalYAML decodes a complete rule set. Every rule must be valid.
func (s *RuleSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errRuleSetMapping
	}
	if s.rules == nil {
		s.rules = orderedmap.New[string, Rule]()
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var r Rule
		if err := node.Content[i+1].Decode(&r); err != nil {
			return fmt.Errorf("rule %q: %w", name, err)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %q: %w", name, err)
		}
		s.rules.Set(name, r)
	}

	return nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}

		return out
	}

	return v
}
