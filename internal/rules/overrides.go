package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Override is a partial rule supplied by the user. A nil Tag or nil
// Conditions means the field was not supplied.
type Override struct {
	Tag        *string
	Conditions []Condition

	// Decoding problems, reported when the override is applied.
	err     error
	tagErr  error
	condErr error
}

// Problem returns the decoding problem that makes the whole override
// unusable, if any.
func (o Override) Problem() error {
	return o.err
}

func (o Override) tag() (string, bool) {
	if o.Tag == nil || strings.TrimSpace(*o.Tag) == "" {
		return "", false
	}

	return *o.Tag, true
}

// conditions returns the supplied conditions, nil when none were supplied,
// or an error when they were supplied but cannot be used.
func (o Override) conditions() ([]Condition, error) {
	if o.condErr != nil {
		return nil, o.condErr
	}
	if o.Conditions == nil {
		return nil, nil
	}
	if len(o.Conditions) == 0 {
		return nil, errNoConditions
	}
	for i, c := range o.Conditions {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
	}

	return o.Conditions, nil
}

func (o *Override) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*o = Override{err: errNotObject}

		return nil
	}

	if tag, ok := raw["tag"]; ok {
		var s string
		if err := json.Unmarshal(tag, &s); err != nil {
			o.tagErr = errTagNotString
		} else {
			o.Tag = &s
		}
	}

	if conds, ok := raw["conditions"]; ok && !bytes.Equal(bytes.TrimSpace(conds), []byte("null")) {
		if err := json.Unmarshal(conds, &o.Conditions); err != nil {
			o.Conditions = nil
			o.condErr = fmt.Errorf("%w: %w", errNotArray, err)
		}
	}

	return nil
}

func (o *Override) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		*o = Override{err: errNotObject}

		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		value := node.Content[i+1]

		switch node.Content[i].Value {
		case "tag":
			var s string
			if value.Kind != yaml.ScalarNode || value.Decode(&s) != nil {
				o.tagErr = errTagNotString

				continue
			}
			o.Tag = &s

		case "conditions":
			if value.ShortTag() == "!!null" {
				continue
			}
			if value.Kind != yaml.SequenceNode {
				o.condErr = errNotArray

				continue
			}
			if err := value.Decode(&o.Conditions); err != nil {
				o.Conditions = nil
				o.condErr = err
			}
		}
	}

	return nil
}

// Overrides is an ordered mapping of rule name to [Override].
type Overrides struct {
	entries *orderedmap.OrderedMap[string, Override]
}

// NewOverrides returns an empty set of overrides.
func NewOverrides() *Overrides {
	return &Overrides{entries: orderedmap.New[string, Override]()}
}

func (o *Overrides) init() {
	if o.entries == nil {
		o.entries = orderedmap.New[string, Override]()
	}
}

// Set adds or replaces the override for name.
func (o *Overrides) Set(name string, ov Override) *Overrides {
	o.init()
	o.entries.Set(name, ov)

	return o
}

// Len returns the number of overridden rule names.
func (o *Overrides) Len() int {
	if o == nil || o.entries == nil {
		return 0
	}

	return o.entries.Len()
}

// All iterates over the overrides in the order they were supplied.
func (o *Overrides) All() iter.Seq2[string, Override] {
	return func(yield func(string, Override) bool) {
		if o == nil || o.entries == nil {
			return
		}
		for p := o.entries.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

func (o *Overrides) UnmarshalJSON(data []byte) error {
	o.init()

	return o.entries.UnmarshalJSON(data)
}

func (o *Overrides) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errRuleSetMapping
	}
	o.init()

	for i := 0; i+1 < len(node.Content); i += 2 {
		var ov Override
		if err := ov.UnmarshalYAML(node.Content[i+1]); err != nil {
			return err
		}
		o.entries.Set(node.Content[i].Value, ov)
	}

	return nil
}

// ParseOverrides decodes overrides from their serialized form: a JSON object
// keyed by rule name. Comments and trailing commas are accepted. An empty
// string yields no overrides.
func ParseOverrides(data string) (*Overrides, error) {
	stripped := bytes.TrimSpace(jsonc.ToJSON([]byte(data)))
	if len(stripped) == 0 {
		return NewOverrides(), nil
	}
	if !json.Valid(stripped) {
		return nil, fmt.Errorf("%w: overrides are not valid JSON", ErrConfig)
	}
	if stripped[0] != '{' {
		return nil, fmt.Errorf("%w: overrides must be a JSON object", ErrConfig)
	}

	o := NewOverrides()
	if err := json.Unmarshal(stripped, o); err != nil {
		return nil, fmt.Errorf("%w: parse overrides: %w", ErrConfig, err)
	}

	return o, nil
}

// ParseOverridesYAML decodes overrides from a YAML mapping keyed by rule name.
func ParseOverridesYAML(data []byte) (*Overrides, error) {
	o := NewOverrides()
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("%w: parse overrides: %w", ErrConfig, err)
	}

	return o, nil
}

// LoadOverridesFile reads overrides from path. Files ending in .yml or .yaml
// are decoded as YAML, anything else as JSON with comments.
func LoadOverridesFile(path string) (*Overrides, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: read rules file: %w", ErrConfig, err)
	}

	var o *Overrides
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		o, err = ParseOverridesYAML(data)
	default:
		o, err = ParseOverrides(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return o, nil
}
