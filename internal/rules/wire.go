package rules

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// check is the configuration form of an assertion.
type check struct {
	Assertion   string `json:"assertion"   yaml:"assertion"`
	AssertValue any    `json:"assertValue" yaml:"assertValue"`
}

// wireCondition is the configuration form of a [Condition]: exactly one of
// the three targets is set.
type wireCondition struct {
	Itself        *check `json:"itself,omitempty"    yaml:"itself,omitempty"`
	Attribute     *check `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Children      *check `json:"children,omitempty"  yaml:"children,omitempty"`
	DefectMessage string `json:"defectMessage"       yaml:"defectMessage"`
}

func (w wireCondition) condition() (Condition, error) {
	var (
		c     Condition
		found int
	)

	for target, ch := range map[Target]*check{
		TargetItself:    w.Itself,
		TargetAttribute: w.Attribute,
		TargetChildren:  w.Children,
	} {
		if ch == nil {
			continue
		}
		found++
		c.Target = target
		c.Assertion = ch.Assertion
		c.AssertValue = ch.AssertValue
	}

	switch found {
	case 0:
		return Condition{}, errNoTarget
	case 1:
	default:
		return Condition{}, errManyTargets
	}

	c.DefectMessage = w.DefectMessage

	return c, c.Validate()
}

func (c Condition) wire() wireCondition {
	w := wireCondition{DefectMessage: c.DefectMessage}
	ch := &check{Assertion: c.Assertion, AssertValue: c.AssertValue}

	switch c.Target {
	case TargetItself:
		w.Itself = ch
	case TargetAttribute:
		w.Attribute = ch
	case TargetChildren:
		w.Children = ch
	}

	return w
}

func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.wire())
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var w wireCondition
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	decoded, err := w.condition()
	if err != nil {
		return err
	}
	*c = decoded

	return nil
}

func (c Condition) MarshalYAML() (any, error) {
	return c.wire(), nil
}

func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	var w wireCondition
	if err := node.Decode(&w); err != nil {
		return err
	}

	decoded, err := w.condition()
	if err != nil {
		return err
	}
	*c = decoded

	return nil
}
