package assertion

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidAssertion is returned when an assertion path does not name a
// known predicate, or the predicate cannot be applied to its operands.
var ErrInvalidAssertion = errors.New("invalid assertion")

// Outcome is the tri-state result of evaluating a predicate.
type Outcome int

const (
	// Malformed means the assertion itself could not be evaluated.
	Malformed Outcome = iota
	// NotSatisfied means the subject violates the predicate.
	NotSatisfied
	// Satisfied means the subject passes the predicate.
	Satisfied
)

func (o Outcome) String() string {
	switch o {
	case NotSatisfied:
		return "not-satisfied"
	case Satisfied:
		return "satisfied"
	default:
		return "malformed"
	}
}

// Kind enumerates the supported predicates.
type Kind int

const (
	HasProperty Kind = iota + 1
	LengthBelow
	LengthAbove
	LengthAtMost
	LengthAtLeast
	LengthEquals
	ContainsSubset
	Equals
)

func (k Kind) String() string {
	switch k {
	case HasProperty:
		return "HasProperty"
	case LengthBelow:
		return "LengthBelow"
	case LengthAbove:
		return "LengthAbove"
	case LengthAtMost:
		return "LengthAtMost"
	case LengthAtLeast:
		return "LengthAtLeast"
	case LengthEquals:
		return "LengthEquals"
	case ContainsSubset:
		return "ContainsSubset"
	case Equals:
		return "Equals"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Predicate is a resolved assertion path.
type Predicate struct {
	Kind   Kind
	Negate bool
}

// vocabulary maps every accepted assertion path to its predicate. Paths not
// listed here are rejected by [Resolve].
var vocabulary = map[string]Predicate{
	"to.have.property":     {Kind: HasProperty},
	"have.property":        {Kind: HasProperty},
	"to.not.have.property": {Kind: HasProperty, Negate: true},
	"not.to.have.property": {Kind: HasProperty, Negate: true},

	"length.to.be.below":    {Kind: LengthBelow},
	"length.to.be.lessThan": {Kind: LengthBelow},
	"length.below":          {Kind: LengthBelow},
	"to.have.length.below":  {Kind: LengthBelow},

	"length.to.be.above":       {Kind: LengthAbove},
	"length.to.be.greaterThan": {Kind: LengthAbove},
	"length.above":             {Kind: LengthAbove},
	"to.have.length.above":     {Kind: LengthAbove},

	"length.to.be.at.most":    {Kind: LengthAtMost},
	"to.have.length.at.most":  {Kind: LengthAtMost},
	"length.to.be.at.least":   {Kind: LengthAtLeast},
	"to.have.length.at.least": {Kind: LengthAtLeast},

	"to.have.length":       {Kind: LengthEquals},
	"to.have.lengthOf":     {Kind: LengthEquals},
	"length.to.equal":      {Kind: LengthEquals},
	"to.not.have.length":   {Kind: LengthEquals, Negate: true},
	"to.not.have.lengthOf": {Kind: LengthEquals, Negate: true},

	"to.containSubset":     {Kind: ContainsSubset},
	"containSubset":        {Kind: ContainsSubset},
	"to.not.containSubset": {Kind: ContainsSubset, Negate: true},
	"not.to.containSubset": {Kind: ContainsSubset, Negate: true},

	"to.equal":          {Kind: Equals},
	"to.eql":            {Kind: Equals},
	"to.deep.equal":     {Kind: Equals},
	"to.not.equal":      {Kind: Equals, Negate: true},
	"to.not.eql":        {Kind: Equals, Negate: true},
	"to.not.deep.equal": {Kind: Equals, Negate: true},
}

// Resolve maps a dotted assertion path to its predicate.
func Resolve(path string) (Predicate, error) {
	p, ok := vocabulary[strings.TrimSpace(path)]
	if !ok {
		return Predicate{}, fmt.Errorf("%w: unknown path %q", ErrInvalidAssertion, path)
	}

	return p, nil
}

// Paths returns every supported assertion path, sorted.
func Paths() []string {
	out := make([]string, 0, len(vocabulary))
	for path := range vocabulary {
		out = append(out, path)
	}
	slices.Sort(out)

	return out
}

// Evaluate resolves path and tests subject against expected. A non-nil error
// wrapping [ErrInvalidAssertion] is returned together with [Malformed].
func Evaluate(subject any, path string, expected any) (Outcome, error) {
	p, err := Resolve(path)
	if err != nil {
		return Malformed, err
	}

	out := p.Test(subject, expected)
	if out == Malformed {
		return out, fmt.Errorf("%w: %q cannot compare %T with %T", ErrInvalidAssertion, path, subject, expected)
	}

	return out, nil
}

// Test applies the predicate. Negation flips Satisfied and NotSatisfied but
// never turns a Malformed outcome into a pass.
func (p Predicate) Test(subject, expected any) Outcome {
	subject = normalize(subject)
	expected = normalize(expected)

	var ok, valid bool
	switch p.Kind {
	case HasProperty:
		ok, valid = hasProperty(subject, expected)
	case LengthBelow, LengthAbove, LengthAtMost, LengthAtLeast, LengthEquals:
		ok, valid = compareLength(p.Kind, subject, expected)
	case ContainsSubset:
		ok, valid = subset(expected, subject), true
	case Equals:
		ok, valid = equal(subject, expected), true
	}

	if !valid {
		return Malformed
	}
	if ok != p.Negate {
		return Satisfied
	}

	return NotSatisfied
}
