// Package assertion evaluates dotted assertion paths, such as
// "length.to.be.below" or "to.containSubset", against values extracted from an
// HTML document.
//
// The vocabulary is closed: every accepted path maps to one [Kind] through
// [Resolve], and anything else is reported as [ErrInvalidAssertion]. Evaluating
// a predicate yields one of three outcomes, so callers can tell a rule that is
// broken ([Malformed]) apart from a document that breaks the rule
// ([NotSatisfied]).
package assertion
