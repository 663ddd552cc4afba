package detector

import (
	"github.com/example/seo-detector/internal/assertion"
	"github.com/example/seo-detector/internal/document"
	"github.com/example/seo-detector/internal/rules"
)

// InvalidCount is the defect count of a condition whose assertion cannot be
// evaluated.
const InvalidCount = -1

// Scan runs one condition against every element named tag in doc and returns
// the number of defects found, or [InvalidCount].
//
// An itself condition asserts against the whole element collection and
// counts at most one defect. Attribute and children conditions assert against
// each element separately and count one defect per failing element.
func Scan(doc *document.Document, tag string, cond rules.Condition) int {
	pred, err := assertion.Resolve(cond.Assertion)
	if err != nil {
		return InvalidCount
	}

	elements := doc.Elements(tag)

	switch cond.Target {
	case rules.TargetItself:
		switch pred.Test(document.Collection(elements), cond.AssertValue) {
		case assertion.Malformed:
			return InvalidCount
		case assertion.NotSatisfied:
			return 1
		default:
			return 0
		}

	case rules.TargetAttribute, rules.TargetChildren:
		defects := 0
		for _, el := range elements {
			var subject any
			if cond.Target == rules.TargetAttribute {
				subject = el.AttributeMap()
			} else {
				subject = el.ChildList()
			}

			switch pred.Test(subject, cond.AssertValue) {
			case assertion.Malformed:
				return InvalidCount
			case assertion.NotSatisfied:
				defects++
			}
		}

		return defects
	}

	return 0
}
