package queryir

import (
	"fmt"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// ValidationResult contains portability analysis of a constraint tree.
//
// The portable fragment is the subset of the tree every backend renders with
// the same meaning. Trees outside this fragment still render, but results may
// differ between SQL, MongoDB and Elasticsearch.
type ValidationResult struct {
	// IsPortable indicates if the tree uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable features used in the tree.
	// Empty when IsPortable is true.
	Warnings []string
}

// Validate checks if a tree conforms to the portable fragment rules.
//
// Portable fragment rules:
//  1. No NULL literals - use Filled/NotFilled instead
//  2. No ordering comparisons on booleans
//  3. Scalar values only - no arrays or objects
//  4. Single-segment mappings - joins exist only in the SQL backend
//  5. Combinators are never empty
//
// Validate is a pure function with no side effects. A nil tree (no
// constraint) is portable.
func Validate(n Node) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	if n != nil {
		v.validateNode(n)
	}

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateNode(n Node) {
	switch node := n.(type) {
	case nil:
		v.addWarning("nil node inside a combinator - portable fragment requires valid nodes")
	case Compare:
		v.validateCompare(node)
	case *Compare:
		v.validateCompare(*node)
	case Filled:
		v.validateMapping(node.Field)
	case *Filled:
		v.validateMapping(node.Field)
	case NotFilled:
		v.validateMapping(node.Field)
	case *NotFilled:
		v.validateMapping(node.Field)
	case Not:
		v.validateNode(node.Inner)
	case *Not:
		v.validateNode(node.Inner)
	case And:
		v.validateList("and", node.Nodes)
	case *And:
		v.validateList("and", node.Nodes)
	case Or:
		v.validateList("or", node.Nodes)
	case *Or:
		v.validateList("or", node.Nodes)
	case Search:
		v.validateSearch(node)
	case *Search:
		v.validateSearch(*node)
	default:
		v.addWarning("Unknown node type: %T - portability cannot be verified", n)
	}
}

func (v *validator) validateCompare(c Compare) {
	v.validateMapping(c.Field)

	switch val := c.Value.(type) {
	case nil, ir.IRNull:
		// Rule 1
		v.addWarning("Field '%s' compared to NULL - use filled/notFilled instead", c.Field)
	case ir.IRBool:
		// Rule 2
		if c.Op.IsOrdering() {
			v.addWarning("Field '%s' ordered against boolean %v - backends disagree on boolean order", c.Field, bool(val))
		}
	case ir.IRArray, ir.IRObject:
		// Rule 3
		v.addWarning("Field '%s' compared to container value %s - portable fragment requires scalars", c.Field, ir.Format(c.Value))
	}
}

func (v *validator) validateSearch(s Search) {
	v.validateMapping(s.Field)
	if !s.Mode.IsValid() {
		v.addWarning("Search on '%s' uses unknown mode %q", s.Field, s.Mode)
	}
}

// validateMapping applies rule 4.
func (v *validator) validateMapping(m schema.Mapping) {
	if m.IsNested() {
		v.addWarning("Field '%s' traverses references - joins are SQL-only", m)
	}
}

// validateList applies rule 5 and recurses.
func (v *validator) validateList(kind string, nodes []Node) {
	if len(nodes) == 0 {
		v.addWarning("Empty %s - compiler output never contains empty combinators", kind)
	}
	for _, n := range nodes {
		v.validateNode(n)
	}
}
