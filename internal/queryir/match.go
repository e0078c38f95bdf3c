package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// Match evaluates a tree against an in-memory record.
//
// Nested mappings descend through IRObject values. Missing fields and IRNull
// behave like SQL NULL: a Compare or Search on them is unknown, and only a
// tree that evaluates to true matches. Not leaves unknown as is, so a negated
// comparison never matches a NULL field. Values of different types are never
// equal and never ordered, which is also unknown. A nil tree matches
// everything.
func Match(n Node, record ir.IRObject) (bool, error) {
	t, err := eval(n, record)
	return t == truthTrue, err
}

// truth is a SQL three-valued boolean.
type truth int8

const (
	truthFalse truth = iota
	truthUnknown
	truthTrue
)

func truthOf(b bool) truth {
	if b {
		return truthTrue
	}
	return truthFalse
}

func (t truth) not() truth {
	return truthTrue - t
}

func eval(n Node, record ir.IRObject) (truth, error) {
	switch node := n.(type) {
	case nil:
		return truthTrue, nil
	case Compare:
		return matchCompare(node, record), nil
	case *Compare:
		return matchCompare(*node, record), nil
	case Filled:
		return truthOf(!ir.IsNull(lookup(record, node.Field))), nil
	case *Filled:
		return truthOf(!ir.IsNull(lookup(record, node.Field))), nil
	case NotFilled:
		return truthOf(ir.IsNull(lookup(record, node.Field))), nil
	case *NotFilled:
		return truthOf(ir.IsNull(lookup(record, node.Field))), nil
	case Not:
		t, err := eval(node.Inner, record)
		return t.not(), err
	case *Not:
		return eval(*node, record)
	case And:
		return evalAll(node.Nodes, record)
	case *And:
		return evalAll(node.Nodes, record)
	case Or:
		return evalAny(node.Nodes, record)
	case *Or:
		return evalAny(node.Nodes, record)
	case Search:
		return matchSearch(node, record), nil
	case *Search:
		return matchSearch(*node, record), nil
	default:
		return truthFalse, fmt.Errorf("unsupported node type: %T", n)
	}
}

// evalAll is false if any node is false, else unknown if any is unknown.
func evalAll(nodes []Node, record ir.IRObject) (truth, error) {
	result := truthTrue
	for _, n := range nodes {
		t, err := eval(n, record)
		if err != nil {
			return truthFalse, err
		}
		result = min(result, t)
		if result == truthFalse {
			return truthFalse, nil
		}
	}
	return result, nil
}

// evalAny is true if any node is true, else unknown if any is unknown.
func evalAny(nodes []Node, record ir.IRObject) (truth, error) {
	result := truthFalse
	for _, n := range nodes {
		t, err := eval(n, record)
		if err != nil {
			return truthFalse, err
		}
		result = max(result, t)
		if result == truthTrue {
			return truthTrue, nil
		}
	}
	return result, nil
}

// lookup follows m through nested objects. Returns nil when any step is missing.
func lookup(record ir.IRObject, m schema.Mapping) ir.IRValue {
	var current ir.IRValue = record
	for _, seg := range m.Segments() {
		obj, ok := current.(ir.IRObject)
		if !ok {
			return nil
		}
		current = obj[seg]
	}
	return current
}

func matchCompare(c Compare, record ir.IRObject) truth {
	actual := lookup(record, c.Field)
	if ir.IsNull(actual) || ir.IsNull(c.Value) {
		return truthUnknown
	}
	cmp, ok := compareValues(actual, c.Value)
	if !ok {
		return truthUnknown
	}
	switch c.Op {
	case OpEq:
		return truthOf(cmp == 0)
	case OpNe:
		return truthOf(cmp != 0)
	case OpGt:
		return truthOf(cmp > 0)
	case OpGte:
		return truthOf(cmp >= 0)
	case OpLt:
		return truthOf(cmp < 0)
	case OpLte:
		return truthOf(cmp <= 0)
	default:
		return truthFalse
	}
}

// compareValues orders two scalars of the same type.
func compareValues(a, b ir.IRValue) (int, bool) {
	switch av := a.(type) {
	case ir.IRString:
		bv, ok := b.(ir.IRString)
		if !ok {
			return 0, false
		}
		return strings.Compare(string(av), string(bv)), true
	case ir.IRInt:
		bv, ok := b.(ir.IRInt)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case ir.IRBool:
		bv, ok := b.(ir.IRBool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !bool(av):
			return -1, true
		}
		return 1, true
	case ir.IRTime:
		bv, ok := b.(ir.IRTime)
		if !ok {
			return 0, false
		}
		return av.Time.Compare(bv.Time), true
	default:
		return 0, false
	}
}

func matchSearch(s Search, record ir.IRObject) truth {
	raw := lookup(record, s.Field)
	if ir.IsNull(raw) {
		return truthUnknown
	}
	actual, ok := raw.(ir.IRString)
	if !ok {
		return truthFalse
	}
	value := string(actual)
	switch s.Mode {
	case schema.SearchEqual:
		return truthOf(value == s.Word)
	case schema.SearchPrefix:
		return truthOf(strings.HasPrefix(strings.ToLower(value), strings.ToLower(s.Word)))
	default:
		return truthOf(strings.Contains(strings.ToLower(value), strings.ToLower(s.Word)))
	}
}
