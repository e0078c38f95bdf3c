package queryir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/querymix/internal/ir"
)

// None is the rendering of an absent constraint.
const None = "<none>"

// Format renders a node as a compact, deterministic expression:
//
//	and(eq(status, "open"), or(search(title, like, "foo"), search(body, like, "foo")))
//
// A nil node renders as None.
func Format(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch node := n.(type) {
	case nil:
		sb.WriteString(None)
	case Compare:
		fmt.Fprintf(sb, "%s(%s, %s)", node.Op.Name(), node.Field, ir.Format(node.Value))
	case *Compare:
		writeNode(sb, *node)
	case Filled:
		fmt.Fprintf(sb, "filled(%s)", node.Field)
	case *Filled:
		writeNode(sb, *node)
	case NotFilled:
		fmt.Fprintf(sb, "notFilled(%s)", node.Field)
	case *NotFilled:
		writeNode(sb, *node)
	case Not:
		sb.WriteString("not(")
		writeNode(sb, node.Inner)
		sb.WriteString(")")
	case *Not:
		writeNode(sb, *node)
	case And:
		writeList(sb, "and", node.Nodes)
	case *And:
		writeNode(sb, *node)
	case Or:
		writeList(sb, "or", node.Nodes)
	case *Or:
		writeNode(sb, *node)
	case Search:
		fmt.Fprintf(sb, "search(%s, %s, %s)", node.Field, node.Mode, strconv.Quote(node.Word))
	case *Search:
		writeNode(sb, *node)
	default:
		fmt.Fprintf(sb, "?%T", n)
	}
}

func writeList(sb *strings.Builder, name string, nodes []Node) {
	sb.WriteString(name)
	sb.WriteString("(")
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeNode(sb, n)
	}
	sb.WriteString(")")
}
