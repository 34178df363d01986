package value

import (
	"fmt"
	"strings"
)

// Copy returns a deep, independently-owned clone of x. Containers and
// strings/data get fresh owned storage; scalars get a freshly allocated
// node with the same tag and payload.
func Copy(x *Node) *Node {
	if x == nil {
		return nil
	}
	switch x.tag {
	case Null:
		return NullCreate()
	case Bool:
		return BoolCreate(x.BoolValue())
	case Int64:
		return Int64Create(x.Int64Value())
	case Uint64:
		return Uint64Create(x.Uint64Value())
	case Double:
		return DoubleCreate(x.DoubleValue())
	case Date:
		return DateCreate(x.DateValue())
	case Data:
		return DataCreate(x.bytes)
	case String:
		return StringCreate(string(x.bytes))
	case UUID:
		return UUIDCreate(x.uuid)
	case Error:
		return ErrorCreate(x.cause)
	case Array:
		children := make([]*Node, len(x.children))
		for i, c := range x.children {
			clone := Copy(c)
			children[i] = clone
			// ArrayCreate retains each element itself; release our extra
			// local ownership of the freshly-built clone.
			defer clone.Release()
		}
		return ArrayCreate(children)
	case Dictionary:
		n := newNode(Dictionary)
		for i, k := range x.keys {
			clone := Copy(x.children[i])
			n.dictionarySet(k, clone)
			clone.Release()
		}
		return n
	default:
		return nil
	}
}

// CopyDescription renders a human-readable, indented diagnostic dump of x.
// Used for debugging only; never parsed back.
func CopyDescription(x *Node) string {
	var b strings.Builder
	describe(&b, x, 0)
	return b.String()
}

func describe(b *strings.Builder, x *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if x == nil {
		fmt.Fprintf(b, "%s<nil>\n", indent)
		return
	}
	switch x.tag {
	case Array:
		fmt.Fprintf(b, "%s<array: %d>\n", indent, len(x.children))
		for _, c := range x.children {
			describe(b, c, depth+1)
		}
	case Dictionary:
		fmt.Fprintf(b, "%s<dictionary: %d>\n", indent, len(x.keys))
		for i, k := range x.keys {
			fmt.Fprintf(b, "%s  %q =>\n", indent, k)
			describe(b, x.children[i], depth+2)
		}
	case String:
		fmt.Fprintf(b, "%s<string: %q>\n", indent, x.StringValue())
	case Data:
		fmt.Fprintf(b, "%s<data: %d bytes>\n", indent, len(x.bytes))
	case Error:
		fmt.Fprintf(b, "%s<error: %s>\n", indent, x.cause)
	default:
		fmt.Fprintf(b, "%s<%s>\n", indent, x.tag)
	}
}
