// Package value implements the polymorphic, reference-counted value tree
// exchanged between IPC peers: a closed set of scalar, container, and error
// node kinds addressed through a single tagged type.
package value

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lemon4ex/ipc/internal/debug"
)

// Tag discriminates the payload a Node carries. The set is closed; no
// caller can register additional tags.
type Tag uint8

const (
	Null Tag = iota
	Bool
	Int64
	Uint64
	Double
	Date
	Data
	String
	UUID
	Array
	Dictionary
	Error
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Double:
		return "double"
	case Date:
		return "date"
	case Data:
		return "data"
	case String:
		return "string"
	case UUID:
		return "uuid"
	case Array:
		return "array"
	case Dictionary:
		return "dictionary"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// flag holds the per-node bits the spec defines. Only FromWire exists today.
type flag uint32

const flagFromWire flag = 1 << 0

// Cause enumerates the closed set of local error signals a Node of tag
// Error can carry.
type Cause int

const (
	CauseConnectionInvalid Cause = iota
	CauseConnectionInterrupted
	CauseTerminationImminent
)

func (c Cause) String() string {
	switch c {
	case CauseConnectionInvalid:
		return "CONNECTION_INVALID"
	case CauseConnectionInterrupted:
		return "CONNECTION_INTERRUPTED"
	case CauseTerminationImminent:
		return "TERMINATION_IMMINENT"
	default:
		return "UNKNOWN_CAUSE"
	}
}

// Append is the array_set_value sentinel meaning "append"; SIZE_MAX in the
// original source.
const Append = ^uint64(0)

// Node is the tagged, reference-counted value tree node. The zero Node is
// not valid; use the constructors below.
type Node struct {
	tag   Tag
	flags flag
	refc  int32 // atomic; >0 between creation and final release

	scalar uint64 // bool/int64/uint64/double/date bit pattern
	bytes  []byte // data/string payload, owned
	uuid   [16]byte
	cause  Cause

	keys     []string // dictionary: parallel to children, insertion order
	children []*Node  // array elements, or dictionary values
}

func newNode(tag Tag) *Node {
	debug.TrackRetain()
	return &Node{tag: tag, refc: 1}
}

// Type returns the node's tag.
func (n *Node) Type() Tag { return n.tag }

// Len returns the semantic size: element count for containers, byte length
// for data/string, 1 for scalars, 0 for null.
func (n *Node) Len() int {
	switch n.tag {
	case Null:
		return 0
	case Data, String:
		return len(n.bytes)
	case Array:
		return len(n.children)
	case Dictionary:
		return len(n.keys)
	default:
		return 1
	}
}

// Retain increments the reference count and returns the node, mirroring the
// C `retain` idiom so callers can write `h.send(n.Retain())`.
func (n *Node) Retain() *Node {
	atomic.AddInt32(&n.refc, 1)
	return n
}

// Release decrements the reference count; at zero the node is destroyed,
// recursively releasing owned children and freeing owned buffers exactly
// once.
func (n *Node) Release() {
	if atomic.AddInt32(&n.refc, -1) > 0 {
		return
	}
	n.destroy()
}

func (n *Node) destroy() {
	switch n.tag {
	case Array, Dictionary:
		for _, c := range n.children {
			c.Release()
		}
		n.children = nil
		n.keys = nil
	}
	n.bytes = nil
	debug.TrackRelease()
}

func (n *Node) markFromWireRecursive() {
	n.flags |= flagFromWire
	if n.tag == Dictionary {
		for _, c := range n.children {
			c.markFromWireRecursive()
		}
	} else if n.tag == Array {
		for _, c := range n.children {
			if c.tag == Dictionary {
				c.markFromWireRecursive()
			} else if c.tag == Array {
				c.markFromWireRecursive()
			}
		}
	}
}

// MarkFromWireRecursive is exported for the wire package's decoder, which is
// the only legitimate setter of the FROM_WIRE flag.
func MarkFromWireRecursive(n *Node) { n.markFromWireRecursive() }

// FromWire reports whether n is a dictionary produced by the decoder.
func (n *Node) FromWire() bool { return n.flags&flagFromWire != 0 }

// --- scalar constructors ---

func NullCreate() *Node { return newNode(Null) }

func BoolCreate(v bool) *Node {
	n := newNode(Bool)
	if v {
		n.scalar = 1
	}
	return n
}

func Int64Create(v int64) *Node {
	n := newNode(Int64)
	n.scalar = uint64(v)
	return n
}

func Uint64Create(v uint64) *Node {
	n := newNode(Uint64)
	n.scalar = v
	return n
}

func DoubleCreate(v float64) *Node {
	n := newNode(Double)
	n.scalar = doubleBits(v)
	return n
}

// DateCreate stores v as nanoseconds since the Unix epoch, the unit this
// implementation fixes per the spec's open question on date units.
func DateCreate(nanosSinceEpoch int64) *Node {
	n := newNode(Date)
	n.scalar = uint64(nanosSinceEpoch)
	return n
}

func DateCreateFromCurrent() *Node {
	return DateCreate(time.Now().UnixNano())
}

func DataCreate(b []byte) *Node {
	n := newNode(Data)
	n.bytes = append([]byte(nil), b...)
	return n
}

func StringCreate(s string) *Node {
	n := newNode(String)
	n.bytes = []byte(s)
	return n
}

func StringCreateWithFormat(format string, args ...any) *Node {
	return StringCreate(fmt.Sprintf(format, args...))
}

func UUIDCreate(b [16]byte) *Node {
	n := newNode(UUID)
	n.uuid = b
	return n
}

// ErrorCreate allocates a fresh, refcounted error node for cause. Per the
// spec's resolved open question, error values are never zero-refcount
// globals.
func ErrorCreate(cause Cause) *Node {
	n := newNode(Error)
	n.cause = cause
	return n
}

// --- typed accessors; mismatched tags/missing keys yield the zero value ---

func (n *Node) BoolValue() bool {
	if n.tag != Bool {
		return false
	}
	return n.scalar != 0
}

func (n *Node) Int64Value() int64 {
	if n.tag != Int64 {
		return 0
	}
	return int64(n.scalar)
}

func (n *Node) Uint64Value() uint64 {
	if n.tag != Uint64 {
		return 0
	}
	return n.scalar
}

func (n *Node) DoubleValue() float64 {
	if n.tag != Double {
		return 0
	}
	return doubleFromBits(n.scalar)
}

func (n *Node) DateValue() int64 {
	if n.tag != Date {
		return 0
	}
	return int64(n.scalar)
}

// DataValue returns a non-owning view into the node's buffer; valid until
// the node is released.
func (n *Node) DataValue() []byte {
	if n.tag != Data {
		return nil
	}
	return n.bytes
}

func (n *Node) StringValue() string {
	if n.tag != String {
		return ""
	}
	return string(n.bytes)
}

// BytesPtr returns the raw owning-storage view for data/string nodes, as
// spec.md's `get_bytes_ptr` accessor.
func (n *Node) BytesPtr() []byte {
	if n.tag != Data && n.tag != String {
		return nil
	}
	return n.bytes
}

func (n *Node) UUIDValue() [16]byte {
	if n.tag != UUID {
		return [16]byte{}
	}
	return n.uuid
}

func (n *Node) CauseValue() Cause {
	if n.tag != Error {
		return 0
	}
	return n.cause
}
