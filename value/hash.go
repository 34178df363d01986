package value

// Hash implements spec.md's algorithm exactly:
//   - scalars/ids (bool, int64, uint64, date): the 64-bit payload cast to
//     a hash value;
//   - string, data, uuid: djb2 over the bytes (the spec is silent on uuid
//     specifically, so this follows the same byte-oriented rule as data —
//     see SPEC_FULL.md §3; the wire encoding is a separate decision, an `ext`
//     type, not `bin`);
//   - array: XOR-fold over hash(child);
//   - dictionary: XOR-fold over djb2(key) ^ hash(value).
func Hash(n *Node) uint64 {
	if n == nil {
		return 0
	}
	switch n.tag {
	case Null:
		return 0
	case Bool, Int64, Uint64, Date:
		return n.scalar
	case Double:
		return n.scalar
	case String, Data:
		return djb2(n.bytes)
	case UUID:
		return djb2(n.uuid[:])
	case Array:
		var h uint64
		for _, c := range n.children {
			h ^= Hash(c)
		}
		return h
	case Dictionary:
		var h uint64
		for i, k := range n.keys {
			h ^= djb2([]byte(k)) ^ Hash(n.children[i])
		}
		return h
	case Error:
		return uint64(n.cause)
	default:
		return 0
	}
}

func djb2(b []byte) uint64 {
	h := uint64(5381)
	for _, c := range b {
		h = ((h << 5) + h) + uint64(c)
	}
	return h
}

// Equal reports whether a and b have the same tag and the same payload,
// recursively for containers. Dictionary comparison is order-independent
// (matching insertion-order-agnostic Hash); array comparison is
// order-sensitive.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case Null:
		return true
	case Bool, Int64, Uint64, Double, Date:
		return a.scalar == b.scalar
	case String, Data:
		return string(a.bytes) == string(b.bytes)
	case UUID:
		return a.uuid == b.uuid
	case Error:
		return a.cause == b.cause
	case Array:
		if len(a.children) != len(b.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], b.children[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, k := range a.keys {
			bv := b.DictionaryGetValue(k)
			if bv == nil || !Equal(a.children[i], bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
