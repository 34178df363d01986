package value

// ArrayCreate builds an array node over children, retaining each child (the
// array becomes a co-owner alongside whatever reference the caller already
// holds).
func ArrayCreate(children []*Node) *Node {
	n := newNode(Array)
	n.children = make([]*Node, len(children))
	for i, c := range children {
		n.children[i] = c.Retain()
	}
	return n
}

// DictionaryCreate builds a dictionary node from parallel keys/values
// slices, retaining each value. A reinserted key (duplicate in the input)
// follows last-write-wins, same as DictionarySetValue.
func DictionaryCreate(keys []string, values []*Node) *Node {
	n := newNode(Dictionary)
	for i, k := range keys {
		n.dictionarySet(k, values[i])
	}
	return n
}

// ArrayGetValue returns the child at i, or nil if i is out of range. The
// returned Node is a non-owning borrow: it remains valid only as long as the
// array itself is alive.
func (n *Node) ArrayGetValue(i int) *Node {
	if n.tag != Array || i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ArrayAppendValue retains v and appends it.
func (n *Node) ArrayAppendValue(v *Node) {
	if n.tag != Array {
		return
	}
	n.children = append(n.children, v.Retain())
}

// ArraySetValue replaces the child at index i, releasing the prior
// occupant and retaining v. The Append sentinel (^uint64(0)) means
// "append"; any other out-of-range index is a silent no-op, per spec.
func (n *Node) ArraySetValue(i uint64, v *Node) {
	if n.tag != Array {
		return
	}
	if i == Append {
		n.ArrayAppendValue(v)
		return
	}
	if i >= uint64(len(n.children)) {
		return
	}
	old := n.children[i]
	n.children[i] = v.Retain()
	old.Release()
}

// ArrayApply visits children in insertion order, stopping early if fn
// returns false.
func (n *Node) ArrayApply(fn func(index int, v *Node) bool) {
	if n.tag != Array {
		return
	}
	for i, c := range n.children {
		if !fn(i, c) {
			return
		}
	}
}

// DictionaryGetValue returns the value under key, or nil if absent.
func (n *Node) DictionaryGetValue(key string) *Node {
	if n.tag != Dictionary {
		return nil
	}
	for i, k := range n.keys {
		if k == key {
			return n.children[i]
		}
	}
	return nil
}

// DictionarySetValue replaces the value under key in place (preserving its
// position) or appends a new tail entry; it retains v and releases any
// value it displaces.
func (n *Node) DictionarySetValue(key string, v *Node) {
	if n.tag != Dictionary {
		return
	}
	n.dictionarySet(key, v)
}

func (n *Node) dictionarySet(key string, v *Node) {
	for i, k := range n.keys {
		if k == key {
			old := n.children[i]
			n.children[i] = v.Retain()
			old.Release()
			return
		}
	}
	n.keys = append(n.keys, key)
	n.children = append(n.children, v.Retain())
}

// DictionaryApply visits entries in insertion order, stopping early if fn
// returns false.
func (n *Node) DictionaryApply(fn func(key string, v *Node) bool) {
	if n.tag != Dictionary {
		return
	}
	for i, k := range n.keys {
		if !fn(k, n.children[i]) {
			return
		}
	}
}

// DictionaryCreateReply returns a fresh empty dictionary suitable for a
// reply, but only when original carries FROM_WIRE — i.e. it arrived off the
// wire rather than being locally minted. Otherwise it returns nil.
func DictionaryCreateReply(original *Node) *Node {
	if original == nil || original.tag != Dictionary || !original.FromWire() {
		return nil
	}
	return newNode(Dictionary)
}
