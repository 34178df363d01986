package ipc

import "github.com/lemon4ex/ipc/value"

// Dictionary and Array are spec.md §4.E's "thin typed shell": per-scalar-tag
// getters/setters that call straight through to value.Node's generic
// accessors/mutators, with no logic and no new invariants of their own.
// Grounded on original_source/ipc/ipc_dictionary.h and ipc_array.h, whose
// ipc_dictionary_get_int64/set_string/... and ipc_array_get_bool/set_uuid/...
// matrices this mirrors one scalar tag at a time.

// Dictionary wraps a *value.Node of tag value.Dictionary.
type Dictionary struct{ n *value.Node }

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary { return &Dictionary{n: value.DictionaryCreate(nil, nil)} }

// WrapDictionary adopts an existing dictionary node without retaining it;
// the caller transfers its reference to the returned *Dictionary.
func WrapDictionary(n *value.Node) *Dictionary { return &Dictionary{n: n} }

// CreateReply returns a fresh reply Dictionary, or nil if d did not arrive
// off the wire (value.DictionaryCreateReply's FROM_WIRE gate).
func (d *Dictionary) CreateReply() *Dictionary {
	r := value.DictionaryCreateReply(d.n)
	if r == nil {
		return nil
	}
	return &Dictionary{n: r}
}

// Node returns the underlying value.Node, still owned by d.
func (d *Dictionary) Node() *value.Node { return d.n }

// Retain increments the underlying node's reference count.
func (d *Dictionary) Retain() *Dictionary { d.n.Retain(); return d }

// Release decrements the underlying node's reference count.
func (d *Dictionary) Release() { d.n.Release() }

// Len returns the number of entries.
func (d *Dictionary) Len() int { return d.n.Len() }

// Apply visits entries in insertion order, stopping early if fn returns
// false.
func (d *Dictionary) Apply(fn func(key string, v *value.Node) bool) { d.n.DictionaryApply(fn) }

// GetValue returns the raw value.Node under key, or nil if absent.
func (d *Dictionary) GetValue(key string) *value.Node { return d.n.DictionaryGetValue(key) }

// SetValue replaces (or inserts) the raw value.Node under key.
func (d *Dictionary) SetValue(key string, v *value.Node) { d.n.DictionarySetValue(key, v) }

func (d *Dictionary) GetBool(key string) bool {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return false
	}
	return v.BoolValue()
}

func (d *Dictionary) SetBool(key string, v bool) {
	n := value.BoolCreate(v)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

func (d *Dictionary) GetInt64(key string) int64 {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return 0
	}
	return v.Int64Value()
}

func (d *Dictionary) SetInt64(key string, v int64) {
	n := value.Int64Create(v)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

func (d *Dictionary) GetUint64(key string) uint64 {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return 0
	}
	return v.Uint64Value()
}

func (d *Dictionary) SetUint64(key string, v uint64) {
	n := value.Uint64Create(v)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

func (d *Dictionary) GetDouble(key string) float64 {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return 0
	}
	return v.DoubleValue()
}

func (d *Dictionary) SetDouble(key string, v float64) {
	n := value.DoubleCreate(v)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

func (d *Dictionary) GetDate(key string) int64 {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return 0
	}
	return v.DateValue()
}

func (d *Dictionary) SetDate(key string, nanosSinceEpoch int64) {
	n := value.DateCreate(nanosSinceEpoch)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

func (d *Dictionary) GetData(key string) []byte {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return nil
	}
	return v.DataValue()
}

func (d *Dictionary) SetData(key string, bytes []byte) {
	n := value.DataCreate(bytes)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

func (d *Dictionary) GetString(key string) string {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return ""
	}
	return v.StringValue()
}

func (d *Dictionary) SetString(key string, s string) {
	n := value.StringCreate(s)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

func (d *Dictionary) GetUUID(key string) [16]byte {
	v := d.n.DictionaryGetValue(key)
	if v == nil {
		return [16]byte{}
	}
	return v.UUIDValue()
}

func (d *Dictionary) SetUUID(key string, id [16]byte) {
	n := value.UUIDCreate(id)
	d.n.DictionarySetValue(key, n)
	n.Release()
}

// GetDictionary returns the nested dictionary under key, or nil if absent
// or of a different tag.
func (d *Dictionary) GetDictionary(key string) *Dictionary {
	v := d.n.DictionaryGetValue(key)
	if v == nil || v.Type() != value.Dictionary {
		return nil
	}
	return &Dictionary{n: v}
}

func (d *Dictionary) SetDictionary(key string, v *Dictionary) { d.n.DictionarySetValue(key, v.n) }

// GetArray returns the nested array under key, or nil if absent or of a
// different tag.
func (d *Dictionary) GetArray(key string) *Array {
	v := d.n.DictionaryGetValue(key)
	if v == nil || v.Type() != value.Array {
		return nil
	}
	return &Array{n: v}
}

func (d *Dictionary) SetArray(key string, v *Array) { d.n.DictionarySetValue(key, v.n) }

// Array wraps a *value.Node of tag value.Array.
type Array struct{ n *value.Node }

// NewArray creates an empty array.
func NewArray() *Array { return &Array{n: value.ArrayCreate(nil)} }

// WrapArray adopts an existing array node without retaining it; the caller
// transfers its reference to the returned *Array.
func WrapArray(n *value.Node) *Array { return &Array{n: n} }

// Node returns the underlying value.Node, still owned by a.
func (a *Array) Node() *value.Node { return a.n }

// Retain increments the underlying node's reference count.
func (a *Array) Retain() *Array { a.n.Retain(); return a }

// Release decrements the underlying node's reference count.
func (a *Array) Release() { a.n.Release() }

// Len returns the element count.
func (a *Array) Len() int { return a.n.Len() }

// Apply visits elements in order, stopping early if fn returns false.
func (a *Array) Apply(fn func(index int, v *value.Node) bool) { a.n.ArrayApply(fn) }

// GetValue returns the raw value.Node at i, or nil if out of range.
func (a *Array) GetValue(i int) *value.Node { return a.n.ArrayGetValue(i) }

// AppendValue retains and appends the raw value.Node v.
func (a *Array) AppendValue(v *value.Node) { a.n.ArrayAppendValue(v) }

// SetValue replaces the child at i (value.Append appends), per
// value.Node.ArraySetValue.
func (a *Array) SetValue(i uint64, v *value.Node) { a.n.ArraySetValue(i, v) }

func (a *Array) GetBool(i int) bool {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return false
	}
	return v.BoolValue()
}

func (a *Array) SetBool(i uint64, v bool) {
	n := value.BoolCreate(v)
	a.n.ArraySetValue(i, n)
	n.Release()
}

func (a *Array) GetInt64(i int) int64 {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return 0
	}
	return v.Int64Value()
}

func (a *Array) SetInt64(i uint64, v int64) {
	n := value.Int64Create(v)
	a.n.ArraySetValue(i, n)
	n.Release()
}

func (a *Array) GetUint64(i int) uint64 {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return 0
	}
	return v.Uint64Value()
}

func (a *Array) SetUint64(i uint64, v uint64) {
	n := value.Uint64Create(v)
	a.n.ArraySetValue(i, n)
	n.Release()
}

func (a *Array) GetDouble(i int) float64 {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return 0
	}
	return v.DoubleValue()
}

func (a *Array) SetDouble(i uint64, v float64) {
	n := value.DoubleCreate(v)
	a.n.ArraySetValue(i, n)
	n.Release()
}

func (a *Array) GetDate(i int) int64 {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return 0
	}
	return v.DateValue()
}

func (a *Array) SetDate(i uint64, nanosSinceEpoch int64) {
	n := value.DateCreate(nanosSinceEpoch)
	a.n.ArraySetValue(i, n)
	n.Release()
}

func (a *Array) GetData(i int) []byte {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return nil
	}
	return v.DataValue()
}

func (a *Array) SetData(i uint64, bytes []byte) {
	n := value.DataCreate(bytes)
	a.n.ArraySetValue(i, n)
	n.Release()
}

func (a *Array) GetString(i int) string {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return ""
	}
	return v.StringValue()
}

func (a *Array) SetString(i uint64, s string) {
	n := value.StringCreate(s)
	a.n.ArraySetValue(i, n)
	n.Release()
}

func (a *Array) GetUUID(i int) [16]byte {
	v := a.n.ArrayGetValue(i)
	if v == nil {
		return [16]byte{}
	}
	return v.UUIDValue()
}

func (a *Array) SetUUID(i uint64, id [16]byte) {
	n := value.UUIDCreate(id)
	a.n.ArraySetValue(i, n)
	n.Release()
}

// GetDictionary returns the nested dictionary at i, or nil if out of range
// or of a different tag.
func (a *Array) GetDictionary(i int) *Dictionary {
	v := a.n.ArrayGetValue(i)
	if v == nil || v.Type() != value.Dictionary {
		return nil
	}
	return &Dictionary{n: v}
}

func (a *Array) SetDictionary(i uint64, v *Dictionary) { a.n.ArraySetValue(i, v.n) }

// GetArray returns the nested array at i, or nil if out of range or of a
// different tag.
func (a *Array) GetArray(i int) *Array {
	v := a.n.ArrayGetValue(i)
	if v == nil || v.Type() != value.Array {
		return nil
	}
	return &Array{n: v}
}

func (a *Array) SetArray(i uint64, v *Array) { a.n.ArraySetValue(i, v.n) }

// Append is the value.Node Append sentinel, re-exported so callers of the
// typed Set* methods on Array don't need to import package value just for
// this one constant.
const Append = value.Append
