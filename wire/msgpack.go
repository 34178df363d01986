package wire

import (
	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"

	"github.com/lemon4ex/ipc/value"
)

// uuidExtType is the reserved MessagePack ext type code this codec uses for
// value.UUID. Chosen over `bin` specifically so a 16-byte `data` payload
// never collides with a `uuid` on decode (see DESIGN.md).
const uuidExtType = int8(1)

func packValue(w *msgp.Writer, n *value.Node) error {
	switch n.Type() {
	case value.Null:
		return w.WriteNil()
	case value.Bool:
		return w.WriteBool(n.BoolValue())
	case value.Int64:
		return w.WriteInt64(n.Int64Value())
	case value.Uint64:
		return w.WriteUint64(n.Uint64Value())
	case value.Double:
		return w.WriteFloat64(n.DoubleValue())
	case value.Date:
		// opaque int on the wire; this codec does not reinterpret units.
		return w.WriteInt64(n.DateValue())
	case value.String:
		return w.WriteString(n.StringValue())
	case value.Data:
		return w.WriteBytes(n.DataValue())
	case value.UUID:
		id := n.UUIDValue()
		ext := &msgp.RawExtension{Type: uuidExtType, Data: id[:]}
		return w.WriteExtension(ext)
	case value.Array:
		if err := w.WriteArrayHeader(uint32(n.Len())); err != nil {
			return err
		}
		var packErr error
		n.ArrayApply(func(_ int, child *value.Node) bool {
			if packErr = packValue(w, child); packErr != nil {
				return false
			}
			return true
		})
		return packErr
	case value.Dictionary:
		if err := w.WriteMapHeader(uint32(n.Len())); err != nil {
			return err
		}
		var packErr error
		n.DictionaryApply(func(key string, child *value.Node) bool {
			if packErr = w.WriteString(key); packErr != nil {
				return false
			}
			if packErr = packValue(w, child); packErr != nil {
				return false
			}
			return true
		})
		return packErr
	case value.Error:
		// errors are a local-only signal; never serialized (spec.md §4.B).
		return errors.New("wire: error values are not serializable")
	default:
		return errors.Errorf("wire: unknown value tag %v", n.Type())
	}
}

// unpackValue parses one MessagePack value into a value.Node. Extra
// MessagePack kinds this protocol doesn't expect (anything but the ones
// listed in spec.md's type table, plus the uuidExtType extension) decode to
// a null node rather than failing the whole frame.
func unpackValue(r *msgp.Reader) (*value.Node, error) {
	t, err := r.NextType()
	if err != nil {
		return nil, err
	}
	switch t {
	case msgp.NilType:
		if err := r.ReadNil(); err != nil {
			return nil, err
		}
		return value.NullCreate(), nil
	case msgp.BoolType:
		b, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		return value.BoolCreate(b), nil
	case msgp.IntType:
		i, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		return value.Int64Create(i), nil
	case msgp.UintType:
		u, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		return value.Uint64Create(u), nil
	case msgp.Float64Type, msgp.Float32Type:
		f, err := r.ReadFloat64()
		if err != nil {
			return nil, err
		}
		return value.DoubleCreate(f), nil
	case msgp.StrType:
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return value.StringCreate(s), nil
	case msgp.BinType:
		b, err := r.ReadBytes(nil)
		if err != nil {
			return nil, err
		}
		return value.DataCreate(b), nil
	case msgp.ExtensionType:
		ext := &msgp.RawExtension{}
		if err := r.ReadExtension(ext); err != nil {
			return nil, err
		}
		if ext.Type == uuidExtType && len(ext.Data) == 16 {
			var id [16]byte
			copy(id[:], ext.Data)
			return value.UUIDCreate(id), nil
		}
		return value.NullCreate(), nil
	case msgp.ArrayType:
		sz, err := r.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		arr := value.ArrayCreate(nil)
		for i := uint32(0); i < sz; i++ {
			child, err := unpackValue(r)
			if err != nil {
				arr.Release()
				return nil, err
			}
			arr.ArrayAppendValue(child)
			child.Release()
		}
		return arr, nil
	case msgp.MapType:
		sz, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		dict := value.DictionaryCreate(nil, nil)
		for i := uint32(0); i < sz; i++ {
			key, err := r.ReadString()
			if err != nil {
				dict.Release()
				return nil, err
			}
			child, err := unpackValue(r)
			if err != nil {
				dict.Release()
				return nil, err
			}
			dict.DictionarySetValue(key, child)
			child.Release()
		}
		return dict, nil
	default:
		if err := r.Skip(); err != nil {
			return nil, err
		}
		return value.NullCreate(), nil
	}
}
