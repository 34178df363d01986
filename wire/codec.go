// Package wire implements the frame codec: a fixed 7×uint64 little-endian
// header followed by a MessagePack payload, per spec.md §6.
package wire

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"

	"github.com/lemon4ex/ipc/value"
)

// Encode writes d (which must be a dictionary) as a single framed message
// carrying the given correlation id.
func Encode(d *value.Node, id uint64) ([]byte, error) {
	if d.Type() != value.Dictionary {
		return nil, errors.New("wire: only dictionaries are encodable")
	}

	var payload bytes.Buffer
	w := msgp.NewWriter(&payload)
	if err := packValue(w, d); err != nil {
		return nil, errors.Wrap(err, "wire: encode payload")
	}
	if err := w.Flush(); err != nil {
		return nil, errors.Wrap(err, "wire: flush payload")
	}

	buf := make([]byte, HeaderSize+payload.Len())
	encodeHeader(Header{Version: Version, ID: id, Length: uint64(payload.Len())}, buf[:HeaderSize])
	copy(buf[HeaderSize:], payload.Bytes())
	return buf, nil
}

// Decode parses a single frame. It rejects truncated input, a version
// mismatch, a length that overruns the supplied buffer, and a top-level
// MessagePack value that isn't a map -- all as ErrMalformedFrame, so the
// connection's receive path can drop the frame uniformly (spec.md §4.B).
func Decode(buf []byte) (d *value.Node, id uint64, err error) {
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	rest := buf[HeaderSize:]
	if h.Length > uint64(len(rest)) {
		return nil, 0, errors.Wrapf(ErrMalformedFrame, "length %d exceeds buffer %d", h.Length, len(rest))
	}
	payload := rest[:h.Length]

	r := msgp.NewReader(bytes.NewReader(payload))
	t, err := r.NextType()
	if err != nil {
		return nil, 0, errors.Wrap(ErrMalformedFrame, err.Error())
	}
	if t != msgp.MapType {
		return nil, 0, errors.Wrap(ErrMalformedFrame, "top-level value is not a map")
	}

	n, err := unpackValue(r)
	if err != nil {
		return nil, 0, errors.Wrap(ErrMalformedFrame, err.Error())
	}
	value.MarkFromWireRecursive(n)
	return n, h.ID, nil
}
