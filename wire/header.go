package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Version is the one constant protocol version this codec understands.
const Version uint64 = 1

// headerWords mirrors spec.md's fixed layout: version, id, length, spare[4].
const headerWords = 7

// HeaderSize is the frame header's fixed byte length.
const HeaderSize = headerWords * 8

// Header is the decoded form of a frame's fixed prefix.
type Header struct {
	Version uint64
	ID      uint64
	Length  uint64
}

// ErrMalformedFrame classes every way a frame can fail to decode: truncated
// input, version mismatch, length overrun, or a non-map top-level value.
var ErrMalformedFrame = errors.New("wire: malformed frame")

func encodeHeader(h Header, buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.ID)
	binary.LittleEndian.PutUint64(buf[16:24], h.Length)
	for i := 24; i < HeaderSize; i += 8 {
		binary.LittleEndian.PutUint64(buf[i:i+8], 0)
	}
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.Wrap(ErrMalformedFrame, "short header")
	}
	h := Header{
		Version: binary.LittleEndian.Uint64(buf[0:8]),
		ID:      binary.LittleEndian.Uint64(buf[8:16]),
		Length:  binary.LittleEndian.Uint64(buf[16:24]),
	}
	if h.Version != Version {
		return Header{}, errors.Wrapf(ErrMalformedFrame, "version %d != %d", h.Version, Version)
	}
	return h, nil
}
