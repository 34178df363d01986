// Package transport implements spec.md §4.C's pluggable capability set --
// listen, lookup, send, recv, and readiness-source factories -- with one
// concrete implementation over stream sockets (UNIX domain and TCP).
//
// Grounded on transport/api.go's capability-over-concrete-implementation
// shape in the teacher, and on original_source/ipc/unix.c for the UNIX
// endpoint semantics (unlink-before-bind). Listen sets no backlog of its
// own; the listen backlog is Go's net package default. Ancillary data and
// OS handles never cross this boundary: Send/Recv only ever move []byte.
package transport

import (
	"net"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// Endpoint names a listen/connect target. The two implementations below
// (UnixEndpoint, TCPEndpoint) are the only ones spec.md calls for.
type Endpoint interface {
	Network() string
	Address() string
}

// UnixEndpoint is an absolute filesystem path.
type UnixEndpoint struct{ Path string }

func (u UnixEndpoint) Network() string { return "unix" }
func (u UnixEndpoint) Address() string { return u.Path }

// TCPEndpoint is a dotted-quad IPv4 address and a 16-bit port.
type TCPEndpoint struct {
	Host string
	Port uint16
}

func (t TCPEndpoint) Network() string { return "tcp" }
func (t TCPEndpoint) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

// Port is an opaque handle to either a listening socket or a connected
// stream. The zero Port is invalid.
type Port struct {
	conn net.Conn
	ln   net.Listener
	id   uint64
}

var portSeq uint64
var portSeqMu sync.Mutex

func nextPortID() uint64 {
	portSeqMu.Lock()
	defer portSeqMu.Unlock()
	portSeq++
	return portSeq
}

// Transport is the capability set spec.md §4.C describes.
type Transport interface {
	Listen(e Endpoint) (Port, error)
	Lookup(e Endpoint) (Port, error)
	Send(p Port, b []byte) error
	Recv(p Port, buf []byte) (int, error)
	PortCompare(a, b Port) bool
	Release(p Port) error
	CreateServerSource(p Port, q Queue, onAccept func(peer Port)) *Source
	CreateClientSource(p Port, q Queue, onReadable func(frame []byte), onCancel func()) *Source
}

// Queue is the minimal surface transport needs from internal/squeue,
// expressed as an interface so this package doesn't import squeue
// directly and conn stays free to pass its own queue wrapper.
type Queue interface {
	Async(fn func())
}

// RecvBufSize is the fixed receive buffer size spec.md §4.C mandates: 64
// KiB, with the frame header dictating the valid payload length within it.
const RecvBufSize = 64 * 1024

// ErrPeerClosed is returned by Recv when the remote end closed its write
// side (n==0 in spec.md's terms).
var ErrPeerClosed = errors.New("transport: peer closed")

// streamTransport is the one concrete Transport: UNIX-domain and TCP
// stream sockets via the stdlib net package -- the idiomatic Go
// equivalent of original_source/ipc/unix.c's raw socket()/bind()/
// listen()/accept() calls.
type streamTransport struct{}

// NewStreamTransport returns the stream-socket Transport.
func NewStreamTransport() Transport { return streamTransport{} }

func (streamTransport) Listen(e Endpoint) (Port, error) {
	if u, ok := e.(UnixEndpoint); ok {
		_ = unlinkIfExists(u.Path)
	}
	lc := net.ListenConfig{}
	ln, err := lc.Listen(backgroundCtx(), e.Network(), e.Address())
	if err != nil {
		return Port{}, errors.Wrapf(err, "transport: listen %s %s", e.Network(), e.Address())
	}
	return Port{ln: ln, id: nextPortID()}, nil
}

func (streamTransport) Lookup(e Endpoint) (Port, error) {
	conn, err := net.Dial(e.Network(), e.Address())
	if err != nil {
		return Port{}, errors.Wrapf(err, "transport: dial %s %s", e.Network(), e.Address())
	}
	return Port{conn: conn, id: nextPortID()}, nil
}

func (streamTransport) Send(p Port, b []byte) error {
	if p.conn == nil {
		return errors.New("transport: send on a non-connected port")
	}
	_, err := p.conn.Write(b)
	return err
}

// Recv reads up to one frame's worth of bytes. Per spec.md §4.C, a single
// frame is expected per call since the wire framing is length-prefixed;
// n==0 signals the peer closed, n<0 a transient error, n>0 bytes read.
func (streamTransport) Recv(p Port, buf []byte) (int, error) {
	if p.conn == nil {
		return -1, errors.New("transport: recv on a non-connected port")
	}
	n, err := p.conn.Read(buf)
	if err != nil {
		if isEOF(err) {
			return 0, nil
		}
		return -1, err
	}
	return n, nil
}

func (streamTransport) PortCompare(a, b Port) bool { return a.id == b.id }

func (streamTransport) Release(p Port) error {
	if p.conn != nil {
		return p.conn.Close()
	}
	if p.ln != nil {
		return p.ln.Close()
	}
	return nil
}

func (streamTransport) CreateServerSource(p Port, q Queue, onAccept func(peer Port)) *Source {
	return newServerSource(p, q, onAccept)
}

func (streamTransport) CreateClientSource(p Port, q Queue, onReadable func(frame []byte), onCancel func()) *Source {
	return newClientSource(p, q, onReadable, onCancel)
}
