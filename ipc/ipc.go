// Package ipc is the public surface of the library: a thin shell over
// conn.Connection, transport.Transport, and value.Node. Callers still
// import package transport to build the Endpoint passed to Listen and
// Dial, and handlers receive raw *value.Node messages.
//
// Grounded on spec.md §4.E; the wrapper shape mirrors how the teacher
// exposes its own internal types through typed accessor methods (e.g.
// core/meta/bucket.go's Bck wrapping cmn.Bck) rather than handing out raw
// pointers into the value graph.
package ipc

import (
	"github.com/lemon4ex/ipc/conn"
	"github.com/lemon4ex/ipc/metrics"
	"github.com/lemon4ex/ipc/transport"
)

// Queue is the serial queue type every handler and reply runs on.
type Queue = conn.Queue

// Listener accepts peer connections on a bound endpoint.
type Listener struct{ *conn.Connection }

// Client is the caller's end of a single connection to a listener.
type Client struct{ *conn.Connection }

// Peer is a connection a Listener accepted; delivered via EventNewPeer.
type Peer struct{ *conn.Connection }

// Listen creates and binds a listening connection. targetQueue may be nil
// to use the library's default queue. The caller must still call Resume.
func Listen(endpoint transport.Endpoint, targetQueue *Queue) (*Listener, error) {
	c, err := conn.CreateListener(transport.NewStreamTransport(), endpoint, targetQueue)
	if err != nil {
		return nil, err
	}
	return &Listener{c}, nil
}

// Dial creates a client connection to endpoint. The caller must still
// call Resume.
func Dial(endpoint transport.Endpoint, targetQueue *Queue) (*Client, error) {
	c, err := conn.CreateClient(transport.NewStreamTransport(), endpoint, targetQueue)
	if err != nil {
		return nil, err
	}
	return &Client{c}, nil
}

// SetMetrics wires r into every frame this connection sends or receives.
func (l *Listener) SetMetrics(r *metrics.Registry) { l.Connection.SetMetrics(r) }
func (c *Client) SetMetrics(r *metrics.Registry)   { c.Connection.SetMetrics(r) }

// Event, EventKind, and ReplyHandler are re-exported verbatim: ipc adds no
// behavior to them, only a shorter import path for callers who otherwise
// need nothing else from package conn.
type (
	Event        = conn.Event
	EventKind    = conn.EventKind
	EventHandler = conn.EventHandler
	ReplyHandler = conn.ReplyHandler
)

const (
	EventNewPeer = conn.EventNewPeer
	EventMessage = conn.EventMessage
	EventInvalid = conn.EventInvalid
)

// SequenceKey is the well-known correlation-id dictionary key (spec.md §6).
const SequenceKey = conn.SequenceKey
