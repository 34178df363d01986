package conn

import "github.com/lemon4ex/ipc/value"

// EventKind discriminates the three cases spec.md §4.D's event handler
// covers with one callback: a new accepted peer, an unsolicited message,
// or connection invalidation.
type EventKind int

const (
	// EventNewPeer fires on a listener's target queue once per accepted
	// connection. Peer is non-nil, Message is nil.
	EventNewPeer EventKind = iota
	// EventMessage fires when a peer receives a frame that doesn't match
	// any pending call. Message is the decoded dictionary.
	EventMessage
	// EventInvalid fires exactly once when a connection is torn down.
	// Message carries an Error-tag value.Node with cause
	// CONNECTION_INVALID.
	EventInvalid
)

// Event is the single argument shape spec.md §4.D's event handler takes,
// since Go doesn't overload by payload type the way the handler block in
// the original does.
type Event struct {
	Kind    EventKind
	Peer    *Connection
	Message *value.Node
	// ID is the frame's correlation id, set for EventMessage so a handler
	// building a reply can echo it back via SequenceKey.
	ID uint64
}

// EventHandler is the connection-level callback set via SetEventHandler.
type EventHandler func(Event)

// ReplyHandler resolves a pending call started by SendWithReply. result is
// either the decoded reply dictionary or an Error-tag value.Node carrying
// CONNECTION_INVALID on teardown.
type ReplyHandler func(result *value.Node)
