// Package conn implements spec.md §4.D's connection state machine: a
// bidirectional listener/peer abstraction over a transport.Port, with
// suspend/resume gating, request/reply correlation, and the teardown
// contract that guarantees no pending-call handler is ever left
// un-invoked.
//
// Grounded on original_source/ipc/ipc_connection.c and
// original_source/xpc_lite/xpc_lite_connection.c for the state-machine
// shape, and on the teacher's ais/prxnotif.go for the pending-call
// table discipline.
package conn

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lemon4ex/ipc/internal/debug"
	"github.com/lemon4ex/ipc/internal/idgen"
	"github.com/lemon4ex/ipc/internal/nlog"
	"github.com/lemon4ex/ipc/internal/squeue"
	"github.com/lemon4ex/ipc/metrics"
	"github.com/lemon4ex/ipc/transport"
	"github.com/lemon4ex/ipc/value"
	"github.com/lemon4ex/ipc/wire"
)

// Queue is the serial-queue type every connection operation dispatches
// onto: internal/squeue.Queue, reused verbatim rather than wrapped, since
// conn has no additional requirements of it.
type Queue = squeue.Queue

// SequenceKey is the well-known dictionary key spec.md §6 defines for a
// sender-chosen correlation id. LegacySequenceKey is recognized on read
// for compatibility with payloads minted by the original implementation,
// but never written.
const (
	SequenceKey       = "IPC sequence number"
	LegacySequenceKey = "XPC sequence number"
)

type kind int

const (
	kindClient kind = iota
	kindListener
	kindPeer
)

// Connection is spec.md §4.D's connection entity: a local transport port,
// optional parent (listener, for an accepted peer), event handler, the
// three serial queues (send, recv, target), the pending-call table, and
// (listener-only) the live peer list.
type Connection struct {
	kind kind
	tr   transport.Transport
	port transport.Port

	// name is a short opaque identifier minted by internal/idgen purely
	// for log lines -- never the wire correlation id, which always comes
	// from idCounter.
	name string

	mu           sync.Mutex
	parent       *Connection
	peers        []*Connection
	eventHandler EventHandler
	targetQueue  *Queue
	ctx          any

	resumed   atomic.Bool
	cancelled atomic.Bool

	sendQ   *Queue
	recvQ   *Queue
	recvSrc *transport.Source

	idCounter atomic.Uint64
	pending   *pendingTable

	metrics *metrics.Registry
}

// ErrAlreadyResumed is returned by a second Resume on the same connection,
// per spec.md §9's open question: the original leaves this undefined, and
// this implementation makes it an explicit, assertable error rather than
// silently re-binding the source or panicking.
var ErrAlreadyResumed = errors.New("conn: already resumed")

// ErrConnectionCancelled is returned by Send/SendWithReply/SendWithReplySync
// once Cancel has been called on the connection, per spec.md §9's open
// question on sends after cancel: this implementation errors them
// synchronously instead of silently dropping or racing the teardown path.
var ErrConnectionCancelled = errors.New("conn: connection cancelled")

// Name returns the connection's short debug identifier, for log
// correlation only.
func (c *Connection) Name() string { return c.name }

// SetMetrics wires a metrics.Registry into this connection; frames sent/
// received, decode failures, pending-call count, and (for a listener)
// accepted peers are all reported against it. nil disables reporting. A
// listener propagates its registry to every peer it accepts.
func (c *Connection) SetMetrics(r *metrics.Registry) {
	c.mu.Lock()
	c.metrics = r
	c.mu.Unlock()
}

func (c *Connection) metricsReg() *metrics.Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

var (
	mainQueueOnce sync.Once
	mainQ         *Queue
)

// mainQueue is the default target queue spec.md §4.D's create() falls
// back to when the caller passes none.
func mainQueue() *Queue {
	mainQueueOnce.Do(func() { mainQ = squeue.New("main") })
	return mainQ
}

func newConnection(k kind, tr transport.Transport, targetQueue *Queue) *Connection {
	if targetQueue == nil {
		targetQueue = mainQueue()
	}
	c := &Connection{
		kind:        k,
		tr:          tr,
		name:        idgen.New(),
		targetQueue: targetQueue,
		sendQ:       squeue.New("send"),
		recvQ:       squeue.New("recv"),
		pending:     newPendingTable(),
	}
	c.recvQ.Suspend() // create() leaves the receive queue suspended
	return c
}

// Create allocates a bare connection with no transport port bound yet,
// matching spec.md's create(target_queue). Most callers want
// CreateListener or CreateClient instead.
func Create(targetQueue *Queue) *Connection {
	return newConnection(kindClient, nil, targetQueue)
}

// CreateListener allocates a connection, calls transport.Listen, and
// marks it a listener.
func CreateListener(tr transport.Transport, endpoint transport.Endpoint, targetQueue *Queue) (*Connection, error) {
	c := newConnection(kindListener, tr, targetQueue)
	port, err := tr.Listen(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "conn: create listener")
	}
	c.port = port
	return c, nil
}

// CreateClient allocates a connection and calls transport.Lookup to dial
// out to endpoint.
func CreateClient(tr transport.Transport, endpoint transport.Endpoint, targetQueue *Queue) (*Connection, error) {
	c := newConnection(kindClient, tr, targetQueue)
	port, err := tr.Lookup(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "conn: create client")
	}
	c.port = port
	return c, nil
}

// SetEventHandler installs the callback invoked on the target queue for a
// new peer (listener), an unsolicited message (peer), or invalidation.
func (c *Connection) SetEventHandler(h EventHandler) {
	c.mu.Lock()
	c.eventHandler = h
	c.mu.Unlock()
}

func (c *Connection) handler() EventHandler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eventHandler
}

// SetTargetQueue replaces the queue event and reply handlers run on.
func (c *Connection) SetTargetQueue(q *Queue) {
	c.mu.Lock()
	c.targetQueue = q
	c.mu.Unlock()
}

// SetContext stores an opaque caller-owned pointer on the connection.
func (c *Connection) SetContext(ctx any) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
}

// GetContext returns whatever was last passed to SetContext, or nil.
func (c *Connection) GetContext() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func (c *Connection) dispatchTarget(fn func()) {
	c.mu.Lock()
	q := c.targetQueue
	c.mu.Unlock()
	q.Async(fn)
}

// Resume binds the transport source (server source for a listener, client
// source for a client root; an accepted peer's source is already bound by
// the accept path) and resumes both the source and the receive queue. A
// second Resume on an already-resumed connection returns ErrAlreadyResumed
// rather than silently re-binding the source or panicking, per spec.md
// §9's Open Question.
func (c *Connection) Resume() error {
	if !c.resumed.CompareAndSwap(false, true) {
		return ErrAlreadyResumed
	}

	c.mu.Lock()
	if c.recvSrc == nil {
		switch c.kind {
		case kindListener:
			c.recvSrc = c.tr.CreateServerSource(c.port, c.recvQ, c.handleAccept)
		case kindClient:
			c.recvSrc = c.tr.CreateClientSource(c.port, c.recvQ, c.handleReadable, c.handleSourceCancelled)
		case kindPeer:
			// bound by handleAccept before Resume is ever called on a peer.
		}
	}
	src := c.recvSrc
	c.mu.Unlock()

	if src != nil {
		src.Resume()
	}
	c.recvQ.Resume()
	return nil
}

// Suspend pauses the receive source; the receive queue itself keeps
// draining whatever has already been dispatched to it.
func (c *Connection) Suspend() {
	c.mu.Lock()
	src := c.recvSrc
	c.mu.Unlock()
	if src != nil {
		src.Suspend()
	}
}

// Cancel cancels the receive source. The source's cancel handler performs
// the socket shutdown/close and invokes destroy_peer exactly once.
// Cancelling a listener also cancels every live peer concurrently,
// fanned out with an errgroup so a stuck peer teardown doesn't delay the
// others.
func (c *Connection) Cancel() {
	c.cancelled.Store(true)

	c.mu.Lock()
	src := c.recvSrc
	isListener := c.kind == kindListener
	peers := append([]*Connection(nil), c.peers...)
	c.mu.Unlock()

	if isListener && len(peers) > 0 {
		var g errgroup.Group
		for _, p := range peers {
			p := p
			g.Go(func() error {
				p.Cancel()
				return nil
			})
		}
		_ = g.Wait()
	}

	if src != nil {
		src.Cancel()
	}
}

func (c *Connection) nextID() uint64 { return c.idCounter.Add(1) }

func correlationIDFromValue(v *value.Node) uint64 {
	switch v.Type() {
	case value.Uint64:
		return v.Uint64Value()
	case value.Int64:
		return uint64(v.Int64Value())
	}
	return 0
}

// correlationIDFor reads the well-known sequence key out of msg if
// present and non-zero; otherwise it mints the next id from the
// connection's atomic counter.
func (c *Connection) correlationIDFor(msg *value.Node) uint64 {
	if v := msg.DictionaryGetValue(SequenceKey); v != nil {
		if id := correlationIDFromValue(v); id != 0 {
			return id
		}
	}
	if v := msg.DictionaryGetValue(LegacySequenceKey); v != nil {
		if id := correlationIDFromValue(v); id != 0 {
			return id
		}
	}
	return c.nextID()
}

func (c *Connection) writeFrame(msg *value.Node, id uint64) error {
	buf, err := wire.Encode(msg, id)
	if err != nil {
		return errors.Wrap(err, "conn: encode")
	}
	if err := c.tr.Send(c.port, buf); err != nil {
		return errors.Wrap(err, "conn: write")
	}
	if r := c.metricsReg(); r != nil {
		r.FramesSent.Inc()
	}
	return nil
}

// Send transmits msg, a dictionary, without expecting a reply. Encode or
// write failure synthesizes CONNECTION_INVALID and dispatches it through
// the same id-based routing a real reply would take. Send after Cancel
// returns ErrConnectionCancelled synchronously rather than racing the
// teardown path, per spec.md §9's Open Question.
func (c *Connection) Send(msg *value.Node) error {
	debug.Assert(msg.Type() == value.Dictionary, "conn: Send requires a dictionary")
	if c.cancelled.Load() {
		return ErrConnectionCancelled
	}
	id := c.correlationIDFor(msg)
	msg = msg.Retain()
	c.sendQ.Async(func() {
		defer msg.Release()
		if err := c.writeFrame(msg, id); err != nil {
			nlog.Warningf("conn[%s]: send failed: %v", c.name, err)
			c.failSend(id)
		}
	})
	return nil
}

// SendWithReply transmits msg and resolves handler exactly once, on
// replyQueue (or the target queue if replyQueue is nil), when the
// matching reply arrives or the connection is invalidated first. Send
// after Cancel returns ErrConnectionCancelled synchronously without
// registering a pending call.
func (c *Connection) SendWithReply(msg *value.Node, replyQueue *Queue, handler ReplyHandler) error {
	debug.Assert(msg.Type() == value.Dictionary, "conn: SendWithReply requires a dictionary")
	if c.cancelled.Load() {
		return ErrConnectionCancelled
	}
	if replyQueue == nil {
		c.mu.Lock()
		replyQueue = c.targetQueue
		c.mu.Unlock()
	}
	id := c.nextID()
	c.pending.add(&pendingCall{id: id, handler: handler, queue: replyQueue})
	if r := c.metricsReg(); r != nil {
		r.PendingCalls.Inc()
	}

	msg = msg.Retain()
	c.sendQ.Async(func() {
		defer msg.Release()
		if err := c.writeFrame(msg, id); err != nil {
			nlog.Warningf("conn[%s]: send failed: %v", c.name, err)
			c.failSend(id)
		}
	})
	return nil
}

// SendWithReplySync blocks until the reply to msg arrives (or the
// connection is invalidated), and returns the resulting value.Node. The
// caller owns the returned node and must Release it. It returns
// ErrConnectionCancelled immediately, with a nil node, if the connection
// was already cancelled.
func (c *Connection) SendWithReplySync(msg *value.Node) (*value.Node, error) {
	resultCh := make(chan *value.Node, 1)
	if err := c.SendWithReply(msg, nil, func(result *value.Node) {
		resultCh <- result.Retain()
	}); err != nil {
		return nil, err
	}
	return <-resultCh, nil
}

// SendBarrier submits fn to the send queue synchronously, guaranteeing
// every previously enqueued send has drained before fn runs and before
// SendBarrier returns.
func (c *Connection) SendBarrier(fn func()) {
	c.sendQ.Sync(fn)
}

func (c *Connection) failSend(id uint64) {
	errNode := value.ErrorCreate(value.CauseConnectionInvalid)
	c.resolveReply(id, errNode)
	errNode.Release()
}

// resolveReply routes a decoded frame (or a synthesized failure) by id:
// a matching pending call takes priority, otherwise it falls through to
// the connection's event handler as an unsolicited message.
func (c *Connection) resolveReply(id uint64, result *value.Node) {
	if call := c.pending.takeByID(id); call != nil {
		if r := c.metricsReg(); r != nil {
			r.PendingCalls.Dec()
		}
		n := result.Retain()
		q, h := call.queue, call.handler
		q.Async(func() {
			h(n)
			n.Release()
		})
		return
	}
	h := c.handler()
	if h == nil {
		return
	}
	n := result.Retain()
	c.dispatchTarget(func() {
		h(Event{Kind: EventMessage, Message: n, ID: id})
		n.Release()
	})
}

// handleReadable is the receive loop (connection_recv_message) body: it
// runs under the recv queue once per frame. A decode failure silently
// drops the frame, per spec.md §4.C/§4.D.
func (c *Connection) handleReadable(frame []byte) {
	msg, id, err := wire.Decode(frame)
	if err != nil {
		nlog.Warningf("conn[%s]: dropping malformed frame: %v", c.name, err)
		if r := c.metricsReg(); r != nil {
			r.DecodeErrors.Inc()
		}
		return
	}
	if r := c.metricsReg(); r != nil {
		r.FramesRecv.Inc()
	}
	c.resolveReply(id, msg)
	msg.Release()
}

// handleAccept is the server source's handler: accept has already
// happened (transport.Source did it), so this allocates the peer
// connection, links it into the listener's peer list, resumes its
// already-bound client source, and dispatches the new-peer event.
func (c *Connection) handleAccept(peerPort transport.Port) {
	peer := newConnection(kindPeer, c.tr, c.targetQueue)
	peer.port = peerPort
	peer.parent = c
	peer.eventHandler = c.handler()
	peer.metrics = c.metricsReg()
	peer.recvSrc = c.tr.CreateClientSource(peerPort, peer.recvQ, peer.handleReadable, peer.handleSourceCancelled)

	c.mu.Lock()
	c.peers = append(c.peers, peer)
	c.mu.Unlock()

	if err := peer.Resume(); err != nil {
		nlog.Warningf("conn[%s]: resuming accepted peer %s: %v", c.name, peer.name, err)
	}

	if r := c.metricsReg(); r != nil {
		r.PeersAccepted.Inc()
	}

	if h := c.handler(); h != nil {
		c.dispatchTarget(func() { h(Event{Kind: EventNewPeer, Peer: peer}) })
	}
}

func (c *Connection) removePeer(peer *Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.peers {
		if p == peer {
			c.peers = append(c.peers[:i], c.peers[i+1:]...)
			return
		}
	}
}

// handleSourceCancelled is destroy_peer: it delivers CONNECTION_INVALID
// to the parent's handler (or this connection's own handler if it has no
// parent) exactly once, unlinks from the parent's peer list, and resolves
// every still-outstanding pending call with the same error -- the
// "no pending-call handler is ever left un-invoked" contract.
func (c *Connection) handleSourceCancelled() {
	target := c
	if c.parent != nil {
		target = c.parent
	}

	errNode := value.ErrorCreate(value.CauseConnectionInvalid)

	if h := target.handler(); h != nil {
		n := errNode.Retain()
		target.dispatchTarget(func() {
			h(Event{Kind: EventInvalid, Message: n})
			n.Release()
		})
	}

	if c.parent != nil {
		c.parent.removePeer(c)
	}

	drained := c.pending.drainAll()
	if r := c.metricsReg(); r != nil && len(drained) > 0 {
		r.PendingCalls.Sub(float64(len(drained)))
	}
	for _, call := range drained {
		n := errNode.Retain()
		q, h := call.queue, call.handler
		q.Async(func() {
			h(n)
			n.Release()
		})
	}

	errNode.Release()
	if c.tr != nil {
		_ = c.tr.Release(c.port)
	}
}

// IsListener reports whether this connection was created with
// CreateListener.
func (c *Connection) IsListener() bool { return c.kind == kindListener }
