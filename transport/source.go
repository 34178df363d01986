package transport

import (
	"sync"
)

// sourceKind distinguishes a listener's accept-readiness source from a
// connected port's read-readiness source; the two fire different callbacks
// but share suspend/resume/cancel machinery.
type sourceKind int

const (
	serverSourceKind sourceKind = iota
	clientSourceKind
)

// Source is a readiness source: a dedicated goroutine blocked in the
// underlying socket call (Accept or Read), whose result is handed to a
// callback dispatched on the owning queue. It implements spec.md §4.C/§5's
// create_server_source / create_client_source and their resume/suspend/
// cancel lifecycle, and is the transport-level half of conn.Connection's
// recv source.
//
// Suspend here pauses the dedicated goroutine before it re-enters the
// blocking call -- distinct from suspending the target Queue, which instead
// lets already-dispatched callbacks keep draining while gating new ones.
// Both gates exist because spec.md's Suspend describes "the receive
// source (not the queue)".
type Source struct {
	kind sourceKind
	port Port
	q    Queue

	onAccept   func(peer Port)
	onReadable func(frame []byte)
	onCancel   func()

	mu        sync.Mutex
	cond      *sync.Cond
	active    bool
	cancelled bool
	started   bool
	cancelOne sync.Once
}

func newServerSource(p Port, q Queue, onAccept func(peer Port)) *Source {
	s := &Source{kind: serverSourceKind, port: p, q: q, onAccept: onAccept}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func newClientSource(p Port, q Queue, onReadable func(frame []byte), onCancel func()) *Source {
	s := &Source{kind: clientSourceKind, port: p, q: q, onReadable: onReadable, onCancel: onCancel}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Resume starts the source's dedicated goroutine on first call, and lets it
// re-enter the blocking call on subsequent calls after a Suspend.
func (s *Source) Resume() {
	s.mu.Lock()
	s.active = true
	first := !s.started
	s.started = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if first {
		switch s.kind {
		case serverSourceKind:
			go s.acceptLoop()
		case clientSourceKind:
			go s.readLoop()
		}
	}
}

// Suspend pauses the source before its next blocking call. A call already
// blocked in Accept/Read runs to completion; the result is dispatched
// normally, and the goroutine then waits for Resume before blocking again.
func (s *Source) Suspend() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Cancel permanently stops the source and closes its port. onCancel fires
// exactly once, dispatched on the owning queue.
func (s *Source) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.active = true // wake a suspended goroutine so it observes cancellation
	s.cond.Broadcast()
	s.mu.Unlock()

	_ = streamTransport{}.Release(s.port)
}

func (s *Source) waitWhileSuspended() (cancelled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.active && !s.cancelled {
		s.cond.Wait()
	}
	return s.cancelled
}

func (s *Source) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *Source) fireCancelOnce() {
	s.cancelOne.Do(func() {
		if s.onCancel != nil {
			cb := s.onCancel
			s.q.Async(cb)
		}
	})
}

func (s *Source) acceptLoop() {
	for {
		if s.waitWhileSuspended() {
			return
		}
		if s.port.ln == nil {
			return
		}
		c, err := s.port.ln.Accept()
		if err != nil {
			if s.isCancelled() {
				return
			}
			continue
		}
		peer := Port{conn: c, id: nextPortID()}
		onAccept := s.onAccept
		s.q.Async(func() { onAccept(peer) })
	}
}

func (s *Source) readLoop() {
	st := streamTransport{}
	for {
		if s.waitWhileSuspended() {
			s.fireCancelOnce()
			return
		}
		buf := make([]byte, RecvBufSize)
		n, err := st.Recv(s.port, buf)
		if s.isCancelled() {
			s.fireCancelOnce()
			return
		}
		if err != nil || n == 0 {
			s.fireCancelOnce()
			return
		}
		frame := buf[:n]
		onReadable := s.onReadable
		s.q.Async(func() { onReadable(frame) })
	}
}
