package conn_test

import (
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/lemon4ex/ipc/conn"
	"github.com/lemon4ex/ipc/transport"
	"github.com/lemon4ex/ipc/value"
)

func unixEndpoint() transport.Endpoint {
	return transport.UnixEndpoint{Path: filepath.Join(GinkgoT().TempDir(), "sock")}
}

// dial brings up a listener and one connected client. setupListener, if
// non-nil, runs before the listener is resumed so its event handler is in
// place before the first accept can possibly land.
func dial(setupListener func(*conn.Connection)) (tr transport.Transport, listener, client *conn.Connection) {
	tr = transport.NewStreamTransport()
	ep := unixEndpoint()

	listener, err := conn.CreateListener(tr, ep, nil)
	Expect(err).NotTo(HaveOccurred())
	if setupListener != nil {
		setupListener(listener)
	}
	Expect(listener.Resume()).To(Succeed())

	client, err = conn.CreateClient(tr, ep, nil)
	Expect(err).NotTo(HaveOccurred())
	Expect(client.Resume()).To(Succeed())

	return tr, listener, client
}

var _ = Describe("Connection", func() {
	It("delivers a client send to the listener's event handler with an equal dictionary", func() {
		events := make(chan conn.Event, 4)
		_, listener, client := dial(func(l *conn.Connection) {
			l.SetEventHandler(func(e conn.Event) { events <- e })
		})
		defer listener.Cancel()
		defer client.Cancel()

		Eventually(events, time.Second).Should(Receive(HaveField("Kind", conn.EventNewPeer)))

		d := value.DictionaryCreate([]string{"n"}, []*value.Node{value.Int64Create(42)})
		Expect(client.Send(d)).To(Succeed())
		d.Release()

		var msgEvent conn.Event
		Eventually(events, time.Second).Should(Receive(&msgEvent))
		Expect(msgEvent.Kind).To(Equal(conn.EventMessage))
		Expect(msgEvent.Message.DictionaryGetValue("n").Int64Value()).To(Equal(int64(42)))
		msgEvent.Message.Release()
	})

	It("runs an echo server and resolves SendWithReply exactly once with the reply", func() {
		peerReady := make(chan struct{})
		_, listener, client := dial(func(l *conn.Connection) {
			l.SetEventHandler(func(e conn.Event) {
				if e.Kind != conn.EventNewPeer {
					return
				}
				peer := e.Peer
				peer.SetEventHandler(func(pe conn.Event) {
					if pe.Kind != conn.EventMessage {
						return
					}
					n := pe.Message.DictionaryGetValue("n")
					reply := value.DictionaryCreate(
						[]string{"ok", "n"},
						[]*value.Node{value.BoolCreate(true), value.Int64Create(n.Int64Value())},
					)
					seq := value.Uint64Create(pe.ID)
					reply.DictionarySetValue(conn.SequenceKey, seq)
					seq.Release()
					Expect(peer.Send(reply)).To(Succeed())
					reply.Release()
				})
				close(peerReady)
			})
		})
		defer listener.Cancel()
		defer client.Cancel()

		Eventually(peerReady, time.Second).Should(BeClosed())

		req := value.DictionaryCreate([]string{"n"}, []*value.Node{value.Int64Create(42)})
		replyCh := make(chan *value.Node, 1)
		Expect(client.SendWithReply(req, nil, func(result *value.Node) {
			replyCh <- result.Retain()
		})).To(Succeed())
		req.Release()

		var reply *value.Node
		Eventually(replyCh, time.Second).Should(Receive(&reply))
		Expect(reply.DictionaryGetValue("ok").BoolValue()).To(BeTrue())
		Expect(reply.DictionaryGetValue("n").Int64Value()).To(Equal(int64(42)))
		reply.Release()
	})

	It("resolves every pending call with CONNECTION_INVALID when the peer closes", func() {
		newPeer := make(chan *conn.Connection, 1)
		_, _, client := dial(func(l *conn.Connection) {
			l.SetEventHandler(func(e conn.Event) {
				if e.Kind == conn.EventNewPeer {
					newPeer <- e.Peer
				}
			})
		})
		defer client.Cancel()

		var peer *conn.Connection
		Eventually(newPeer, time.Second).Should(Receive(&peer))

		invalid := make(chan struct{}, 1)
		client.SetEventHandler(func(e conn.Event) {
			if e.Kind == conn.EventInvalid {
				close(invalid)
			}
		})

		results := make(chan *value.Node, 2)
		for _, id := range []int64{5, 6} {
			msg := value.DictionaryCreate([]string{"id"}, []*value.Node{value.Int64Create(id)})
			Expect(client.SendWithReply(msg, nil, func(result *value.Node) {
				results <- result.Retain()
			})).To(Succeed())
			msg.Release()
		}

		peer.Cancel()

		var r1, r2 *value.Node
		Eventually(results, time.Second).Should(Receive(&r1))
		Eventually(results, time.Second).Should(Receive(&r2))
		for _, r := range []*value.Node{r1, r2} {
			Expect(r.Type()).To(Equal(value.Error))
			Expect(r.CauseValue()).To(Equal(value.CauseConnectionInvalid))
			r.Release()
		}
		Eventually(invalid, time.Second).Should(BeClosed())
	})

	It("preserves send ordering across a sequence", func() {
		var mu sync.Mutex
		var seen []int64
		done := make(chan struct{})
		peerReady := make(chan struct{})

		_, listener, client := dial(func(l *conn.Connection) {
			l.SetEventHandler(func(e conn.Event) {
				if e.Kind != conn.EventNewPeer {
					return
				}
				e.Peer.SetEventHandler(func(pe conn.Event) {
					if pe.Kind != conn.EventMessage {
						return
					}
					mu.Lock()
					seen = append(seen, pe.Message.DictionaryGetValue("i").Int64Value())
					if len(seen) == 100 {
						close(done)
					}
					mu.Unlock()
				})
				close(peerReady)
			})
		})
		defer listener.Cancel()
		defer client.Cancel()

		Eventually(peerReady, time.Second).Should(BeClosed())

		for i := int64(0); i < 100; i++ {
			msg := value.DictionaryCreate([]string{"i"}, []*value.Node{value.Int64Create(i)})
			Expect(client.Send(msg)).To(Succeed())
			msg.Release()
		}

		Eventually(done, 2*time.Second).Should(BeClosed())
		mu.Lock()
		defer mu.Unlock()
		Expect(seen).To(HaveLen(100))
		for i, v := range seen {
			Expect(v).To(Equal(int64(i)))
		}
	})

	It("rejects a second Resume with ErrAlreadyResumed", func() {
		_, listener, client := dial(nil)
		defer listener.Cancel()
		defer client.Cancel()

		Expect(client.Resume()).To(MatchError(conn.ErrAlreadyResumed))
		Expect(listener.Resume()).To(MatchError(conn.ErrAlreadyResumed))
	})

	It("rejects Send and SendWithReply after Cancel with ErrConnectionCancelled", func() {
		_, listener, client := dial(nil)
		defer listener.Cancel()

		client.Cancel()

		msg := value.DictionaryCreate([]string{"n"}, []*value.Node{value.Int64Create(1)})
		defer msg.Release()

		Expect(client.Send(msg)).To(MatchError(conn.ErrConnectionCancelled))
		Expect(client.SendWithReply(msg, nil, func(*value.Node) {})).To(MatchError(conn.ErrConnectionCancelled))
	})
})
