package ipc_test

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lemon4ex/ipc/ipc"
	"github.com/lemon4ex/ipc/metrics"
	"github.com/lemon4ex/ipc/transport"
)

func unixEndpoint() transport.Endpoint {
	return transport.UnixEndpoint{Path: filepath.Join(GinkgoT().TempDir(), "sock")}
}

var _ = Describe("Listen and Dial", func() {
	It("counts sent and received frames on the wired metrics.Registry", func() {
		reg := metrics.NewRegistry(prometheus.NewRegistry())
		ep := unixEndpoint()

		listener, err := ipc.Listen(ep, nil)
		Expect(err).NotTo(HaveOccurred())
		listener.SetMetrics(reg)

		peerReady := make(chan struct{})
		listener.SetEventHandler(func(e ipc.Event) {
			if e.Kind != ipc.EventNewPeer {
				return
			}
			peer := e.Peer
			peer.SetEventHandler(func(pe ipc.Event) {
				if pe.Kind != ipc.EventMessage {
					return
				}
				d := ipc.WrapDictionary(pe.Message.Retain())
				defer d.Release()
				reply := d.CreateReply()
				reply.SetBool("ok", true)
				Expect(peer.Send(reply.Node())).To(Succeed())
				reply.Release()
			})
			close(peerReady)
		})
		Expect(listener.Resume()).To(Succeed())
		defer listener.Cancel()

		client, err := ipc.Dial(ep, nil)
		Expect(err).NotTo(HaveOccurred())
		client.SetMetrics(reg)
		Expect(client.Resume()).To(Succeed())
		defer client.Cancel()

		Eventually(peerReady, time.Second).Should(BeClosed())

		d := ipc.NewDictionary()
		d.SetInt64("n", 7)
		Expect(client.Send(d.Node())).To(Succeed())
		d.Release()

		Eventually(func() float64 { return testutil.ToFloat64(reg.FramesSent) }, time.Second).Should(BeNumerically(">=", 1))
		Eventually(func() float64 { return testutil.ToFloat64(reg.FramesRecv) }, time.Second).Should(BeNumerically(">=", 1))
	})
})
