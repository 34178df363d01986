// Package idgen mints short, human-readable identifiers used only in logs
// and diagnostics -- connection and peer names, never the wire correlation
// id (which is always the connection's atomic 64-bit counter). Grounded on
// the teacher's cmn/cos/uuid.go (GenUUID/GenTie).
package idgen

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

var (
	once sync.Once
	sid  *shortid.Shortid
	tie  uint32
)

func lazyInit() {
	once.Do(func() {
		s, err := shortid.New(1, shortid.DefaultABC, 1)
		if err != nil {
			// shortid.New only fails on a malformed alphabet; the default
			// alphabet can't trigger that, but fall back to a fixed
			// generator rather than leave sid nil.
			s = shortid.MustNew(1, shortid.DefaultABC, 0)
		}
		sid = s
	})
}

// New returns a short opaque identifier, e.g. for a connection's debug
// name. shortid's own body already carries a worker/tick component, but
// this mints many identifiers per process tick (one per connection and
// accepted peer), so the body is suffixed with Tie's output, the same way
// cos.GenUUID calls cos.GenTie to disambiguate ids minted in one tick.
func New() string {
	lazyInit()
	base := sid.MustGenerate()
	return base + "-" + strconv.FormatUint(Tie(base), 16)
}

// Tie breaks ties between identifiers minted in the same tick, mirroring
// cos.GenTie's use of a process-wide counter folded through xxhash.
func Tie(seed string) uint64 {
	n := atomic.AddUint32(&tie, 1)
	return xxhash.Checksum64S([]byte(seed), uint64(n))
}
