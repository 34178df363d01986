//go:build debug

package debug

import (
	"fmt"
	"sync"
	"sync/atomic"
)

func ON() bool { return true }

func Assert(cond bool, args ...any) {
	if !cond {
		panic(fmt.Sprint("assertion failed: ", fmt.Sprint(args...)))
	}
}

func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		panic(fmt.Sprintf("assertion failed: unexpected error: %v", err))
	}
}

func AssertFunc(fn func() bool, args ...any) {
	Assert(fn(), args...)
}

// AssertMutexLocked and AssertRWMutexLocked are best-effort: Go's sync
// primitives don't expose lock-holder state, so these only catch the case
// where the lock is provably free (TryLock succeeds, meaning nobody held
// it).
func AssertMutexLocked(mu *sync.Mutex) {
	if mu.TryLock() {
		mu.Unlock()
		panic("assertion failed: mutex not locked")
	}
}

func AssertRWMutexLocked(mu *sync.RWMutex) {
	if mu.TryLock() {
		mu.Unlock()
		panic("assertion failed: rwmutex not locked")
	}
}

var liveNodes int64

func TrackRetain()  { atomic.AddInt64(&liveNodes, 1) }
func TrackRelease() { atomic.AddInt64(&liveNodes, -1) }
func LiveNodeCount() int { return int(atomic.LoadInt64(&liveNodes)) }
