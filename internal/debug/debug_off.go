//go:build !debug

// Package debug provides build-tag gated assertions: a no-op set in release
// builds, live checks under the `debug` build tag.
package debug

import "sync"

func ON() bool { return false }

func Assert(_ bool, _ ...any)            {}
func Assertf(_ bool, _ string, _ ...any) {}
func AssertNoErr(_ error)                {}
func AssertFunc(_ func() bool, _ ...any) {}

func AssertMutexLocked(_ *sync.Mutex)     {}
func AssertRWMutexLocked(_ *sync.RWMutex) {}

// TrackRetain/TrackRelease back the debug-only leak counter mentioned in
// SPEC_FULL.md §10 (grounded on original_source/ipc/ipc_misc.c); no-ops
// outside debug builds.
func TrackRetain()        {}
func TrackRelease()       {}
func LiveNodeCount() int  { return 0 }
