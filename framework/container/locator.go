package container

import "sync/atomic"

// ── Default container ─────────────────────────────────────────────────────────

var fallback atomic.Pointer[Container]

// SetDefault installs c as the process-wide container for call sites that
// cannot have one passed in, and returns a func restoring the previous one.
// Prefer passing the container explicitly.
//
//	restore := container.SetDefault(testContainer)
//	defer restore()
func SetDefault(c *Container) (restore func()) {
	prev := fallback.Swap(c)
	return func() { fallback.Store(prev) }
}

// Default returns the container installed with SetDefault, or nil.
func Default() *Container { return fallback.Load() }
