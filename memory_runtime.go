package spimi

import "runtime/debug"

// debugSoftMemoryLimit reads the process's configured soft memory limit
// without altering it (SetMemoryLimit with a negative input is a pure read).
func debugSoftMemoryLimit() int64 {
	return debug.SetMemoryLimit(-1)
}
