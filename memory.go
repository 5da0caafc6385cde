// ═══════════════════════════════════════════════════════════════════════════════
// MEMORY MONITOR
// ═══════════════════════════════════════════════════════════════════════════════
// The builder and merger both need to know "are we under memory pressure
// right now?" without depending directly on the OS. That capability is
// modeled as a single function type so tests can inject a scripted pressure
// source instead of fighting the real allocator to force a flush.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"math"
	"runtime"
)

// PressureSource reports current memory pressure as a fraction in [0,1].
// 0 means "no pressure"; a platform that cannot measure pressure should
// always return 0, which disables mid-build flushing entirely (SPEC_FULL.md
// §7: "Memory-monitor unavailable").
type PressureSource func() float64

// DefaultPressureThreshold is used when a Monitor is constructed with a
// threshold of 0 (callers are expected to pass their own; this constant
// documents the spec's default).
const DefaultPressureThreshold = 0.8

// Monitor pairs a PressureSource with the threshold that triggers a flush.
type Monitor struct {
	Source    PressureSource
	Threshold float64
}

// NewMonitor returns a Monitor using RuntimePressure and threshold (0 means
// DefaultPressureThreshold).
func NewMonitor(threshold float64) *Monitor {
	if threshold <= 0 {
		threshold = DefaultPressureThreshold
	}
	return &Monitor{Source: RuntimePressure, Threshold: threshold}
}

// Trigger reports whether current pressure exceeds the configured threshold.
func (m *Monitor) Trigger() bool {
	if m == nil || m.Source == nil {
		return false
	}
	return m.Source() > m.Threshold
}

// RuntimePressure approximates resident memory pressure using the Go
// runtime's own heap statistics against its current soft memory limit, so it
// works without any platform-specific syscalls or third-party dependency.
// When no soft limit has been configured (the common case), it falls back to
// reporting 0 — consistent with SPEC_FULL.md §7's "fall back to never
// triggering mid-build flush" policy for platforms without a usable probe.
func RuntimePressure() float64 {
	limit := debugSoftMemoryLimit()
	if limit <= 0 || limit == math.MaxInt64 {
		return 0
	}
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.HeapAlloc) / float64(limit)
}
