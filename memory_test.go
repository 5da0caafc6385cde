package spimi

import "testing"

// ═══════════════════════════════════════════════════════════════════════════════
// MEMORY PRESSURE MONITOR
// ═══════════════════════════════════════════════════════════════════════════════

func TestMonitor_Trigger_AboveThreshold(t *testing.T) {
	m := &Monitor{Source: func() float64 { return 0.9 }, Threshold: 0.8}
	if !m.Trigger() {
		t.Error("Trigger() = false, want true when pressure exceeds threshold")
	}
}

func TestMonitor_Trigger_BelowThreshold(t *testing.T) {
	m := &Monitor{Source: func() float64 { return 0.1 }, Threshold: 0.8}
	if m.Trigger() {
		t.Error("Trigger() = true, want false when pressure is below threshold")
	}
}

func TestMonitor_Trigger_NilMonitorNeverTriggers(t *testing.T) {
	var m *Monitor
	if m.Trigger() {
		t.Error("Trigger() on a nil *Monitor = true, want false")
	}
}

func TestMonitor_Trigger_NilSourceNeverTriggers(t *testing.T) {
	m := &Monitor{Threshold: 0}
	if m.Trigger() {
		t.Error("Trigger() with a nil Source = true, want false")
	}
}

func TestNewMonitor_DefaultThreshold(t *testing.T) {
	m := NewMonitor(0)
	if m.Threshold != DefaultPressureThreshold {
		t.Errorf("NewMonitor(0).Threshold = %v, want %v", m.Threshold, DefaultPressureThreshold)
	}
}

func TestNewMonitor_ExplicitThreshold(t *testing.T) {
	m := NewMonitor(0.5)
	if m.Threshold != 0.5 {
		t.Errorf("NewMonitor(0.5).Threshold = %v, want 0.5", m.Threshold)
	}
}

func TestRuntimePressure_NoLimitConfiguredReturnsZero(t *testing.T) {
	// In the default test environment no soft memory limit is configured,
	// so the probe must fall back to 0 rather than divide by an unset limit.
	if p := RuntimePressure(); p != 0 {
		t.Errorf("RuntimePressure() = %v, want 0 with no soft memory limit configured", p)
	}
}
