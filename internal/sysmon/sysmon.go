// Package sysmon samples host-wide CPU and memory usage for the dashboard.
package sysmon

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// SampleTimeout bounds a single Sample call.
const SampleTimeout = 250 * time.Millisecond

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	// MemUsed and MemTotal are in bytes.
	MemUsed  uint64
	MemTotal uint64
}

// SampleContext collects a system-wide CPU and memory snapshot. CPU usage
// is the delta since the previous call, so the first call may report 0.
// Fields whose probe fails are left at zero.
func SampleContext(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = clampPercent(pcts[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		s.MemPercent = clampPercent(vm.UsedPercent)
		s.MemUsed = vm.Used
		s.MemTotal = vm.Total
	}
	return s
}

// Sample is SampleContext bounded by SampleTimeout.
func Sample() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), SampleTimeout)
	defer cancel()
	return SampleContext(ctx)
}

func clampPercent(v float64) float64 {
	return min(max(v, 0), 100)
}
