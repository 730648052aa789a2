package metrics

import "runtime"

// MemorySnapshot holds a point-in-time reading of the Go runtime.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by the application
	Sys          uint64 // total bytes obtained from the OS
	NumGC        uint32 // completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	Goroutines   int    // live goroutines, workers included
}

// HeapAllocMiB returns HeapAlloc in mebibytes.
func (s MemorySnapshot) HeapAllocMiB() float64 {
	return float64(s.HeapAlloc) / (1 << 20)
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current runtime statistics. It briefly stops the world.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		Goroutines:   runtime.NumGoroutine(),
	}
}
