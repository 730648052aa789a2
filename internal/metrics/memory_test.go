package metrics

import "testing"

func TestMemoryCollector_Snapshot(t *testing.T) {
	t.Parallel()

	snap := NewMemoryCollector().Snapshot()

	if snap.HeapAlloc == 0 {
		t.Error("HeapAlloc should be > 0")
	}
	if snap.Sys == 0 {
		t.Error("Sys should be > 0")
	}
	if snap.Goroutines < 1 {
		t.Errorf("Goroutines = %d, want >= 1", snap.Goroutines)
	}
}

func TestMemorySnapshot_HeapAllocMiB(t *testing.T) {
	t.Parallel()

	s := MemorySnapshot{HeapAlloc: 3 << 20}
	if got := s.HeapAllocMiB(); got != 3 {
		t.Errorf("HeapAllocMiB() = %v, want 3", got)
	}
}
