package tui

import (
	"time"

	"github.com/agbru/fibseq/internal/metrics"
	"github.com/agbru/fibseq/internal/orchestration"
)

// ProgressMsg carries one task event and the run progress after it.
type ProgressMsg struct {
	Event      orchestration.TaskEvent
	Progress   orchestration.AggregatedProgress
	Generation uint64
}

// ProgressDoneMsg is sent when the event channel has been closed.
type ProgressDoneMsg struct {
	Generation uint64
}

// RunCompleteMsg is sent when RunAll returns.
type RunCompleteMsg struct {
	Outcomes   []orchestration.Outcome
	Err        error
	Elapsed    time.Duration
	ExitCode   int
	Generation uint64
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg carries a runtime memory snapshot.
type MemStatsMsg metrics.MemorySnapshot

// SysStatsMsg carries host-wide CPU and memory usage.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// ContextCancelledMsg is sent when the run context ends.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
