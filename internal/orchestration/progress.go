package orchestration

import (
	"time"

	"github.com/agbru/fibseq/internal/format"
)

// ProgressAggregator turns a stream of task events into run-level progress.
// It wraps format.TaskProgress so the CLI reporters and the dashboard share
// one counting and ETA implementation.
type ProgressAggregator struct {
	state   *format.TaskProgress
	running map[int]bool
}

// NewProgressAggregator creates an aggregator for total tasks.
// Returns nil if total <= 0.
func NewProgressAggregator(total int) *ProgressAggregator {
	if total <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:   format.NewTaskProgress(total),
		running: make(map[int]bool),
	}
}

// AggregatedProgress holds the result of processing a single event.
type AggregatedProgress struct {
	// Event is the event that produced this snapshot.
	Event TaskEvent
	// Fraction is the share of tasks that have signaled completion.
	Fraction float64
	// Completed and Failed count finished tasks; Running counts started ones.
	Completed, Failed, Running, Total int
	// ETA is the estimated time remaining.
	ETA time.Duration
}

// Update processes one event and returns the aggregated state.
func (a *ProgressAggregator) Update(ev TaskEvent) AggregatedProgress {
	switch ev.Kind {
	case EventStarted:
		a.running[ev.Index] = true
	case EventFinished, EventFailed:
		if a.running[ev.Index] {
			delete(a.running, ev.Index)
		}
		a.state.Complete(ev.Kind == EventFailed)
	}
	completed, failed, total := a.state.Counts()
	return AggregatedProgress{
		Event:     ev,
		Fraction:  a.state.Fraction(),
		Completed: completed,
		Failed:    failed,
		Running:   len(a.running),
		Total:     total,
		ETA:       a.state.ETA(),
	}
}

// Fraction returns the current completed share without updating.
func (a *ProgressAggregator) Fraction() float64 {
	return a.state.Fraction()
}

// ETA returns the current estimate without updating.
func (a *ProgressAggregator) ETA() time.Duration {
	return a.state.ETA()
}

// DrainChannel reads all events from the channel without processing.
func DrainChannel(events <-chan TaskEvent) {
	for range events {
	}
}
