package orchestration

import (
	"io"
	"sync"
	"time"
)

// EventKind classifies a task progress event.
type EventKind int

// Progress event kinds, in the order a task emits them.
const (
	EventStarted EventKind = iota
	EventFinished
	EventFailed
)

// String returns a lowercase name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TaskEvent reports a state change of a single task. Events carry no
// semantic weight: dropping one never affects results.
type TaskEvent struct {
	Index   int
	Worker  int
	Kind    EventKind
	Elapsed time.Duration
	Value   uint64
	Err     error
}

// ProgressReporter defines the interface for displaying task progress.
// This interface decouples the orchestration layer from the presentation layer:
// implementations handle the visual representation (line log, spinner,
// progress bar, dashboard) while the executor coordinates the tasks.
type ProgressReporter interface {
	// DisplayProgress consumes events until the channel is closed and then
	// calls wg.Done(). It is started in its own goroutine.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - events: Channel receiving task events from the workers.
	//   - total: The number of tasks in the run.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, events <-chan TaskEvent, total int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, events <-chan TaskEvent, total int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, events <-chan TaskEvent, total int, out io.Writer) {
	f(wg, events, total, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan TaskEvent, _ int, _ io.Writer) {
	defer wg.Done()
	for range events {
		// Drain channel silently
	}
}

// ResultPresenter renders the outcomes of a completed run. Implementations
// must treat outcomes as read-only and keep their index order.
type ResultPresenter interface {
	PresentResults(outcomes []Outcome, out io.Writer)
}

// ResultPresenterFunc adapts a function to ResultPresenter.
type ResultPresenterFunc func(outcomes []Outcome, out io.Writer)

// PresentResults calls the underlying function.
func (f ResultPresenterFunc) PresentResults(outcomes []Outcome, out io.Writer) {
	f(outcomes, out)
}
