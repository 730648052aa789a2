//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/time/rate"

	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner and the
	// minimum interval between two suffix updates.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner followed by a textual progress bar, the
// completed task count and an ETA until the event channel is closed.
// Suffix updates are throttled to one per ProgressRefreshRate; the final
// state is always rendered before the spinner stops.
//
// Parameters:
//   - wg: Signaled when the display has stopped.
//   - events: Task events from the executor.
//   - total: The number of tasks in the run.
//   - out: The writer the spinner renders to.
func DisplayProgress(wg *sync.WaitGroup, events <-chan orchestration.TaskEvent, total int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(total)
	if agg == nil {
		orchestration.DrainChannel(events)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(orchestration.AggregatedProgress{Total: total}))
	s.Start()
	defer s.Stop()

	throttle := rate.Sometimes{Interval: ProgressRefreshRate}
	var last orchestration.AggregatedProgress
	for ev := range events {
		last = agg.Update(ev)
		throttle.Do(func() { s.UpdateSuffix(progressSuffix(last)) })
	}
	s.UpdateSuffix(progressSuffix(last))
}

func progressSuffix(p orchestration.AggregatedProgress) string {
	return fmt.Sprintf(" %s %d/%d tasks, %d running",
		format.FormatProgressBarWithETA(p.Fraction, p.ETA, ProgressBarWidth),
		p.Completed, p.Total, p.Running)
}
