package tui

import (
	"io"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/fibseq/internal/orchestration"
)

// programRef lets reporters created before tea.NewProgram reach the running
// program. bubbletea copies the model on every Update, so the model holds a
// pointer to it.
type programRef struct {
	program atomic.Pointer[tea.Program]
}

// SetProgram publishes p to the reporters.
func (r *programRef) SetProgram(p *tea.Program) {
	r.program.Store(p)
}

// Send forwards msg to the program. Messages sent before SetProgram are
// dropped.
func (r *programRef) Send(msg tea.Msg) {
	if p := r.program.Load(); p != nil {
		p.Send(msg)
	}
}

// TUIProgressReporter forwards task events to the dashboard. Every message
// carries the generation of the run that produced it so that the model can
// drop events from a run the user has reset.
type TUIProgressReporter struct {
	ref        *programRef
	generation uint64
}

var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress sends one ProgressMsg per event, then ProgressDoneMsg once
// the executor closes the channel.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan orchestration.TaskEvent, total int, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(total)
	if agg == nil {
		orchestration.DrainChannel(events)
		return
	}

	for ev := range events {
		t.ref.Send(ProgressMsg{
			Event:      ev,
			Progress:   agg.Update(ev),
			Generation: t.generation,
		})
	}
	t.ref.Send(ProgressDoneMsg{Generation: t.generation})
}
