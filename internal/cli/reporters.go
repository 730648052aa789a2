package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/ui"
)

// Progress display modes accepted by NewProgressReporter.
const (
	ProgressAuto    = "auto"
	ProgressLines   = "lines"
	ProgressSpinner = "spinner"
	ProgressBar     = "bar"
	ProgressNone    = "none"
)

// LineProgressReporter prints one line when a task starts and one when it
// finishes. Lines from concurrent tasks interleave in arrival order.
type LineProgressReporter struct{}

var _ orchestration.ProgressReporter = LineProgressReporter{}

// DisplayProgress writes a line per event until the channel is closed.
func (LineProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan orchestration.TaskEvent, _ int, out io.Writer) {
	defer wg.Done()
	for ev := range events {
		switch ev.Kind {
		case orchestration.EventStarted:
			fmt.Fprintf(out, "task %d started on worker %d...\n", ev.Index, ev.Worker)
		case orchestration.EventFinished:
			fmt.Fprintf(out, "task %d result calculated...\n", ev.Index)
		case orchestration.EventFailed:
			fmt.Fprintf(out, "%stask %d failed on worker %d: %v%s\n",
				ui.ColorRed(), ev.Index, ev.Worker, ev.Err, ui.ColorReset())
		}
	}
}

// SpinnerProgressReporter implements orchestration.ProgressReporter with a
// spinner and a textual progress bar.
type SpinnerProgressReporter struct{}

var _ orchestration.ProgressReporter = SpinnerProgressReporter{}

// DisplayProgress delegates to the package-level DisplayProgress.
func (SpinnerProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan orchestration.TaskEvent, total int, out io.Writer) {
	DisplayProgress(wg, events, total, out)
}

// BarProgressReporter renders a progress bar that advances once per
// finished task.
type BarProgressReporter struct {
	// Width of the bar in characters. Zero selects ProgressBarWidth.
	Width int
}

var _ orchestration.ProgressReporter = BarProgressReporter{}

// DisplayProgress advances the bar for every finished or failed task.
func (r BarProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan orchestration.TaskEvent, total int, out io.Writer) {
	defer wg.Done()
	if total <= 0 {
		orchestration.DrainChannel(events)
		return
	}
	width := r.Width
	if width <= 0 {
		width = ProgressBarWidth
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("computing"),
		progressbar.OptionSetWidth(width),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)
	failed := 0
	for ev := range events {
		switch ev.Kind {
		case orchestration.EventFinished:
			_ = bar.Add(1)
		case orchestration.EventFailed:
			failed++
			bar.Describe(fmt.Sprintf("computing (%d failed)", failed))
			_ = bar.Add(1)
		}
	}
	_ = bar.Finish()
}

// NewProgressReporter returns the reporter for a display mode. "auto" picks
// the spinner when out is a terminal and per-task lines otherwise. Unknown
// modes fall back to lines.
func NewProgressReporter(mode string, out io.Writer) orchestration.ProgressReporter {
	switch strings.ToLower(mode) {
	case ProgressNone:
		return orchestration.NullProgressReporter{}
	case ProgressSpinner:
		return SpinnerProgressReporter{}
	case ProgressBar:
		return BarProgressReporter{}
	case ProgressAuto:
		if isTerminal(out) {
			return SpinnerProgressReporter{}
		}
		return LineProgressReporter{}
	default:
		return LineProgressReporter{}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatTaskValue renders a value with thousands separators.
func formatTaskValue(v uint64) string {
	return format.FormatNumberString(fmt.Sprintf("%d", v))
}
