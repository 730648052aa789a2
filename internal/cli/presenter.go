package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/ui"
)

const (
	// SequenceRule frames the sequence block.
	SequenceRule = "================"
	// SequenceTitle is printed between the two opening rules.
	SequenceTitle = "||  Sequence  ||"
	// FailedMarker stands in for a failed term in the sequence line.
	FailedMarker = "ERR"
)

// CLIResultPresenter prints one "Fibonacci(i) = v" line per task in index
// order, followed by the framed sequence block.
type CLIResultPresenter struct{}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

// PresentResults writes the per-task lines and the sequence block.
func (CLIResultPresenter) PresentResults(outcomes []orchestration.Outcome, out io.Writer) {
	for _, o := range outcomes {
		if o.Failed() {
			fmt.Fprintf(out, "Fibonacci(%d) = <failed: %v>\n", o.Index, o.Cause())
			continue
		}
		fmt.Fprintf(out, "Fibonacci(%d) = %d\n", o.Index, o.Value)
	}
	writeSequenceBlock(outcomes, out)
}

// QuietPresenter prints only the space-joined sequence line.
type QuietPresenter struct{}

var _ orchestration.ResultPresenter = QuietPresenter{}

// PresentResults writes the sequence line.
func (QuietPresenter) PresentResults(outcomes []orchestration.Outcome, out io.Writer) {
	fmt.Fprintln(out, FormatSequence(outcomes))
}

func writeSequenceBlock(outcomes []orchestration.Outcome, out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, SequenceRule)
	fmt.Fprintln(out, SequenceTitle)
	fmt.Fprintln(out, SequenceRule)
	fmt.Fprintln(out, FormatSequence(outcomes))
	fmt.Fprintln(out, SequenceRule)
}

// FormatSequence joins the values with single spaces, in index order.
// Failed terms are rendered as FailedMarker.
func FormatSequence(outcomes []orchestration.Outcome) string {
	parts := make([]string, len(outcomes))
	for i, o := range outcomes {
		if o.Failed() {
			parts[i] = FailedMarker
			continue
		}
		parts[i] = strconv.FormatUint(o.Value, 10)
	}
	return strings.Join(parts, " ")
}

// PrintLaunch announces the number of tasks about to be submitted.
func PrintLaunch(n int, out io.Writer) {
	fmt.Fprintf(out, "launching %d tasks...\n", n)
}

// PrintCompletion reports that the barrier was released.
func PrintCompletion(elapsed time.Duration, out io.Writer) {
	fmt.Fprintln(out, "All calculations are complete.")
	fmt.Fprintf(out, "Time: %s%s%s\n\n", ui.ColorYellow(), format.FormatExecutionDuration(elapsed), ui.ColorReset())
}

// PrintSummary reports failed tasks, if any.
func PrintSummary(summary orchestration.RunSummary, out io.Writer) {
	if summary.Failed == 0 {
		return
	}
	fmt.Fprintf(out, "%s%d of %d tasks failed; first error: %v%s\n",
		ui.ColorRed(), summary.Failed, summary.Total, summary.FirstError, ui.ColorReset())
}

// CLIColorProvider implements apperrors.ColorProvider using the ui package.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

// Red returns the error color.
func (CLIColorProvider) Red() string { return ui.ColorRed() }

// Yellow returns the warning color.
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }

// Reset returns the reset sequence.
func (CLIColorProvider) Reset() string { return ui.ColorReset() }

// NewResultPresenter selects the presenter for a format name. Quiet mode
// overrides the format.
func NewResultPresenter(formatName string, quiet bool) orchestration.ResultPresenter {
	switch {
	case quiet:
		return QuietPresenter{}
	case strings.EqualFold(formatName, "table"):
		return TablePresenter{}
	default:
		return CLIResultPresenter{}
	}
}
