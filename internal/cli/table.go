package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/ui"
)

// TablePresenter renders outcomes as a table with one row per task,
// followed by the framed sequence block.
type TablePresenter struct{}

var _ orchestration.ResultPresenter = TablePresenter{}

// PresentResults writes the table and the sequence block.
func (TablePresenter) PresentResults(outcomes []orchestration.Outcome, out io.Writer) {
	ok := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	if ui.IsColorEnabled() {
		ok.EnableColor()
		failed.EnableColor()
	} else {
		ok.DisableColor()
		failed.DisableColor()
	}

	table := tablewriter.NewWriter(out)
	table.Header("Index", "Value", "Worker", "Duration", "Status")
	for _, o := range outcomes {
		value := format.FormatNumberString(strconv.FormatUint(o.Value, 10))
		status := ok.Sprint("ok")
		if o.Failed() {
			value = "-"
			status = failed.Sprintf("failed: %v", o.Cause())
		}
		_ = table.Append(
			fmt.Sprintf("F(%d)", o.Index),
			value,
			strconv.Itoa(o.Worker),
			format.FormatExecutionDuration(o.Duration),
			status,
		)
	}
	_ = table.Render()
	writeSequenceBlock(outcomes, out)
}
