package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/agbru/fibseq/internal/cli"
	"github.com/agbru/fibseq/internal/orchestration"
)

// ResultsModel shows the result lines and the sequence once the run has
// returned. It scrolls with the navigation keys.
type ResultsModel struct {
	vp       viewport.Model
	outcomes []orchestration.Outcome
	err      error
	width    int
	height   int
}

// NewResultsModel creates an empty results panel.
func NewResultsModel() ResultsModel {
	return ResultsModel{vp: viewport.New(0, 0)}
}

// SetSize updates dimensions.
func (r *ResultsModel) SetSize(w, h int) {
	r.width = w
	r.height = h
	r.vp.Width = max(w-4, 0)
	r.vp.Height = max(h-3, 0)
	r.refresh()
}

// SetOutcomes stores the outcomes of a returned run and the run error.
func (r *ResultsModel) SetOutcomes(outcomes []orchestration.Outcome, err error) {
	r.outcomes = outcomes
	r.err = err
	r.refresh()
	r.vp.GotoTop()
}

// Reset clears the panel.
func (r *ResultsModel) Reset() {
	r.outcomes = nil
	r.err = nil
	r.refresh()
}

// HasResults reports whether a run has returned.
func (r ResultsModel) HasResults() bool {
	return r.outcomes != nil || r.err != nil
}

// ScrollUp moves the view up by n lines.
func (r *ResultsModel) ScrollUp(n int) { r.vp.LineUp(n) }

// ScrollDown moves the view down by n lines.
func (r *ResultsModel) ScrollDown(n int) { r.vp.LineDown(n) }

// PageSize returns the number of visible lines.
func (r ResultsModel) PageSize() int { return max(r.vp.Height, 1) }

func (r *ResultsModel) refresh() {
	r.vp.SetContent(r.content())
}

func (r ResultsModel) content() string {
	if !r.HasResults() {
		return chartEmptyStyle.Render("Waiting for every task to signal completion...")
	}
	var b strings.Builder
	if r.err != nil {
		b.WriteString(resultErrorStyle.Render(fmt.Sprintf("Run failed: %v", r.err)))
		b.WriteString("\n")
	}
	for _, o := range r.outcomes {
		if o.Failed() {
			b.WriteString(resultErrorStyle.Render(fmt.Sprintf("Fibonacci(%d) = <failed: %v>", o.Index, o.Cause())))
		} else {
			b.WriteString(resultLineStyle.Render(fmt.Sprintf("Fibonacci(%d) = %d", o.Index, o.Value)))
		}
		b.WriteString("\n")
	}
	if len(r.outcomes) > 0 {
		b.WriteString("\n")
		b.WriteString(sequenceStyle.Render(cli.FormatSequence(r.outcomes)))
	}
	return b.String()
}

// View renders the panel.
func (r ResultsModel) View() string {
	body := panelTitleStyle.Render("Results") + "\n" + r.vp.View()
	return panelStyle.
		Width(max(r.width-2, 0)).
		Height(max(r.height-2, 0)).
		Render(body)
}
