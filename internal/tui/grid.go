package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/fibseq/internal/orchestration"
)

// CellState is the display state of one task.
type CellState int

// Task cell states.
const (
	CellPending CellState = iota
	CellRunning
	CellDone
	CellFailed
)

// cellWidth is the rendered width of one cell, separator included.
const cellWidth = 5

// GridModel shows one cell per task, laid out in rows.
type GridModel struct {
	cells  []CellState
	width  int
	height int
}

// NewGridModel creates a grid of total pending cells.
func NewGridModel(total int) GridModel {
	return GridModel{cells: make([]CellState, max(total, 0))}
}

// SetSize updates dimensions.
func (g *GridModel) SetSize(w, h int) {
	g.width = w
	g.height = h
}

// Apply updates the cell of the event's task. Events for unknown indices
// are ignored. A finished cell never goes back to running.
func (g *GridModel) Apply(ev orchestration.TaskEvent) {
	i := ev.Index - 1
	if i < 0 || i >= len(g.cells) {
		return
	}
	switch ev.Kind {
	case orchestration.EventStarted:
		if g.cells[i] == CellPending {
			g.cells[i] = CellRunning
		}
	case orchestration.EventFinished:
		g.cells[i] = CellDone
	case orchestration.EventFailed:
		g.cells[i] = CellFailed
	}
}

// SetOutcomes sets every cell from the final outcomes. Dropped events
// never leave a stale cell once the run has returned.
func (g *GridModel) SetOutcomes(outcomes []orchestration.Outcome) {
	for _, o := range outcomes {
		i := o.Index - 1
		if i < 0 || i >= len(g.cells) {
			continue
		}
		if o.Failed() {
			g.cells[i] = CellFailed
		} else {
			g.cells[i] = CellDone
		}
	}
}

// Reset sets every cell back to pending.
func (g *GridModel) Reset() {
	clear(g.cells)
}

// Count returns the number of cells in state s.
func (g GridModel) Count(s CellState) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// State returns the state of the cell for a 1-based index.
func (g GridModel) State(index int) CellState {
	if index < 1 || index > len(g.cells) {
		return CellPending
	}
	return g.cells[index-1]
}

// View renders the grid panel.
func (g GridModel) View() string {
	perRow := max((g.width-4)/cellWidth, 1)
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Tasks"))
	for i, c := range g.cells {
		if i%perRow == 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderCell(i+1, c))
	}
	return panelStyle.
		Width(max(g.width-2, 0)).
		Height(max(g.height-2, 0)).
		Render(b.String())
}

func renderCell(index int, c CellState) string {
	label := fmt.Sprintf("%4d", index)
	switch c {
	case CellRunning:
		return cellRunningStyle.Render(label) + "*"
	case CellDone:
		return cellDoneStyle.Render(label) + " "
	case CellFailed:
		return cellFailedStyle.Render(label) + "!"
	default:
		return cellPendingStyle.Render(label) + " "
	}
}

// gridHeight returns the panel height needed to show every cell at width.
func gridHeight(total, width int) int {
	perRow := max((width-4)/cellWidth, 1)
	rows := (total + perRow - 1) / perRow
	return rows + 3
}

