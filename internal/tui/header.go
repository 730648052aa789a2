package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibseq/internal/format"
)

// HeaderModel is the title row. Besides the program name it shows how many
// tasks have signaled the barrier and the elapsed time, which freezes when
// the run ends.
type HeaderModel struct {
	version   string
	total     int
	completed int
	failed    int
	started   time.Time
	stopped   time.Time
	width     int
}

// NewHeaderModel creates a header for a run of total tasks.
func NewHeaderModel(version string, total int) HeaderModel {
	return HeaderModel{version: version, total: total, started: time.Now()}
}

// SetCounts updates the completed and failed task counters.
func (h *HeaderModel) SetCounts(completed, failed int) {
	h.completed, h.failed = completed, failed
}

// SetDone stops the clock.
func (h *HeaderModel) SetDone() {
	h.stopped = time.Now()
}

// Reset restarts the clock for a new run.
func (h *HeaderModel) Reset() {
	h.started = time.Now()
	h.stopped = time.Time{}
	h.completed, h.failed = 0, 0
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the time since the run started, or its total duration
// once SetDone was called.
func (h HeaderModel) Elapsed() time.Duration {
	if h.stopped.IsZero() {
		return time.Since(h.started)
	}
	return h.stopped.Sub(h.started)
}

func (h HeaderModel) counter() string {
	s := fmt.Sprintf("%d/%d tasks", h.completed, h.total)
	if h.failed > 0 {
		s += fmt.Sprintf(", %d failed", h.failed)
	}
	return s
}

// View renders the header padded to the full width.
func (h HeaderModel) View() string {
	title := "fibseq"
	if h.version != "" && h.version != "dev" {
		title += " " + h.version
	}
	sep := versionStyle.Render(" | ")
	row := strings.Join([]string{
		titleStyle.Render(title),
		elapsedStyle.Render(h.counter()),
		elapsedStyle.Render("Elapsed: " + format.FormatExecutionDuration(h.Elapsed())),
	}, sep)

	pad := max(h.width-2-lipgloss.Width(row), 0)
	return headerStyle.Width(h.width).Render(row + strings.Repeat(" ", pad))
}
