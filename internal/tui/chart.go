package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/fibseq/internal/format"
)

// sparklineLabelWidth is the room taken by the "CPU 100.0% " prefix and
// the panel borders.
const sparklineLabelWidth = 17

// ChartModel shows overall completion with an ETA and the host CPU and
// memory history.
type ChartModel struct {
	fraction   float64
	eta        time.Duration
	elapsed    time.Duration
	done       bool
	cpuHistory *History
	memHistory *History
	width      int
	height     int
}

// NewChartModel creates a new chart panel.
func NewChartModel() ChartModel {
	return ChartModel{
		cpuHistory: NewHistory(1),
		memHistory: NewHistory(1),
	}
}

// SetSize updates dimensions and the sparkline capacity.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
	limit := max(w-sparklineLabelWidth, 1)
	c.cpuHistory.SetLimit(limit)
	c.memHistory.SetLimit(limit)
}

// SetProgress records the completed fraction and the current estimate.
func (c *ChartModel) SetProgress(fraction float64, eta time.Duration) {
	c.fraction = fraction
	c.eta = eta
}

// UpdateSysStats appends host usage samples.
func (c *ChartModel) UpdateSysStats(cpuPercent, memPercent float64) {
	c.cpuHistory.Push(cpuPercent)
	c.memHistory.Push(memPercent)
}

// SetDone marks the run finished after elapsed.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
	c.eta = 0
}

// Reset clears progress and history.
func (c *ChartModel) Reset() {
	c.fraction = 0
	c.eta = 0
	c.elapsed = 0
	c.done = false
	c.cpuHistory.Clear()
	c.memHistory.Clear()
}

// renderProgressBar returns the bar line, or "" when too narrow.
func (c ChartModel) renderProgressBar() string {
	barWidth := c.width - 14
	if barWidth < 5 {
		return ""
	}
	filled := int(c.fraction * float64(barWidth))
	filled = min(max(filled, 0), barWidth)
	return chartBarStyle.Render(strings.Repeat("█", filled)) +
		chartEmptyStyle.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %5.1f%%", c.fraction*100)
}

// View renders the panel.
func (c ChartModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Progress Chart"))
	b.WriteString("\n")
	if bar := c.renderProgressBar(); bar != "" {
		b.WriteString(bar)
		b.WriteString("\n")
	}
	if c.done {
		b.WriteString(metricLabelStyle.Render("Done in: "))
		b.WriteString(metricValueStyle.Render(format.FormatExecutionDuration(c.elapsed)))
	} else {
		b.WriteString(metricLabelStyle.Render("ETA: "))
		b.WriteString(metricValueStyle.Render(format.FormatETA(c.eta)))
	}

	if c.height >= 10 {
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("CPU %5.1f%% ", c.cpuHistory.Last()))
		b.WriteString(cpuSparklineStyle.Render(Sparkline(c.cpuHistory.Values())))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("MEM %5.1f%% ", c.memHistory.Last()))
		b.WriteString(memSparklineStyle.Render(Sparkline(c.memHistory.Values())))
	}

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(b.String())
}
