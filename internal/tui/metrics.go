package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// MetricsModel displays task counters, throughput and runtime memory.
type MetricsModel struct {
	heapAlloc    uint64
	sys          uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int
	completed    int
	failed       int
	running      int
	speed        float64 // tasks per second
	lastDone     int
	lastUpdate   time.Time
	width        int
	height       int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		lastUpdate: time.Now(),
	}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.heapAlloc = msg.HeapAlloc
	m.sys = msg.Sys
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.Goroutines
}

// UpdateCounts records the task counters and smooths the completion rate.
func (m *MetricsModel) UpdateCounts(completed, failed, running int) {
	m.completed, m.failed, m.running = completed, failed, running

	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt <= 0.05 {
		return
	}
	if dn := completed - m.lastDone; dn > 0 {
		instant := float64(dn) / dt
		if m.speed > 0 {
			m.speed = 0.7*m.speed + 0.3*instant
		} else {
			m.speed = instant
		}
	}
	m.lastDone = completed
	m.lastUpdate = now
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	colWidth := max((m.width-6)/2, 0)
	left := []string{
		formatMetricCol("Completed:", fmt.Sprintf("%d", m.completed), colWidth),
		formatMetricCol("Running:", fmt.Sprintf("%d", m.running), colWidth),
		formatMetricCol("Speed:", fmt.Sprintf("%.1f tasks/s", m.speed), colWidth),
	}
	right := []string{
		formatMetricCol("Failed:", fmt.Sprintf("%d", m.failed), colWidth),
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth),
		formatMetricCol("GC:", fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6), colWidth),
	}

	var rows strings.Builder
	rows.WriteString(fmt.Sprintf("%s %s",
		metricLabelStyle.Render("  Heap:"),
		metricValueStyle.Render(formatBytes(m.heapAlloc)+" / "+formatBytes(m.sys))))
	for i := range left {
		rows.WriteString("\n")
		rows.WriteString(left[i])
		rows.WriteString(right[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	// Pad to fixed column width using lipgloss-aware width
	visible := lipgloss.Width(cell)
	if visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
