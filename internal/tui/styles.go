package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibseq/internal/ui"
)

// Dashboard styles, rebuilt from the active ui palette by initTUIStyles.
var (
	panelStyle      lipgloss.Style
	panelTitleStyle lipgloss.Style
	headerStyle     lipgloss.Style
	titleStyle      lipgloss.Style
	versionStyle    lipgloss.Style
	elapsedStyle    lipgloss.Style

	cellPendingStyle lipgloss.Style
	cellRunningStyle lipgloss.Style
	cellDoneStyle    lipgloss.Style
	cellFailedStyle  lipgloss.Style

	resultLineStyle  lipgloss.Style
	resultErrorStyle lipgloss.Style
	sequenceStyle    lipgloss.Style

	metricLabelStyle  lipgloss.Style
	metricValueStyle  lipgloss.Style
	chartBarStyle     lipgloss.Style
	chartEmptyStyle   lipgloss.Style
	cpuSparklineStyle lipgloss.Style
	memSparklineStyle lipgloss.Style

	statusRunningStyle lipgloss.Style
	statusPausedStyle  lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
)

func init() {
	initTUIStyles()
}

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// initTUIStyles must run again after ui.InitTheme so that the dashboard
// follows --no-color and the detected background.
func initTUIStyles() {
	p := ui.CurrentPalette()

	panelStyle = fg(p.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Frame)
	panelTitleStyle = fg(p.Accent).Bold(true)
	headerStyle = fg(p.Accent).Bold(true).Padding(0, 1)
	titleStyle = fg(p.Accent).Bold(true)
	versionStyle = fg(p.Muted)
	elapsedStyle = fg(p.Accent)

	// Cells mirror the task lifecycle.
	cellPendingStyle = fg(p.Pending)
	cellRunningStyle = fg(p.Running).Bold(true)
	cellDoneStyle = fg(p.Done)
	cellFailedStyle = fg(p.Failed).Bold(true)

	resultLineStyle = fg(p.Text)
	resultErrorStyle = fg(p.Failed)
	sequenceStyle = fg(p.Accent).Bold(true)

	metricLabelStyle = fg(p.Muted)
	metricValueStyle = fg(p.Accent).Bold(true)
	chartBarStyle = fg(p.Running)
	chartEmptyStyle = fg(p.Pending)
	cpuSparklineStyle = fg(p.Accent)
	memSparklineStyle = fg(p.Paused)

	statusRunningStyle = fg(p.Running).Bold(true)
	statusPausedStyle = fg(p.Paused).Bold(true)
	statusDoneStyle = fg(p.Done).Bold(true)
	statusErrorStyle = fg(p.Failed).Bold(true)
}
