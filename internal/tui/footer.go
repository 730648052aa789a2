package tui

import (
	"github.com/charmbracelet/bubbles/help"
)

// FooterModel renders the status indicator and the key help.
type FooterModel struct {
	help    help.Model
	keys    KeyMap
	paused  bool
	done    bool
	errored bool
	width   int
}

// NewFooterModel creates a footer for keys.
func NewFooterModel(keys KeyMap) FooterModel {
	return FooterModel{help: help.New(), keys: keys}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
	f.help.Width = max(w-14, 0)
}

// SetPaused sets the paused indicator.
func (f *FooterModel) SetPaused(p bool) { f.paused = p }

// SetDone sets the done indicator.
func (f *FooterModel) SetDone(d bool) { f.done = d }

// SetError sets the error indicator.
func (f *FooterModel) SetError(e bool) { f.errored = e }

// ToggleHelp switches between short and full help.
func (f *FooterModel) ToggleHelp() { f.help.ShowAll = !f.help.ShowAll }

func (f FooterModel) status() string {
	switch {
	case f.errored:
		return statusErrorStyle.Render("ERROR")
	case f.done:
		return statusDoneStyle.Render("DONE")
	case f.paused:
		return statusPausedStyle.Render("PAUSED")
	default:
		return statusRunningStyle.Render("RUNNING")
	}
}

// View renders the footer.
func (f FooterModel) View() string {
	return " " + f.status() + "  " + f.help.View(f.keys)
}
