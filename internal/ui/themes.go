package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ThemeEnv forces a theme by name ("dark", "light" or "none"), bypassing
// background detection.
const ThemeEnv = "FIBSEQ_THEME"

// Theme holds the ANSI sequences used for each role of the console output.
// The zero Theme emits nothing and is what redirected output gets.
type Theme struct {
	Name string
	// Accent marks configuration values and the launch line.
	Accent string
	// Muted is used for secondary details such as worker numbers.
	Muted string
	// Success colors completed tasks.
	Success string
	// Warning colors timeouts and the ETA.
	Warning string
	// Failure colors failed tasks and run errors.
	Failure string
	// Highlight marks the sequence line and algorithm names.
	Highlight string
	Bold      string
	Reset     string
}

// sgr builds a Select Graphic Rendition escape from its parameters.
func sgr(params ...string) string {
	return "\033[" + strings.Join(params, ";") + "m"
}

// fg256 selects a foreground color from the 256-color palette.
func fg256(n int) string {
	return sgr("38", "5", fmt.Sprint(n))
}

var (
	// DarkTheme favors bright colors on dark backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Accent:    fg256(39),
		Muted:     fg256(245),
		Success:   fg256(82),
		Warning:   fg256(220),
		Failure:   fg256(196),
		Highlight: fg256(141),
		Bold:      sgr("1"),
		Reset:     sgr("0"),
	}

	// LightTheme uses darker shades that stay readable on light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Accent:    fg256(27),
		Muted:     fg256(240),
		Success:   fg256(28),
		Warning:   fg256(130),
		Failure:   fg256(124),
		Highlight: fg256(54),
		Bold:      sgr("1"),
		Reset:     sgr("0"),
	}

	// NoColorTheme disables all escape codes.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// Palette is the lipgloss rendition of a Theme for the dashboard. The task
// roles map one to one onto the states a grid cell can be in.
type Palette struct {
	Frame  lipgloss.TerminalColor
	Text   lipgloss.TerminalColor
	Accent lipgloss.TerminalColor
	Muted  lipgloss.TerminalColor

	Pending lipgloss.TerminalColor
	Running lipgloss.TerminalColor
	Done    lipgloss.TerminalColor
	Failed  lipgloss.TerminalColor
	Paused  lipgloss.TerminalColor
}

var (
	// DarkPalette is the orange-framed dashboard palette.
	DarkPalette = Palette{
		Frame:   lipgloss.Color("#FF6600"),
		Text:    lipgloss.Color("#E0E0E0"),
		Accent:  lipgloss.Color("#FF8C00"),
		Muted:   lipgloss.Color("#666666"),
		Pending: lipgloss.Color("#4A4A4A"),
		Running: lipgloss.Color("#FFD700"),
		Done:    lipgloss.Color("#9ECE6A"),
		Failed:  lipgloss.Color("#FF4444"),
		Paused:  lipgloss.Color("#FFB347"),
	}

	// LightPalette keeps the same hues at a lower luminance.
	LightPalette = Palette{
		Frame:   lipgloss.Color("#B84A00"),
		Text:    lipgloss.Color("#1A1A1A"),
		Accent:  lipgloss.Color("#C05800"),
		Muted:   lipgloss.Color("#8A8A8A"),
		Pending: lipgloss.Color("#B0B0B0"),
		Running: lipgloss.Color("#9A7D00"),
		Done:    lipgloss.Color("#2E7D32"),
		Failed:  lipgloss.Color("#C62828"),
		Paused:  lipgloss.Color("#A65F00"),
	}

	// PlainPalette renders everything in the terminal's default colors.
	PlainPalette = Palette{
		Frame:   lipgloss.NoColor{},
		Text:    lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Pending: lipgloss.NoColor{},
		Running: lipgloss.NoColor{},
		Done:    lipgloss.NoColor{},
		Failed:  lipgloss.NoColor{},
		Paused:  lipgloss.NoColor{},
	}
)

// CurrentPalette returns the dashboard palette matching the active theme.
func CurrentPalette() Palette {
	switch GetCurrentTheme().Name {
	case NoColorTheme.Name:
		return PlainPalette
	case LightTheme.Name:
		return LightPalette
	default:
		return DarkPalette
	}
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates the theme registered under name and reports whether
// it exists. Unknown names leave the active theme unchanged.
func SetTheme(name string) bool {
	t, ok := themes[strings.ToLower(name)]
	if ok {
		SetCurrentTheme(t)
	}
	return ok
}

// environment is what theme selection needs to know about the terminal.
type environment struct {
	lookupEnv      func(string) (string, bool)
	isTerminal     bool
	darkBackground func() bool
}

// selectTheme applies the precedence --no-color > NO_COLOR > non-terminal
// stdout > FIBSEQ_THEME > detected background.
func selectTheme(noColor bool, env environment) Theme {
	if noColor {
		return NoColorTheme
	}
	// Any value, even empty, disables colors (https://no-color.org/).
	if _, ok := env.lookupEnv("NO_COLOR"); ok {
		return NoColorTheme
	}
	if !env.isTerminal {
		return NoColorTheme
	}
	if name, ok := env.lookupEnv(ThemeEnv); ok {
		if t, known := themes[strings.ToLower(name)]; known {
			return t
		}
	}
	if env.darkBackground() {
		return DarkTheme
	}
	return LightTheme
}

// InitTheme picks the theme for this process from the --no-color flag,
// the environment and the terminal attached to stdout.
func InitTheme(noColor bool) {
	SetCurrentTheme(selectTheme(noColor, environment{
		lookupEnv:      os.LookupEnv,
		isTerminal:     term.IsTerminal(int(os.Stdout.Fd())),
		darkBackground: lipgloss.HasDarkBackground,
	}))
}
