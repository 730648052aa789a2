package tui

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/metrics"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sysmon"
)

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	done       bool
	exitCode   int
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
	total  int
}

// Layout constants for the TUI dashboard.
const (
	headerHeight           = 1
	footerHeight           = 1
	minBodyHeight          = 6
	TasksPanelWidthPercent = 60
	MetricsPanelHeight     = 6
	tickInterval           = 500 * time.Millisecond
)

// bodyHeight returns the available height for the main body panels.
func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

// leftWidth returns the width allocated to the tasks and results column.
func (l LayoutManager) leftWidth() int {
	return l.width * TasksPanelWidthPercent / 100
}

// rightWidth returns the width allocated to the metrics and chart column.
func (l LayoutManager) rightWidth() int {
	return l.width - l.leftWidth()
}

// gridHeight returns the height of the task grid, leaving at least three
// lines to the results panel.
func (l LayoutManager) gridHeight() int {
	return min(gridHeight(l.total, l.leftWidth()), l.bodyHeight()-3)
}

// resultsHeight returns the height of the results panel.
func (l LayoutManager) resultsHeight() int {
	return l.bodyHeight() - l.gridHeight()
}

// metricsHeight returns the height allocated to the metrics panel.
func (l LayoutManager) metricsHeight() int {
	return min(MetricsPanelHeight, l.bodyHeight()/2)
}

// chartHeight returns the height allocated to the chart panel.
func (l LayoutManager) chartHeight() int {
	return l.bodyHeight() - l.metricsHeight()
}

// Model is the root bubbletea model for the TUI dashboard.
type Model struct {
	header  HeaderModel
	grid    GridModel
	results ResultsModel
	metrics MetricsModel
	chart   ChartModel
	footer  FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	timeout   time.Duration
	executor  orchestration.Executor
	n         int
	ref       *programRef
	collector *metrics.MemoryCollector
	paused    bool
}

// NewModel creates a new TUI model for a run of n tasks. The executor is
// copied; its Reporter and Out are replaced for every run. A positive
// timeout bounds each run separately, so a reset gets a fresh deadline.
func NewModel(parentCtx context.Context, exec *orchestration.Executor, n int, version string, timeout time.Duration) Model {
	ctx, cancel := runContext(parentCtx, timeout)
	keys := DefaultKeyMap()

	return Model{
		header:  NewHeaderModel(version, n),
		grid:    NewGridModel(n),
		results: NewResultsModel(),
		metrics: NewMetricsModel(),
		chart:   NewChartModel(),
		footer:  NewFooterModel(keys),
		keymap:  keys,
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		LayoutManager: LayoutManager{total: n},
		parentCtx:     parentCtx,
		timeout:       timeout,
		executor:      *exec,
		n:             n,
		ref:           &programRef{},
		collector:     metrics.NewMemoryCollector(),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startRunCmd(m.ref, m.ctx, m.executor, m.n, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if msg.Generation != m.generation || m.paused {
			return m, nil
		}
		p := msg.Progress
		m.grid.Apply(msg.Event)
		m.header.SetCounts(p.Completed, p.Failed)
		m.metrics.UpdateCounts(p.Completed, p.Failed, p.Running)
		m.chart.SetProgress(p.Fraction, p.ETA)
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case RunCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil // stale message from previous run
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.grid.SetOutcomes(msg.Outcomes)
		m.results.SetOutcomes(msg.Outcomes, msg.Err)
		summary := orchestration.Summarize(msg.Outcomes)
		m.header.SetCounts(summary.Total, summary.Failed)
		m.header.SetDone()
		m.metrics.UpdateCounts(summary.Total, summary.Failed, 0)
		if msg.Err == nil {
			m.chart.SetProgress(1, 0)
		}
		m.chart.SetDone(msg.Elapsed)
		m.footer.SetError(msg.ExitCode != apperrors.ExitSuccess)
		m.footer.SetDone(true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			return m, tea.Batch(sampleMemStatsCmd(m.collector), sampleSysStatsCmd(), tickCmd())
		}
		return m, tickCmd()

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil // stale message from previous run
		}
		// A deadline leaves the dashboard open; RunCompleteMsg reports it.
		if errors.Is(msg.Err, context.DeadlineExceeded) {
			return m, nil
		}
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		m.done = true
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Help):
		m.footer.ToggleHelp()
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		// Nothing can run once the session itself has ended.
		if m.parentCtx.Err() != nil {
			return m, nil
		}
		if m.cancel != nil {
			m.cancel()
		}

		m.generation++
		ctx, cancel := runContext(m.parentCtx, m.timeout)
		m.ctx = ctx
		m.cancel = cancel

		// Reset all UI components
		m.header.Reset()
		m.grid.Reset()
		m.results.Reset()
		m.chart.Reset()
		m.metrics = NewMetricsModel()
		m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
		m.footer.SetDone(false)
		m.footer.SetError(false)
		m.footer.SetPaused(false)
		m.done = false
		m.paused = false
		m.exitCode = apperrors.ExitSuccess

		// Restart the run and watchers
		return m, tea.Batch(
			tickCmd(),
			startRunCmd(m.ref, m.ctx, m.executor, m.n, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)

	case key.Matches(msg, m.keymap.Up):
		m.results.ScrollUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.results.ScrollDown(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.results.ScrollUp(m.results.PageSize())
	case key.Matches(msg, m.keymap.PageDown):
		m.results.ScrollDown(m.results.PageSize())
	}

	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.grid.View(), m.results.View())
	right := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.grid.SetSize(m.leftWidth(), m.gridHeight())
	m.results.SetSize(m.leftWidth(), m.resultsHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// ExitCode returns the exit code of the session.
func (m Model) ExitCode() int {
	return m.exitCode
}

// runContext derives the context of one run from the session context.
func runContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
// timeout bounds every run of the session, including those started by a
// reset; zero means no limit.
func Run(ctx context.Context, exec *orchestration.Executor, n int, version string, timeout time.Duration) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, exec, n, version, timeout)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}

	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startRunCmd returns a tea.Cmd that runs the executor and reports the
// outcomes once every task has signaled completion.
func startRunCmd(ref *programRef, ctx context.Context, exec orchestration.Executor, n int, gen uint64) tea.Cmd {
	return func() tea.Msg {
		exec.Reporter = &TUIProgressReporter{ref: ref, generation: gen}
		exec.Out = io.Discard

		start := time.Now()
		outcomes, err := exec.RunAll(ctx, n)
		return RunCompleteMsg{
			Outcomes:   outcomes,
			Err:        err,
			Elapsed:    time.Since(start),
			ExitCode:   runExitCode(outcomes, err),
			Generation: gen,
		}
	}
}

// runExitCode maps a returned run to an exit code. Failed tasks make the
// run fail with the generic code.
func runExitCode(outcomes []orchestration.Outcome, err error) int {
	if err != nil {
		return apperrors.ExitCodeFor(err)
	}
	if orchestration.Summarize(outcomes).Failed > 0 {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// tickCmd returns a command that sends a TickMsg after tickInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemStatsCmd reads runtime memory stats and returns a MemStatsMsg.
func sampleMemStatsCmd(c *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		return MemStatsMsg(c.Snapshot())
	}
}

// sampleSysStatsCmd reads system-wide CPU and memory stats and returns a SysStatsMsg.
func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{
			CPUPercent: s.CPUPercent,
			MemPercent: s.MemPercent,
		}
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
