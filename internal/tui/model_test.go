package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/fibonacci"
	"github.com/agbru/fibseq/internal/orchestration"
)

func newTestModel(t *testing.T, n int) Model {
	t.Helper()
	exec := &orchestration.Executor{Calculator: fibonacci.Iterative{}, Workers: 2}
	m := NewModel(context.Background(), exec, n, "v1.0.0", 0)
	t.Cleanup(m.cancel)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func TestModel_ProgressUpdatesPanels(t *testing.T) {
	m := newTestModel(t, 3)
	ev := orchestration.TaskEvent{Index: 2, Kind: orchestration.EventFinished, Value: 1}
	updated, _ := m.Update(ProgressMsg{
		Event:    ev,
		Progress: orchestration.AggregatedProgress{Completed: 1, Total: 3, Fraction: 1.0 / 3},
	})
	m = updated.(Model)

	if m.grid.State(2) != CellDone {
		t.Errorf("cell 2 = %v, want done", m.grid.State(2))
	}
	if m.header.completed != 1 {
		t.Errorf("header completed = %d, want 1", m.header.completed)
	}
	if m.chart.fraction == 0 {
		t.Error("chart should record progress")
	}
}

func TestModel_IgnoresStaleGeneration(t *testing.T) {
	m := newTestModel(t, 3)
	updated, _ := m.Update(ProgressMsg{
		Event:      orchestration.TaskEvent{Index: 1, Kind: orchestration.EventFinished},
		Generation: 7,
	})
	if updated.(Model).grid.State(1) != CellPending {
		t.Error("stale progress should be ignored")
	}
	updated, _ = m.Update(RunCompleteMsg{Generation: 7, ExitCode: 1})
	if updated.(Model).done {
		t.Error("stale completion should be ignored")
	}
}

func TestModel_RunComplete(t *testing.T) {
	m := newTestModel(t, 2)
	updated, _ := m.Update(RunCompleteMsg{
		Outcomes: []orchestration.Outcome{{Index: 1, Value: 1}, {Index: 2, Err: errors.New("boom")}},
		ExitCode: apperrors.ExitErrorGeneric,
		Elapsed:  time.Millisecond,
	})
	m = updated.(Model)
	if !m.done || m.ExitCode() != apperrors.ExitErrorGeneric {
		t.Errorf("done=%v exit=%d", m.done, m.ExitCode())
	}
	if !m.results.HasResults() || m.grid.State(2) != CellFailed {
		t.Error("results and grid should reflect the outcomes")
	}
	if !m.footer.errored {
		t.Error("footer should show the error state")
	}
	if m.View() == "" {
		t.Error("expected a rendered view")
	}
}

func TestModel_QuitBeforeDoneCancels(t *testing.T) {
	m := newTestModel(t, 2)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.ExitCode() != apperrors.ExitErrorCanceled {
		t.Errorf("exit = %d, want %d", m.ExitCode(), apperrors.ExitErrorCanceled)
	}
	if m.ctx.Err() == nil {
		t.Error("quit should cancel the run context")
	}
}

func TestModel_PauseAndReset(t *testing.T) {
	m := newTestModel(t, 2)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(Model)
	if !m.paused {
		t.Fatal("expected paused")
	}
	updated, _ = m.Update(ProgressMsg{Event: orchestration.TaskEvent{Index: 1, Kind: orchestration.EventFinished}})
	if updated.(Model).grid.State(1) != CellPending {
		t.Error("paused dashboard should not apply events")
	}

	oldCtx := m.ctx
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(Model)
	t.Cleanup(m.cancel)
	if cmd == nil || m.generation != 1 || m.paused || m.done {
		t.Errorf("reset state: gen=%d paused=%v done=%v", m.generation, m.paused, m.done)
	}
	if oldCtx.Err() == nil {
		t.Error("reset should cancel the previous run")
	}
}

func TestModel_ResetGetsFreshDeadline(t *testing.T) {
	exec := &orchestration.Executor{Calculator: fibonacci.Iterative{}, Workers: 2}
	m := NewModel(context.Background(), exec, 3, "", 100*time.Millisecond)
	t.Cleanup(m.cancel)

	<-m.ctx.Done()
	if !errors.Is(m.ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("run context error = %v, want DeadlineExceeded", m.ctx.Err())
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(Model)
	t.Cleanup(m.cancel)
	if cmd == nil || m.generation != 1 {
		t.Fatalf("reset after a deadline should start a new run, gen=%d", m.generation)
	}
	if err := m.ctx.Err(); err != nil {
		t.Errorf("new run context already ended: %v", err)
	}
	if _, ok := m.ctx.Deadline(); !ok {
		t.Error("new run should carry its own deadline")
	}
}

func TestModel_ResetIgnoredAfterSessionEnds(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	exec := &orchestration.Executor{Calculator: fibonacci.Iterative{}, Workers: 2}
	m := NewModel(parent, exec, 3, "", 0)
	cancel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd != nil || updated.(Model).generation != 0 {
		t.Error("reset should do nothing once the session context has ended")
	}
}

func TestModel_DeadlineKeepsDashboardOpen(t *testing.T) {
	m := newTestModel(t, 2)
	updated, cmd := m.Update(ContextCancelledMsg{Err: context.DeadlineExceeded})
	if cmd != nil || updated.(Model).done {
		t.Error("deadline should wait for the run to report")
	}
	updated, cmd = m.Update(ContextCancelledMsg{Err: context.Canceled})
	if cmd == nil || updated.(Model).ExitCode() != apperrors.ExitErrorCanceled {
		t.Error("cancellation should quit with the canceled code")
	}
}

func TestStartRunCmd(t *testing.T) {
	exec := orchestration.Executor{Calculator: fibonacci.Iterative{}, Workers: 2}
	msg := startRunCmd(&programRef{}, context.Background(), exec, 5, 3)()
	done, ok := msg.(RunCompleteMsg)
	if !ok {
		t.Fatalf("got %T, want RunCompleteMsg", msg)
	}
	if done.Err != nil || done.ExitCode != apperrors.ExitSuccess || done.Generation != 3 {
		t.Fatalf("unexpected completion: %+v", done)
	}
	want := []uint64{1, 1, 2, 3, 5}
	for i, o := range done.Outcomes {
		if o.Value != want[i] {
			t.Errorf("F(%d) = %d, want %d", i+1, o.Value, want[i])
		}
	}
}

func TestRunExitCode(t *testing.T) {
	ok := []orchestration.Outcome{{Index: 1, Value: 1}}
	failed := []orchestration.Outcome{{Index: 1, Err: errors.New("x")}}
	tests := []struct {
		name     string
		outcomes []orchestration.Outcome
		err      error
		want     int
	}{
		{"success", ok, nil, apperrors.ExitSuccess},
		{"task failed", failed, nil, apperrors.ExitErrorGeneric},
		{"timeout", nil, context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"canceled", nil, context.Canceled, apperrors.ExitErrorCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runExitCode(tt.outcomes, tt.err); got != tt.want {
				t.Errorf("runExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}
