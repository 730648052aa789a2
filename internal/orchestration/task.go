package orchestration

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// Outcome is the recorded result of one sequence task.
type Outcome struct {
	// Index is the 1-based position of the term in the requested sequence.
	Index int
	// Value is F(Index). It is zero when Err is set.
	Value uint64
	// Err is an apperrors.TaskError when the computation failed.
	Err error
	// Duration is the time spent computing the term.
	Duration time.Duration
	// Worker identifies the pool worker that ran the task (1-based).
	Worker int
}

// Failed reports whether the task recorded a failure.
func (o Outcome) Failed() bool { return o.Err != nil }

// Cause returns the reason a task failed without the task index that
// TaskError prefixes, or nil for a successful task.
func (o Outcome) Cause() error {
	var taskErr apperrors.TaskError
	if errors.As(o.Err, &taskErr) && taskErr.Cause != nil {
		return taskErr.Cause
	}
	return o.Err
}

// Task is one pending or completed computation. Its index is fixed at
// construction; its outcome slot is written at most once.
type Task struct {
	index   int
	once    sync.Once
	outcome Outcome
}

// NewTask creates a task for the given 1-based sequence position.
func NewTask(index int) *Task {
	return &Task{index: index, outcome: Outcome{Index: index}}
}

// Index returns the task's sequence position.
func (t *Task) Index() int { return t.index }

// complete stores o as the task outcome. Only the first call has an effect;
// it reports whether o was stored. The index of o is forced to the task's.
func (t *Task) complete(o Outcome) bool {
	stored := false
	t.once.Do(func() {
		o.Index = t.index
		t.outcome = o
		stored = true
	})
	return stored
}

// Outcome returns the recorded outcome. It must only be read after the
// completion barrier has released.
func (t *Task) Outcome() Outcome { return t.outcome }
