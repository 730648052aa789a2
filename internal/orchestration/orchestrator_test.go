package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/fibonacci"
	"github.com/agbru/fibseq/internal/fibonacci/mocks"
	"github.com/agbru/fibseq/internal/metrics"
	"github.com/agbru/fibseq/internal/workerpool"
)

// canonical returns F(1)..F(n) computed by a plain loop.
func canonical(n int) []uint64 {
	seq := make([]uint64, n)
	var a, b uint64 = 0, 1
	for i := range seq {
		a, b = b, a+b
		seq[i] = a
	}
	return seq
}

func equalValues(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunAll_Scenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n    int
		want []uint64
	}{
		{0, []uint64{}},
		{1, []uint64{1}},
		{5, []uint64{1, 1, 2, 3, 5}},
		{10, []uint64{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}},
	}

	for _, backend := range workerpool.Backends() {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/n=%d", backend, tt.n), func(t *testing.T) {
				t.Parallel()
				exec := &Executor{PoolBackend: backend, Workers: 3}
				outcomes, err := exec.RunAll(context.Background(), tt.n)
				if err != nil {
					t.Fatalf("RunAll returned error: %v", err)
				}
				if got := Values(outcomes); !equalValues(got, tt.want) {
					t.Errorf("values = %v, want %v", got, tt.want)
				}
				for i, o := range outcomes {
					if o.Index != i+1 {
						t.Errorf("outcome %d has index %d", i, o.Index)
					}
					if o.Worker < 1 || o.Worker > 3 {
						t.Errorf("outcome %d ran on worker %d, want 1..3", i, o.Worker)
					}
				}
			})
		}
	}
}

func TestRunAll_NegativeN(t *testing.T) {
	t.Parallel()
	_, err := (&Executor{}).RunAll(context.Background(), -1)
	var validationErr apperrors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("RunAll(-1) error = %v, want ValidationError", err)
	}
}

func TestRunAll_UnknownPool(t *testing.T) {
	t.Parallel()
	_, err := (&Executor{PoolBackend: "fork"}).RunAll(context.Background(), 3)
	var configErr apperrors.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("RunAll error = %v, want ConfigError", err)
	}
}

// TestRunAll_OrderUnaffectedByDelays makes low indices the slowest so that
// completion order is roughly the reverse of submission order.
func TestRunAll_OrderUnaffectedByDelays(t *testing.T) {
	t.Parallel()
	const n = 12
	ctrl := gomock.NewController(t)
	calc := mocks.NewMockCalculator(ctrl)
	calc.EXPECT().Name().Return("delayed").AnyTimes()

	var mu sync.Mutex
	var finishOrder []int
	calc.EXPECT().Calculate(gomock.Any()).DoAndReturn(func(index int) (uint64, error) {
		time.Sleep(time.Duration(n-index) * 3 * time.Millisecond)
		mu.Lock()
		finishOrder = append(finishOrder, index)
		mu.Unlock()
		return fibonacci.Iterative{}.Calculate(index)
	}).Times(n)

	exec := &Executor{Calculator: calc, Workers: n}
	outcomes, err := exec.RunAll(context.Background(), n)
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if got := Values(outcomes); !equalValues(got, canonical(n)) {
		t.Errorf("values = %v, want %v", got, canonical(n))
	}
	if len(finishOrder) != n {
		t.Fatalf("finished %d tasks, want %d", len(finishOrder), n)
	}
	if finishOrder[0] == 1 {
		t.Logf("completion order was not perturbed: %v", finishOrder)
	}
}

func TestRunAll_FailuresStillRelease(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	calc := mocks.NewMockCalculator(ctrl)
	calc.EXPECT().Name().Return("flaky").AnyTimes()
	boom := errors.New("boom")
	calc.EXPECT().Calculate(gomock.Any()).DoAndReturn(func(index int) (uint64, error) {
		switch index {
		case 3:
			return 0, boom
		case 4:
			panic("unexpected state")
		}
		return fibonacci.Fib(index), nil
	}).Times(5)

	rec := metrics.NewRecorder()
	exec := &Executor{Calculator: calc, Workers: 2, Metrics: rec}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	outcomes, err := exec.RunAll(ctx, 5)
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}

	var taskErr apperrors.TaskError
	if !errors.As(outcomes[2].Err, &taskErr) || taskErr.Index != 3 || !errors.Is(outcomes[2].Err, boom) {
		t.Errorf("outcome 3 error = %v, want TaskError wrapping boom", outcomes[2].Err)
	}
	if !errors.As(outcomes[3].Err, &taskErr) || taskErr.Index != 4 {
		t.Errorf("outcome 4 error = %v, want TaskError for the panic", outcomes[3].Err)
	}
	if outcomes[3].Value != 0 {
		t.Errorf("failed outcome value = %d, want 0", outcomes[3].Value)
	}
	for _, i := range []int{0, 1, 4} {
		if outcomes[i].Failed() {
			t.Errorf("outcome %d unexpectedly failed: %v", i+1, outcomes[i].Err)
		}
	}

	summary := Summarize(outcomes)
	if summary.Succeeded != 3 || summary.Failed != 2 {
		t.Errorf("summary = %+v, want 3 succeeded and 2 failed", summary)
	}
	if !errors.Is(summary.Err(), boom) {
		t.Errorf("summary.Err() = %v, want it to wrap the first failure", summary.Err())
	}
}

// blockingCalculator never returns for the withheld index until released.
type blockingCalculator struct {
	withheld int
	release  chan struct{}
}

func (c *blockingCalculator) Name() string { return "blocking" }

func (c *blockingCalculator) Calculate(index int) (uint64, error) {
	if index == c.withheld {
		<-c.release
	}
	return fibonacci.Fib(index), nil
}

func TestRunAll_WithheldTaskBlocksBarrier(t *testing.T) {
	t.Parallel()
	calc := &blockingCalculator{withheld: 4, release: make(chan struct{})}
	defer close(calc.release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	exec := &Executor{Calculator: calc, Workers: 2, Reporter: NullProgressReporter{}}
	outcomes, err := exec.RunAll(ctx, 6)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RunAll error = %v, want DeadlineExceeded", err)
	}
	if outcomes != nil {
		t.Errorf("abandoned run returned outcomes %v", outcomes)
	}
}

// slowCalculator counts the terms it starts computing.
type slowCalculator struct {
	delay   time.Duration
	started atomic.Int32
}

func (c *slowCalculator) Name() string { return "slow" }

func (c *slowCalculator) Calculate(index int) (uint64, error) {
	c.started.Add(1)
	time.Sleep(c.delay)
	return fibonacci.Fib(index), nil
}

func TestRunAll_AbandonedRunSkipsQueuedTasks(t *testing.T) {
	t.Parallel()
	const (
		n       = 40
		workers = 2
	)
	for _, backend := range workerpool.Backends() {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			calc := &slowCalculator{delay: 20 * time.Millisecond}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()

			exec := &Executor{Calculator: calc, PoolBackend: backend, Workers: workers}
			if _, err := exec.RunAll(ctx, n); !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("RunAll error = %v, want DeadlineExceeded", err)
			}
			atAbandon := calc.started.Load()

			// Long enough for the whole queue to drain if it were still computing.
			time.Sleep(300 * time.Millisecond)
			got := calc.started.Load()
			if limit := atAbandon + workers; got > limit {
				t.Errorf("%d tasks started after the run was abandoned with %d started, want at most %d", got, atAbandon, limit)
			}
		})
	}
}

func TestRunAll_Idempotent(t *testing.T) {
	t.Parallel()
	exec := &Executor{Calculator: fibonacci.Iterative{}, Workers: 4}
	first, err := exec.RunAll(context.Background(), 40)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := exec.RunAll(context.Background(), 40)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !equalValues(Values(first), Values(second)) {
		t.Errorf("runs differ:\n%v\n%v", Values(first), Values(second))
	}
}

// recordingReporter keeps every event it receives.
type recordingReporter struct {
	mu     sync.Mutex
	events []TaskEvent
	total  int
}

func (r *recordingReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan TaskEvent, total int, _ io.Writer) {
	defer wg.Done()
	r.total = total
	for ev := range events {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	}
}

func TestRunAll_ReportsEvents(t *testing.T) {
	t.Parallel()
	const n = 8
	reporter := &recordingReporter{}
	exec := &Executor{Reporter: reporter, Workers: 3}
	if _, err := exec.RunAll(context.Background(), n); err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}

	if reporter.total != n {
		t.Errorf("reporter total = %d, want %d", reporter.total, n)
	}
	started := make(map[int]bool)
	finished := make(map[int]bool)
	for _, ev := range reporter.events {
		switch ev.Kind {
		case EventStarted:
			started[ev.Index] = true
		case EventFinished:
			if !started[ev.Index] {
				t.Errorf("task %d finished before it started", ev.Index)
			}
			finished[ev.Index] = true
			if ev.Value != fibonacci.Fib(ev.Index) {
				t.Errorf("event value for %d = %d", ev.Index, ev.Value)
			}
		}
	}
	if len(started) != n || len(finished) != n {
		t.Errorf("saw %d started and %d finished tasks, want %d each", len(started), len(finished), n)
	}
}

func TestTask_WriteOnce(t *testing.T) {
	t.Parallel()
	task := NewTask(7)
	if !task.complete(Outcome{Index: 99, Value: 13}) {
		t.Fatal("first complete should store the outcome")
	}
	if task.complete(Outcome{Value: 21}) {
		t.Fatal("second complete should be ignored")
	}
	got := task.Outcome()
	if got.Index != 7 || got.Value != 13 {
		t.Errorf("Outcome() = %+v, want index 7 value 13", got)
	}
}

func TestOutcome_Cause(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"success", nil, nil},
		{"task error", apperrors.TaskError{Index: 3, Cause: boom}, boom},
		{"wrapped task error", fmt.Errorf("run: %w", apperrors.TaskError{Index: 3, Cause: boom}), boom},
		{"plain error", boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := (Outcome{Index: 3, Err: tt.err}).Cause(); got != tt.want {
				t.Errorf("Cause() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	errA := apperrors.TaskError{Index: 2, Cause: errors.New("a")}
	errB := apperrors.TaskError{Index: 5, Cause: errors.New("b")}
	tests := []struct {
		name     string
		outcomes []Outcome
		want     RunSummary
	}{
		{"empty", nil, RunSummary{}},
		{"all ok", []Outcome{{Index: 1, Value: 1}, {Index: 2, Value: 1}}, RunSummary{Total: 2, Succeeded: 2}},
		{"first error kept", []Outcome{{Index: 1}, {Index: 2, Err: errA}, {Index: 5, Err: errB}},
			RunSummary{Total: 3, Succeeded: 1, Failed: 2, FirstError: errA}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Summarize(tt.outcomes)
			if got.Total != tt.want.Total || got.Succeeded != tt.want.Succeeded || got.Failed != tt.want.Failed {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
			if !errors.Is(got.FirstError, tt.want.FirstError) {
				t.Errorf("FirstError = %v, want %v", got.FirstError, tt.want.FirstError)
			}
			if (got.Err() == nil) != (tt.want.Failed == 0) {
				t.Errorf("Err() = %v with %d failures", got.Err(), got.Failed)
			}
		})
	}
}

func TestEventKind_String(t *testing.T) {
	t.Parallel()
	for kind, want := range map[EventKind]string{
		EventStarted:  "started",
		EventFinished: "finished",
		EventFailed:   "failed",
		EventKind(42): "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("EventKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
