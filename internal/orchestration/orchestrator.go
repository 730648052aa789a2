package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/fibseq/internal/barrier"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/fibonacci"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/metrics"
	"github.com/agbru/fibseq/internal/workerpool"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the event
// channel. Each task emits two events, so a multiplier of two keeps workers
// from ever waiting on a slow reporter.
const ProgressBufferMultiplier = 2

const tracerName = "github.com/agbru/fibseq/internal/orchestration"

// Executor fans a sequence out as independent tasks on a bounded pool and
// joins them on a completion barrier. The zero value runs the default
// calculator on the default pool with no progress output.
type Executor struct {
	// Calculator computes each term. Nil selects fibonacci.NaiveRecursive.
	Calculator fibonacci.Calculator
	// PoolBackend names the workerpool backend. Empty selects the default.
	PoolBackend string
	// Workers bounds concurrency. Zero selects runtime.NumCPU().
	Workers int
	// Reporter receives task events. Nil selects NullProgressReporter.
	Reporter ProgressReporter
	// Out is handed to the reporter. Nil discards output.
	Out io.Writer
	// Logger receives per-task debug entries and a run summary.
	Logger logging.Logger
	// Metrics is optional.
	Metrics *metrics.Recorder
	// Tracer is optional; the global otel tracer is used when nil.
	Tracer trace.Tracer
}

// RunAll computes F(1)..F(n), one task per term, and blocks until every
// task has signaled completion. Outcomes are returned in index order,
// independent of the order in which workers finished.
//
// A task that fails or panics still completes: its outcome carries an
// apperrors.TaskError. RunAll itself only fails when the pool cannot be
// created or ctx ends before the barrier releases. In the latter case
// in-flight tasks are abandoned, not interrupted, while tasks still queued
// in the pool are skipped.
//
// Parameters:
//   - ctx: Bounds the barrier wait; a canceled ctx abandons the run.
//   - n: The number of terms to compute, F(1) through F(n).
//
// Returns:
//   - []Outcome: One outcome per term, in index order.
//   - error: A pool construction error or the context error of an abandoned run.
func (e *Executor) RunAll(ctx context.Context, n int) ([]Outcome, error) {
	if n < 0 {
		return nil, apperrors.ValidationError{Field: "n", Message: "must be non-negative"}
	}
	calc := e.Calculator
	if calc == nil {
		calc = fibonacci.NaiveRecursive{}
	}
	reporter := e.Reporter
	if reporter == nil {
		reporter = NullProgressReporter{}
	}
	out := e.Out
	if out == nil {
		out = io.Discard
	}
	logger := e.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	tracer := e.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	pool, err := workerpool.New(e.PoolBackend, e.Workers)
	if err != nil {
		return nil, err
	}
	e.Metrics.PoolStarted(pool.Name(), pool.Size())

	ctx, span := tracer.Start(ctx, "fibseq.run", trace.WithAttributes(
		attribute.Int("fibseq.n", n),
		attribute.String("fibseq.pool", pool.Name()),
		attribute.Int("fibseq.workers", pool.Size()),
		attribute.String("fibseq.algorithm", calc.Name()),
	))
	defer span.End()

	logger.Info("run started",
		logging.Int("n", n),
		logging.String("pool", pool.Name()),
		logging.Int("workers", pool.Size()),
		logging.String("algorithm", calc.Name()),
	)
	start := time.Now()

	tasks := make([]*Task, n)
	for i := range tasks {
		tasks[i] = NewTask(i + 1)
	}
	done := barrier.New(n)

	sink := newEventSink(n * ProgressBufferMultiplier)
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, sink.ch, n, out)

	// Worker ids are handed out from a token channel sized to the pool's
	// concurrency bound, so at most pool.Size() ids are in use at once.
	tokens := make(chan int, pool.Size())
	for w := 1; w <= pool.Size(); w++ {
		tokens <- w
	}

	run := &taskRunner{
		calc:    calc,
		barrier: done,
		sink:    sink,
		tokens:  tokens,
		logger:  logger,
		metrics: e.Metrics,
		tracer:  tracer,
	}

	// Submission may block on a saturated pool, so it runs beside the
	// barrier wait and stops early when ctx ends.
	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for _, t := range tasks {
			if ctx.Err() != nil {
				return
			}
			e.Metrics.TaskSubmitted()
			task := t
			if err := pool.Go(func() { run.execute(ctx, task) }); err != nil {
				run.record(task, Outcome{Err: apperrors.TaskError{Index: task.Index(), Cause: err}}, 0)
			}
		}
	}()

	waitStart := time.Now()
	waitErr := done.Wait(ctx)
	e.Metrics.BarrierWaited(time.Since(waitStart))

	if waitErr != nil {
		// Queued tasks see the ended ctx and skip their computation; the
		// pool is released once those still computing have returned.
		go func() {
			<-submitted
			pool.StopAndWait()
		}()
		sink.close()
		displayWg.Wait()
		span.RecordError(waitErr)
		span.SetStatus(codes.Error, "barrier wait abandoned")
		logger.Error("run abandoned", waitErr,
			logging.Int("pending", done.Pending()),
			logging.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("waiting for %d tasks: %w", n, waitErr)
	}

	<-submitted
	pool.StopAndWait()
	sink.close()
	displayWg.Wait()

	outcomes := make([]Outcome, n)
	for i, t := range tasks {
		outcomes[i] = t.Outcome()
	}

	summary := Summarize(outcomes)
	span.SetAttributes(
		attribute.Int("fibseq.succeeded", summary.Succeeded),
		attribute.Int("fibseq.failed", summary.Failed),
	)
	if summary.Failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d tasks failed", summary.Failed))
	}
	logger.Info("run finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", time.Since(start)),
	)
	return outcomes, nil
}

// taskRunner holds what every task of a run shares.
type taskRunner struct {
	calc    fibonacci.Calculator
	barrier *barrier.CompletionBarrier
	sink    *eventSink
	tokens  chan int
	logger  logging.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

// execute runs on a pool worker. The barrier slot is signaled on every path,
// including when the run ended before the task was picked up.
func (r *taskRunner) execute(ctx context.Context, t *Task) {
	worker := <-r.tokens
	defer func() { r.tokens <- worker }()

	if err := ctx.Err(); err != nil {
		r.record(t, Outcome{Worker: worker, Err: apperrors.TaskError{Index: t.Index(), Cause: err}}, worker)
		return
	}

	_, span := r.tracer.Start(ctx, "fibseq.task", trace.WithAttributes(
		attribute.Int("fibseq.index", t.Index()),
		attribute.Int("fibseq.worker", worker),
	))
	defer span.End()

	r.sink.send(TaskEvent{Index: t.Index(), Worker: worker, Kind: EventStarted})
	r.logger.Debug("task started", logging.Int("index", t.Index()), logging.Int("worker", worker))

	start := time.Now()
	value, err := safeCalculate(r.calc, t.Index())
	elapsed := time.Since(start)

	o := Outcome{Value: value, Duration: elapsed, Worker: worker}
	if err != nil {
		o.Value = 0
		o.Err = apperrors.TaskError{Index: t.Index(), Cause: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "task failed")
	}
	r.record(t, o, worker)
}

// record stores the outcome, reports it and releases the task's barrier slot.
func (r *taskRunner) record(t *Task, o Outcome, worker int) {
	t.complete(o)
	r.metrics.TaskCompleted(o.Failed(), o.Duration)

	ev := TaskEvent{Index: t.Index(), Worker: worker, Kind: EventFinished, Elapsed: o.Duration, Value: o.Value}
	if o.Failed() {
		ev.Kind = EventFailed
		ev.Err = o.Err
		r.logger.Error("task failed", o.Err, logging.Int("index", t.Index()), logging.Int("worker", worker))
	} else {
		r.logger.Debug("task finished",
			logging.Int("index", t.Index()),
			logging.Int("worker", worker),
			logging.Uint64("value", o.Value),
			logging.Duration("elapsed", o.Duration),
		)
	}
	r.sink.send(ev)
	r.barrier.Signal(t.Index())
}

// safeCalculate converts a calculator panic into an error.
func safeCalculate(calc fibonacci.Calculator, index int) (value uint64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("calculator panicked: %v", rec)
		}
	}()
	return calc.Calculate(index)
}

// eventSink guards the event channel so that workers outliving an abandoned
// run never send on a closed channel. Sends never block: when the buffer is
// full the event is dropped.
type eventSink struct {
	mu     sync.RWMutex
	ch     chan TaskEvent
	closed bool
}

func newEventSink(size int) *eventSink {
	return &eventSink{ch: make(chan TaskEvent, size)}
}

func (s *eventSink) send(ev TaskEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	default:
	}
}

func (s *eventSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// RunSummary aggregates the outcomes of a run.
type RunSummary struct {
	Total      int
	Succeeded  int
	Failed     int
	FirstError error
}

// Err returns the first task error, or nil when every task succeeded.
func (s RunSummary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d tasks failed, first: %w", s.Failed, s.Total, s.FirstError)
}

// Summarize counts successes and failures, keeping the error of the
// lowest-indexed failed task.
func Summarize(outcomes []Outcome) RunSummary {
	s := RunSummary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Failed() {
			s.Failed++
			if s.FirstError == nil {
				s.FirstError = o.Err
			}
			continue
		}
		s.Succeeded++
	}
	return s
}

// Values returns the values of the outcomes in order. Failed tasks yield 0.
func Values(outcomes []Outcome) []uint64 {
	values := make([]uint64, len(outcomes))
	for i, o := range outcomes {
		values[i] = o.Value
	}
	return values
}
