// Package workerpool adapts several bounded worker-pool libraries to a single
// submit-and-drain interface so the executor can be run on any of them.
package workerpool

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	gzworkerpool "github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// Backend names accepted by New.
const (
	BackendErrgroup   = "errgroup"
	BackendPond       = "pond"
	BackendAnts       = "ants"
	BackendWorkerpool = "workerpool"

	// DefaultBackend is used when no backend is configured.
	DefaultBackend = BackendErrgroup
)

// ErrPoolStopped is returned by Go once StopAndWait has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

// Pool runs submitted functions on a bounded set of workers.
type Pool interface {
	// Go schedules task for execution. It may block while every worker is
	// busy. It returns ErrPoolStopped after StopAndWait.
	Go(task func()) error
	// StopAndWait stops accepting work and blocks until every submitted
	// task has returned.
	StopAndWait()
	// Size returns the maximum number of tasks that run concurrently.
	Size() int
	// Name returns the backend name.
	Name() string
}

type constructor func(workers int) (Pool, error)

var backends = map[string]constructor{
	BackendErrgroup:   newErrgroupPool,
	BackendPond:       newPondPool,
	BackendAnts:       newAntsPool,
	BackendWorkerpool: newGammazeroPool,
}

// Backends returns the accepted backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a pool of the named backend with the given number of workers.
// A non-positive worker count selects runtime.NumCPU().
func New(backend string, workers int) (Pool, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if backend == "" {
		backend = DefaultBackend
	}
	ctor, ok := backends[strings.ToLower(backend)]
	if !ok {
		return nil, apperrors.NewConfigError("unknown pool backend %q (available: %s)", backend, strings.Join(Backends(), ", "))
	}
	return ctor(workers)
}

// errgroup

type errgroupPool struct {
	g       errgroup.Group
	size    int
	stopped atomic.Bool
}

func newErrgroupPool(workers int) (Pool, error) {
	p := &errgroupPool{size: workers}
	p.g.SetLimit(workers)
	return p, nil
}

func (p *errgroupPool) Go(task func()) error {
	if p.stopped.Load() {
		return ErrPoolStopped
	}
	p.g.Go(func() error {
		task()
		return nil
	})
	return nil
}

func (p *errgroupPool) StopAndWait() {
	p.stopped.Store(true)
	_ = p.g.Wait()
}

func (p *errgroupPool) Size() int    { return p.size }
func (p *errgroupPool) Name() string { return BackendErrgroup }

// pond

type pondPool struct {
	pool    pond.Pool
	size    int
	stopped atomic.Bool
}

func newPondPool(workers int) (Pool, error) {
	return &pondPool{pool: pond.NewPool(workers), size: workers}, nil
}

func (p *pondPool) Go(task func()) error {
	if p.stopped.Load() {
		return ErrPoolStopped
	}
	p.pool.Submit(task)
	return nil
}

func (p *pondPool) StopAndWait() {
	p.stopped.Store(true)
	p.pool.StopAndWait()
}

func (p *pondPool) Size() int    { return p.size }
func (p *pondPool) Name() string { return BackendPond }

// ants

// antsPool tracks in-flight tasks itself because ants' Release does not wait
// for running workers.
type antsPool struct {
	pool    *ants.Pool
	size    int
	wg      sync.WaitGroup
	stopped atomic.Bool
}

func newAntsPool(workers int) (Pool, error) {
	p, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating ants pool: %w", err)
	}
	return &antsPool{pool: p, size: workers}, nil
}

func (p *antsPool) Go(task func()) error {
	if p.stopped.Load() {
		return ErrPoolStopped
	}
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		task()
	})
	if err != nil {
		p.wg.Done()
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolStopped
		}
		return fmt.Errorf("submitting to ants pool: %w", err)
	}
	return nil
}

func (p *antsPool) StopAndWait() {
	p.stopped.Store(true)
	p.wg.Wait()
	p.pool.Release()
}

func (p *antsPool) Size() int    { return p.size }
func (p *antsPool) Name() string { return BackendAnts }

// gammazero/workerpool

type gammazeroPool struct {
	pool    *gzworkerpool.WorkerPool
	size    int
	stopped atomic.Bool
}

func newGammazeroPool(workers int) (Pool, error) {
	return &gammazeroPool{pool: gzworkerpool.New(workers), size: workers}, nil
}

func (p *gammazeroPool) Go(task func()) error {
	if p.stopped.Load() {
		return ErrPoolStopped
	}
	p.pool.Submit(task)
	return nil
}

func (p *gammazeroPool) StopAndWait() {
	p.stopped.Store(true)
	p.pool.StopWait()
}

func (p *gammazeroPool) Size() int    { return p.size }
func (p *gammazeroPool) Name() string { return BackendWorkerpool }
