package barrier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNew_ZeroIsReleased(t *testing.T) {
	t.Parallel()
	b := New(0)
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait on empty barrier returned %v", err)
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", b.Pending())
	}
}

func TestNew_NegativeIsReleased(t *testing.T) {
	t.Parallel()
	b := New(-4)
	select {
	case <-b.Done():
	default:
		t.Fatal("barrier built with negative size should be released")
	}
}

func TestSignal_ReleasesWhenAllFired(t *testing.T) {
	t.Parallel()
	const n = 8
	b := New(n)

	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			b.Signal(slot)
		}(i)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait returned %v after all slots fired", err)
	}
}

// TestWait_WithheldSignalBlocks withholds exactly one slot and checks that
// the waiter is still blocked when a short deadline expires.
func TestWait_WithheldSignalBlocks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		n        int
		withheld int
	}{
		{"single slot", 1, 1},
		{"first slot", 5, 1},
		{"middle slot", 10, 6},
		{"last slot", 64, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := New(tt.n)
			for i := 1; i <= tt.n; i++ {
				if i != tt.withheld {
					b.Signal(i)
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()
			err := b.Wait(ctx)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("Wait() = %v, want DeadlineExceeded", err)
			}
			if got := b.Pending(); got != 1 {
				t.Errorf("Pending() = %d, want 1", got)
			}

			b.Signal(tt.withheld)
			if err := b.Wait(context.Background()); err != nil {
				t.Errorf("Wait after final signal returned %v", err)
			}
		})
	}
}

func TestSignal_RepeatedIsNoop(t *testing.T) {
	t.Parallel()
	b := New(3)
	if !b.Signal(2) {
		t.Fatal("first Signal(2) should report true")
	}
	if b.Signal(2) {
		t.Fatal("second Signal(2) should report false")
	}
	if got := b.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}

	// Extra signals of fired slots must not release the barrier early.
	b.Signal(2)
	b.Signal(2)
	select {
	case <-b.Done():
		t.Fatal("barrier released before every slot fired")
	default:
	}
}

func TestSignal_OutOfRangePanics(t *testing.T) {
	t.Parallel()
	for _, slot := range []int{0, -1, 4} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Signal(%d) did not panic", slot)
				}
			}()
			New(3).Signal(slot)
		}()
	}
}

func TestWait_CanceledContext(t *testing.T) {
	t.Parallel()
	b := New(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait() = %v, want Canceled", err)
	}
}

// TestWait_ReleasedBeatsCanceled checks that a released barrier reports
// success even when the context is already done.
func TestWait_ReleasedBeatsCanceled(t *testing.T) {
	t.Parallel()
	b := New(1)
	b.Signal(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait() = %v, want nil", err)
	}
}

// TestBarrier_PropertyBased checks that any permutation of signals releases
// the barrier exactly after the last distinct slot fires.
func TestBarrier_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("releases only after every slot", prop.ForAll(
		func(order []int) bool {
			const n = 16
			b := New(n)
			seen := make(map[int]bool)
			for _, raw := range order {
				slot := raw%n + 1
				b.Signal(slot)
				seen[slot] = true
				released := false
				select {
				case <-b.Done():
					released = true
				default:
				}
				if released != (len(seen) == n) {
					return false
				}
				if b.Pending() != n-len(seen) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
