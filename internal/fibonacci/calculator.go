//go:generate mockgen -source=calculator.go -destination=mocks/mock_calculator.go -package=mocks

package fibonacci

import apperrors "github.com/agbru/fibseq/internal/errors"

// Calculator computes a single term of the Fibonacci sequence. Each call is
// independent: implementations keep no state between calls and are safe for
// concurrent use by several workers.
type Calculator interface {
	// Name returns a human-readable name for the algorithm.
	Name() string
	// Calculate returns F(index). Negative indices are rejected with a
	// ValidationError.
	Calculate(index int) (uint64, error)
}

// Fib returns F(n) by naive, non-memoized recursion:
//
//	F(0) = 0, F(1) = 1, F(n) = F(n-1) + F(n-2)
//
// The running time is exponential in n. Results wrap silently once they
// exceed the range of uint64 (n > 93).
func Fib(n int) uint64 {
	if n <= 1 {
		if n < 0 {
			return 0
		}
		return uint64(n)
	}
	return Fib(n-1) + Fib(n-2)
}

// NaiveRecursive is the default calculator. It recomputes every term from
// scratch so that each task carries its own independent CPU work.
type NaiveRecursive struct{}

// Name returns the algorithm name.
func (NaiveRecursive) Name() string { return "Naive Recursion" }

// Calculate returns F(index) using Fib.
func (NaiveRecursive) Calculate(index int) (uint64, error) {
	if err := checkIndex(index); err != nil {
		return 0, err
	}
	return Fib(index), nil
}

// Iterative computes F(index) with a linear loop over two running terms.
type Iterative struct{}

// Name returns the algorithm name.
func (Iterative) Name() string { return "Iterative" }

// Calculate returns F(index).
func (Iterative) Calculate(index int) (uint64, error) {
	if err := checkIndex(index); err != nil {
		return 0, err
	}
	var a, b uint64 = 0, 1
	for i := 0; i < index; i++ {
		a, b = b, a+b
	}
	return a, nil
}

func checkIndex(index int) error {
	if index < 0 {
		return apperrors.ValidationError{Field: "index", Message: "must be non-negative"}
	}
	return nil
}
