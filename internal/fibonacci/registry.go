package fibonacci

import (
	"sort"
	"strings"
	"sync"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// DefaultAlgorithm is the registry key used when no algorithm is selected.
const DefaultAlgorithm = "naive"

// CalculatorFactory resolves calculators by their registry key.
type CalculatorFactory interface {
	// Get returns the calculator registered under name.
	Get(name string) (Calculator, error)
	// List returns all registered keys in sorted order.
	List() []string
}

// Registry is a concurrency-safe CalculatorFactory.
type Registry struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{calculators: make(map[string]Calculator)}
}

// NewDefaultFactory returns a registry holding the built-in calculators.
func NewDefaultFactory() *Registry {
	r := NewRegistry()
	r.Register(DefaultAlgorithm, NaiveRecursive{})
	r.Register("iterative", Iterative{})
	return r
}

// Register adds or replaces the calculator stored under name.
// Keys are case-insensitive.
func (r *Registry) Register(name string, calc Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calculators[strings.ToLower(name)] = calc
}

// Get returns the calculator registered under name, or a ConfigError listing
// the valid keys.
func (r *Registry) Get(name string) (Calculator, error) {
	r.mu.RLock()
	calc, ok := r.calculators[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewConfigError("unknown algorithm %q (available: %s)", name, strings.Join(r.List(), ", "))
	}
	return calc, nil
}

// List returns the registered keys in alphabetical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.calculators))
	for k := range r.calculators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
