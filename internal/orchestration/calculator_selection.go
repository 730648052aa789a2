package orchestration

import (
	"github.com/agbru/fibseq/internal/config"
	"github.com/agbru/fibseq/internal/fibonacci"
)

// NewExecutor builds an Executor from the configuration, resolving the
// calculator by name through factory. Reporter, output, logger and metrics
// are left for the caller to set.
//
// Parameters:
//   - cfg: The application configuration (algorithm, pool, workers).
//   - factory: The calculator factory to retrieve implementations from.
//
// Returns:
//   - *Executor: The configured executor.
//   - error: A ConfigError if the algorithm is unknown.
func NewExecutor(cfg config.AppConfig, factory fibonacci.CalculatorFactory) (*Executor, error) {
	calc, err := factory.Get(cfg.Algo)
	if err != nil {
		return nil, err
	}
	return &Executor{
		Calculator:  calc,
		PoolBackend: cfg.Pool,
		Workers:     cfg.Workers,
	}, nil
}
