package config

import "runtime"

// Worker count resolution chain (highest priority first):
//   1. CLI flag (--workers / -w)
//   2. Environment variable FIBSEQ_WORKERS
//   3. Config file attribute "workers"
//   4. Host estimation (this file)

// ApplyAdaptiveWorkers fills in the worker count when it was left at its
// zero default, preserving any explicit override.
func ApplyAdaptiveWorkers(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers()
	}
	return cfg
}

// EstimateOptimalWorkers returns one worker per logical CPU. Each task is a
// CPU-bound recursion with no blocking, so more workers than CPUs only adds
// scheduling overhead.
func EstimateOptimalWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}
