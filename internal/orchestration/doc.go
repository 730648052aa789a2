// Package orchestration fans a Fibonacci sequence out as independent tasks on
// a bounded worker pool and joins them on a completion barrier. It decouples
// the run from presentation via the ProgressReporter and ResultPresenter
// interfaces.
package orchestration
