package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/fibseq/internal/cli"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/input"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/tui"
)

// runCalculate orchestrates the console flow: read n, launch the tasks,
// wait on the barrier, render the results and pause.
func (a *Application) runCalculate(ctx context.Context, in io.Reader, out io.Writer) int {
	reader := input.NewReader(in, out)
	reader.MaxAttempts = a.Config.MaxAttempts

	n, err := a.resolveN(ctx, reader)
	if err != nil {
		return apperrors.HandleRunError(err, 0, out, cli.CLIColorProvider{})
	}

	exec, err := a.newExecutor(out)
	if err != nil {
		return apperrors.HandleRunError(err, 0, out, cli.CLIColorProvider{})
	}

	if a.Config.Verbose && !a.Config.Quiet {
		cfg := a.Config
		cfg.N = n
		cli.PrintExecutionConfig(cfg, exec.Calculator.Name(), out)
	}
	if !a.Config.Quiet {
		cli.PrintLaunch(n, out)
	}

	runCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	outcomes, err := exec.RunAll(runCtx, n)
	elapsed := time.Since(start)
	if err != nil {
		a.dumpMetrics()
		return apperrors.HandleRunError(a.timeoutError(err), elapsed, out, cli.CLIColorProvider{})
	}

	if !a.Config.Quiet {
		cli.PrintCompletion(elapsed, out)
	}
	cli.NewResultPresenter(a.Config.Format, a.Config.Quiet).PresentResults(outcomes, out)

	exitCode := apperrors.ExitSuccess
	summary := orchestration.Summarize(outcomes)
	if summary.Failed > 0 {
		exitCode = apperrors.ExitErrorGeneric
		if !a.Config.Quiet {
			cli.PrintSummary(summary, out)
		}
		a.Logger.Error("run finished with failed tasks", summary.Err(),
			logging.Int("failed", summary.Failed))
	}
	a.dumpMetrics()

	if !a.Config.NoPause && !a.Config.Quiet {
		reader.Pause()
	}
	return exitCode
}

// runTUI launches the interactive dashboard. The sequence length must be
// known before the dashboard takes over the terminal.
func (a *Application) runTUI(ctx context.Context, in io.Reader, out io.Writer) int {
	reader := input.NewReader(in, out)
	reader.MaxAttempts = a.Config.MaxAttempts

	n, err := a.resolveN(ctx, reader)
	if err != nil {
		return apperrors.HandleRunError(err, 0, out, cli.CLIColorProvider{})
	}
	exec, err := a.newExecutor(io.Discard)
	if err != nil {
		return apperrors.HandleRunError(err, 0, out, cli.CLIColorProvider{})
	}
	// The dashboard owns the terminal; logs would corrupt it.
	exec.Logger = logging.Nop()

	// The dashboard applies --timeout to each run so that a reset starts
	// with a fresh deadline.
	code := tui.Run(ctx, exec, n, Version, a.Config.Timeout)
	a.dumpMetrics()
	return code
}

// resolveN returns the -n value or prompts for one.
func (a *Application) resolveN(ctx context.Context, reader *input.Reader) (int, error) {
	if a.Config.N > 0 {
		return a.Config.N, nil
	}
	return reader.ReadBoundedInteger(ctx)
}

func (a *Application) newExecutor(out io.Writer) (*orchestration.Executor, error) {
	exec, err := orchestration.NewExecutor(a.Config, a.Factory)
	if err != nil {
		return nil, err
	}
	exec.Logger = a.Logger
	exec.Metrics = a.Metrics
	exec.Out = out
	if a.Config.Quiet {
		exec.Reporter = orchestration.NullProgressReporter{}
	} else {
		exec.Reporter = cli.NewProgressReporter(a.Config.Progress, out)
	}
	return exec, nil
}

// withTimeout bounds ctx by --timeout when set.
func (a *Application) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.Timeout > 0 {
		return context.WithTimeout(ctx, a.Config.Timeout)
	}
	return context.WithCancel(ctx)
}

// timeoutError names the limit when the barrier wait hit --timeout.
func (a *Application) timeoutError(err error) error {
	if a.Config.Timeout > 0 && apperrors.ExitCodeFor(err) == apperrors.ExitErrorTimeout {
		return fmt.Errorf("%w: %w", apperrors.TimeoutError{Operation: "barrier wait", Limit: a.Config.Timeout}, err)
	}
	return err
}
