// Package app wires configuration, input, execution and presentation into
// the fibseq command.
package app

import (
	"context"
	"errors"
	"flag"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/fibseq/internal/config"
	"github.com/agbru/fibseq/internal/fibonacci"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/metrics"
	"github.com/agbru/fibseq/internal/ui"
)

// Application represents the fibseq application instance.
type Application struct {
	Config    config.AppConfig
	Factory   fibonacci.CalculatorFactory
	ErrWriter io.Writer
	Logger    logging.Logger
	Metrics   *metrics.Recorder
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom CalculatorFactory for the application.
func WithFactory(f fibonacci.CalculatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithLogger sets the logger instead of the stderr zerolog logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args includes the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = fibonacci.NewDefaultFactory()
	}

	programName := "fibseq"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}

	app.Config = config.ApplyAdaptiveWorkers(cfg)
	if app.Logger == nil {
		app.Logger = newLogger(app.Config, errWriter)
	}
	app.Metrics = metrics.NewRecorder()
	return app, nil
}

// newLogger returns the stderr logger: debug with --verbose, silent with
// --quiet and info otherwise.
func newLogger(cfg config.AppConfig, w io.Writer) logging.Logger {
	switch {
	case cfg.Quiet:
		return logging.Nop()
	case cfg.Verbose:
		return logging.NewLeveledLogger(w, "fibseq", zerolog.DebugLevel)
	default:
		return logging.NewLeveledLogger(w, "fibseq", zerolog.InfoLevel)
	}
}

// Run executes the application based on the configured mode and returns
// the process exit code. in is read for the sequence length when -n is not
// given, and for the final pause.
func (a *Application) Run(ctx context.Context, in io.Reader, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return 0
	}

	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.TUI {
		return a.runTUI(ctx, in, out)
	}
	return a.runCalculate(ctx, in, out)
}

// dumpMetrics writes the Prometheus text exposition when --metrics is set.
func (a *Application) dumpMetrics() {
	if !a.Config.Metrics {
		return
	}
	if err := a.Metrics.WriteText(a.ErrWriter); err != nil {
		a.Logger.Error("writing metrics", err)
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
