// Package config parses and validates the application configuration from
// command-line flags, FIBSEQ_* environment variables and an optional HCL
// file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "FIBSEQ_"

// Defaults.
const (
	DefaultPool     = "errgroup"
	DefaultAlgo     = "naive"
	DefaultProgress = "lines"
	DefaultFormat   = "text"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N is the requested sequence length. Zero means prompt for it.
	N int `validate:"min=0,max=64"`
	// Workers bounds the worker pool. Zero means runtime.NumCPU().
	Workers int `validate:"min=0"`
	// Pool names the worker-pool backend.
	Pool string `validate:"oneof=errgroup pond ants workerpool"`
	// Algo names the calculator.
	Algo string `validate:"required"`
	// Progress selects the progress reporter.
	Progress string `validate:"oneof=auto lines spinner bar none"`
	// Format selects how results are rendered.
	Format string `validate:"oneof=text table"`
	// Timeout bounds the barrier wait. Zero means no limit.
	Timeout time.Duration `validate:"min=0"`
	// MaxAttempts bounds invalid interactive entries. Zero means unbounded.
	MaxAttempts int `validate:"min=0"`

	NoPause bool
	Quiet   bool
	Verbose bool
	NoColor bool
	TUI     bool
	Metrics bool
	Version bool

	ConfigFile string
	EnvFile    string
}

// flagNames maps struct fields to the flag reported in validation errors.
var flagNames = map[string]string{
	"N":           "n",
	"Workers":     "workers",
	"Pool":        "pool",
	"Algo":        "algo",
	"Progress":    "progress",
	"Format":      "format",
	"Timeout":     "timeout",
	"MaxAttempts": "max-attempts",
}

var validate = validator.New()

// ParseConfig parses the command-line arguments and applies, in increasing
// priority, the HCL config file, FIBSEQ_* environment variables and the
// explicitly set flags on top of the defaults.
//
// Parameters:
//   - programName: The name of the program (usually os.Args[0]).
//   - args: The command-line arguments (excluding the program name).
//   - errorWriter: The writer for usage and error messages.
//   - availableAlgos: The calculator keys accepted by --algo.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp for --help, or a ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.IntVar(&config.N, "n", 0, "Sequence length in [1, 64]. Prompts interactively when 0.")
	fs.IntVar(&config.Workers, "workers", 0, "Worker pool size (0 = number of CPUs).")
	fs.IntVar(&config.Workers, "w", 0, "Worker pool size (shorthand).")
	fs.StringVar(&config.Pool, "pool", DefaultPool, "Worker pool backend: errgroup, pond, ants, workerpool.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, fmt.Sprintf("Algorithm: %s.", strings.Join(availableAlgos, ", ")))
	fs.StringVar(&config.Progress, "progress", DefaultProgress, "Progress display: auto, lines, spinner, bar, none.")
	fs.StringVar(&config.Format, "format", DefaultFormat, "Result format: text, table.")
	fs.DurationVar(&config.Timeout, "timeout", 0, "Maximum time to wait for all tasks (0 = no limit).")
	fs.IntVar(&config.MaxAttempts, "max-attempts", 0, "Maximum invalid interactive entries (0 = unlimited).")
	fs.BoolVar(&config.NoPause, "no-pause", false, "Do not wait for Enter before exiting.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the sequence line.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable debug logging.")
	fs.BoolVar(&config.Verbose, "v", false, "Verbose mode (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&config.TUI, "tui", false, "Run the interactive dashboard.")
	fs.BoolVar(&config.Metrics, "metrics", false, "Dump Prometheus metrics to stderr after the run.")
	fs.BoolVar(&config.Version, "version", false, "Print version information and exit.")
	fs.BoolVar(&config.Version, "V", false, "Print version (shorthand).")
	fs.StringVar(&config.ConfigFile, "config", "", "Path to an HCL configuration file.")
	fs.StringVar(&config.EnvFile, "env-file", "", "Path to a dotenv file loaded before reading FIBSEQ_* variables.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config, err
		}
		return config, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return config, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if config.Version {
		return config, nil
	}

	if !isFlagSet(fs, "env-file") {
		config.EnvFile = os.Getenv(EnvPrefix + "ENV_FILE")
	}
	if config.EnvFile != "" {
		if err := godotenv.Load(config.EnvFile); err != nil {
			return config, apperrors.NewConfigError("loading env file %q: %v", config.EnvFile, err)
		}
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = os.Getenv(EnvPrefix + "CONFIG")
	}
	if config.ConfigFile != "" {
		fc, err := LoadFile(config.ConfigFile)
		if err != nil {
			return config, err
		}
		applyFileOverrides(&config, fc, fs)
	}

	for _, key := range applyEnvOverrides(&config, fs) {
		fmt.Fprintf(errorWriter, "ignoring %s: unparsable value %q\n", key, os.Getenv(key))
	}

	if err := config.Validate(availableAlgos); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks field ranges and enumerations and the algorithm name.
func (c AppConfig) Validate(availableAlgos []string) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			name := flagNames[fe.StructField()]
			if fe.Param() != "" {
				return apperrors.NewConfigError("invalid value %v for --%s (%s=%s)", fe.Value(), name, fe.Tag(), fe.Param())
			}
			return apperrors.NewConfigError("invalid value %v for --%s (%s)", fe.Value(), name, fe.Tag())
		}
		return apperrors.NewConfigError("invalid configuration: %v", err)
	}
	if len(availableAlgos) > 0 && !slices.Contains(availableAlgos, strings.ToLower(c.Algo)) {
		return apperrors.NewConfigError("unknown algorithm %q (available: %s)", c.Algo, strings.Join(availableAlgos, ", "))
	}
	if c.TUI && c.Quiet {
		return apperrors.NewConfigError("--tui cannot be combined with --quiet")
	}
	return nil
}
