package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fibseq/internal/config"
	"github.com/agbru/fibseq/internal/ui"
)

// PrintExecutionConfig displays the current execution configuration to the user.
// It shows the sequence length, the pool backend and size, the algorithm and
// the environment details.
//
// Parameters:
//   - cfg: The application configuration, with N and Workers resolved.
//   - algoName: The display name of the selected calculator.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, algoName string, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Computing %sF(1)..F(%d)%s with the %s%s%s algorithm.\n",
		ui.ColorMagenta(), cfg.N, ui.ColorReset(), ui.ColorGreen(), algoName, ui.ColorReset())
	fmt.Fprintf(out, "Worker pool: %s%s%s with %s%d%s workers.\n",
		ui.ColorCyan(), cfg.Pool, ui.ColorReset(), ui.ColorCyan(), cfg.Workers, ui.ColorReset())
	timeout := "none"
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout.String()
	}
	fmt.Fprintf(out, "Timeout: %s%s%s.\n", ui.ColorYellow(), timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
