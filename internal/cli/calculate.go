package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fibcost/internal/config"
	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/ui"
)

// SlowRecursionThreshold is the index above which the recursive algorithm
// typically needs more than a second.
const SlowRecursionThreshold = 40

// GetCalculatorsToRun returns the calculators selected by cfg.Algo, in the
// factory's sorted order when "all" is selected.
func GetCalculatorsToRun(cfg config.AppConfig, factory fibonacci.CalculatorFactory) []fibonacci.Calculator {
	if cfg.Algo == "all" {
		keys := factory.List()
		calculators := make([]fibonacci.Calculator, 0, len(keys))
		for _, k := range keys {
			if calc, err := factory.Get(k); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(cfg.Algo); err == nil {
		return []fibonacci.Calculator{calc}
	}
	return nil
}

// PrintExecutionConfig displays the target index, the timeout, the runtime
// environment and, when the recursive algorithm is selected, the number of
// calls it is going to make.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Calculating %sF(%d)%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.N, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())

	if cfg.Algo != "all" && cfg.Algo != fibonacci.RecursiveName {
		return
	}
	expected, err := fibonacci.RecursiveCost(cfg.N)
	if err != nil {
		fmt.Fprintf(out, "Recursive algorithm: %s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	fmt.Fprintf(out, "Expected recursive cost: %s%s%s calls.\n",
		ui.CostColor(expected, cfg.N), FormatNumber(expected), ui.ColorReset())
	if cfg.N > SlowRecursionThreshold {
		fmt.Fprintf(out, "%sWarning:%s the recursive algorithm grows exponentially; F(%d) may hit the timeout.\n",
			ui.ColorYellow(), ui.ColorReset(), cfg.N)
	}
}

// PrintExecutionMode displays whether one algorithm runs or several are
// compared.
func PrintExecutionMode(calculators []fibonacci.Calculator, out io.Writer) {
	var modeDesc string
	switch len(calculators) {
	case 0:
		modeDesc = "No algorithm selected"
	case 1:
		modeDesc = fmt.Sprintf("Single calculation with the %s%s%s algorithm",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset())
	default:
		modeDesc = "Concurrent comparison of all algorithms"
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
