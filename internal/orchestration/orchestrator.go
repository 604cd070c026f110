// Package orchestration runs Fibonacci calculators concurrently, compares
// their results and costs, and tabulates cost growth over a range of indices.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibcost/internal/cli"
	"github.com/agbru/fibcost/internal/config"
	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/ui"
	"github.com/agbru/fibcost/pkg/models"
)

// CalculationResult encapsulates the outcome of a single Fibonacci calculation.
type CalculationResult struct {
	// Name is the display name of the algorithm (e.g., "Naive Recursion").
	Name string
	// Measurement holds F(n), the cost and the duration. Result and Cost are
	// zero if an error occurred.
	Measurement fibonacci.Measurement
	// Err contains any error that occurred during the calculation.
	Err error
}

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of blocking calculation
// goroutines when the UI is slow to consume updates.
const ProgressBufferMultiplier = 5

// ExecuteCalculations runs every calculator for cfg.N concurrently while
// cli.DisplayProgress renders their progress to out.
//
// Each algorithm is single-threaded; concurrency only exists between the
// runs. A failing calculator does not cancel the others.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - calculators: A slice of calculators to execute.
//   - cfg: The application configuration.
//   - out: The io.Writer for displaying progress updates.
//
// Returns:
//   - []CalculationResult: One result per calculator, in input order.
func ExecuteCalculations(ctx context.Context, calculators []fibonacci.Calculator, cfg config.AppConfig, out io.Writer) []CalculationResult {
	var g errgroup.Group
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan fibonacci.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	for i, calc := range calculators {
		idx, calculator := i, calc
		g.Go(func() error {
			m, err := calculator.Calculate(ctx, progressChan, idx, cfg.N)
			results[idx] = CalculationResult{Name: calculator.Name(), Measurement: m, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults prints a summary table of the runs, checks that
// every successful run agrees on F(n) and displays the result.
//
// Parameters:
//   - results: The slice of calculation results to analyze.
//   - cfg: The application configuration.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []CalculationResult, cfg config.AppConfig, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Measurement.Duration < results[j].Measurement.Duration
	})

	var firstValid *CalculationResult
	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sDuration%s\t%sCost%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())

	for i := range results {
		res := &results[i]
		var status, cost string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			cost = "-"
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			cost = ui.CostColor(res.Measurement.Cost, cfg.N) + cli.FormatNumber(res.Measurement.Cost) + ui.ColorReset()
			successCount++
			if firstValid == nil {
				firstValid = res
			}
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), cli.FormatExecutionDuration(res.Measurement.Duration), ui.ColorReset(),
			cost, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the calculation.\n")
		return apperrors.HandleCalculationError(classifyError(firstError, cfg.N), 0, out, cli.CLIColorProvider{})
	}

	if !Consistent(results) {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the results of the algorithms.\n")
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	cli.DisplayResult(firstValid.Measurement, firstValid.Name, cfg.Details, out)
	return apperrors.ExitSuccess
}

// classifyError reports an index rejected by an algorithm as invalid input.
func classifyError(err error, n int) error {
	if errors.Is(err, fibonacci.ErrNegativeIndex) || errors.Is(err, fibonacci.ErrIndexTooLarge) {
		return apperrors.WrapValidationError("n", n, err)
	}
	return err
}

// Consistent reports whether every successful result holds the same F(n).
// Failed results are ignored.
func Consistent(results []CalculationResult) bool {
	first := FirstSuccess(results)
	if first == nil {
		return true
	}
	for _, res := range results {
		if res.Err == nil && res.Measurement.Result != first.Measurement.Result {
			return false
		}
	}
	return true
}

// FirstSuccess returns the fastest successful result, or nil.
func FirstSuccess(results []CalculationResult) *CalculationResult {
	var best *CalculationResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if best == nil || results[i].Measurement.Duration < best.Measurement.Duration {
			best = &results[i]
		}
	}
	return best
}

// ToCalculations converts results to their JSON records.
func ToCalculations(results []CalculationResult) []models.Calculation {
	out := make([]models.Calculation, len(results))
	for i, res := range results {
		m := res.Measurement
		out[i] = models.NewCalculation(res.Name, m.N, m.Result, m.Cost, m.Duration, res.Err)
	}
	return out
}
