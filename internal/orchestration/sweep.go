package orchestration

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibcost/internal/cli"
	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/service"
	"github.com/agbru/fibcost/internal/ui"
)

// SweepRow holds the runs of every calculator for one index.
type SweepRow struct {
	N       int
	Results []CalculationResult
}

// ExecuteSweep measures every calculator for each n in [from, to]. At most
// runtime.NumCPU() indices run at once; the runs for one index are sequential.
//
// An index an algorithm rejects is recorded in its CalculationResult and the
// sweep goes on. A context error stops the sweep and is returned.
func ExecuteSweep(ctx context.Context, calculators []fibonacci.Calculator, from, to int) ([]SweepRow, error) {
	if from < 0 || to < from {
		return nil, apperrors.NewConfigError("invalid sweep range [%d, %d]", from, to)
	}

	rows := make([]SweepRow, to-from+1)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range rows {
		n := from + i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := SweepRow{N: n, Results: make([]CalculationResult, len(calculators))}
			for j, calc := range calculators {
				m, err := calc.Calculate(ctx, nil, j, n)
				if err != nil && apperrors.IsContextError(err) {
					return apperrors.NewCalculationError(calc.Name(), n, err)
				}
				row.Results[j] = CalculationResult{Name: calc.Name(), Measurement: m, Err: err}
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// PrintSweep renders the cost of every algorithm per index, with the ratio
// to the previous index. A ratio near 1 means linear growth; a ratio near
// 1.618 means exponential growth.
func PrintSweep(rows []SweepRow, out io.Writer) {
	if len(rows) == 0 {
		return
	}

	fmt.Fprintf(out, "\n--- Cost Sweep F(%d)..F(%d) ---\n", rows[0].N, rows[len(rows)-1].N)
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)

	header := []string{"n", "F(n)"}
	for _, res := range rows[0].Results {
		header = append(header, res.Name, "ratio")
	}
	fmt.Fprintf(tw, "%s\t\n", strings.Join(header, "\t"))

	for i, row := range rows {
		cells := []string{fmt.Sprintf("%d", row.N), "-"}
		for j, res := range row.Results {
			if res.Err != nil {
				cells = append(cells, "n/a", "-")
				continue
			}
			cells[1] = cli.FormatNumber(res.Measurement.Result)
			cells = append(cells,
				ui.CostColor(res.Measurement.Cost, row.N)+cli.FormatNumber(res.Measurement.Cost)+ui.ColorReset(),
				costRatio(rows, i, j))
		}
		fmt.Fprintf(tw, "%s\t\n", strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}
}

// costRatio is cost(n)/cost(n-1) for calculator j, or "-" when the previous
// row is missing or failed.
func costRatio(rows []SweepRow, i, j int) string {
	if i == 0 || j >= len(rows[i-1].Results) {
		return "-"
	}
	prev := rows[i-1].Results[j]
	if prev.Err != nil || prev.Measurement.Cost == 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", float64(rows[i].Results[j].Measurement.Cost)/float64(prev.Measurement.Cost))
}

// SweepCalculations flattens a sweep into a single list, index by index.
func SweepCalculations(rows []SweepRow) []CalculationResult {
	var out []CalculationResult
	for _, row := range rows {
		out = append(out, row.Results...)
	}
	return out
}

// NewSweepFunc binds calculators to a cli.SweepFunc for the REPL.
func NewSweepFunc(calculators []fibonacci.Calculator) cli.SweepFunc {
	return func(ctx context.Context, from, to int, out io.Writer) error {
		rows, err := ExecuteSweep(ctx, calculators, from, to)
		if err != nil {
			return err
		}
		PrintSweep(rows, out)
		return nil
	}
}

// limitedCalculator refuses indices above maxN without running them.
type limitedCalculator struct {
	fibonacci.Calculator
	maxN int
}

func (c limitedCalculator) Calculate(ctx context.Context, progressChan chan<- fibonacci.ProgressUpdate, calcIndex int, n int) (fibonacci.Measurement, error) {
	if n > c.maxN {
		return fibonacci.Measurement{N: n}, fmt.Errorf("%w: limit is %d, got %d", service.ErrMaxValueExceeded, c.maxN, n)
	}
	return c.Calculator.Calculate(ctx, progressChan, calcIndex, n)
}

// LimitIndex caps calc at maxN so that a sweep over a wide range records the
// slow indices as failed cells instead of running into the timeout. A
// non-positive maxN leaves calc unchanged.
func LimitIndex(calc fibonacci.Calculator, maxN int) fibonacci.Calculator {
	if maxN <= 0 {
		return calc
	}
	return limitedCalculator{Calculator: calc, maxN: maxN}
}
