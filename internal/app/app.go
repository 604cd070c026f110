package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/agbru/fibcost/internal/cli"
	"github.com/agbru/fibcost/internal/config"
	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/logging"
	"github.com/agbru/fibcost/internal/orchestration"
	"github.com/agbru/fibcost/internal/server"
	"github.com/agbru/fibcost/internal/ui"
	"github.com/agbru/fibcost/pkg/models"
)

// Application represents the fibcost application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (CLI, sweep, server, REPL).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the Fibonacci calculator implementations.
	Factory fibonacci.CalculatorFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments
// and configures the global logger from -log-level.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := fibonacci.GlobalFactory()

	programName := "fibcost"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(errWriter, "Configuration error:", err)
		return nil, apperrors.NewConfigError("%v", err)
	}
	// JSON lines in server mode, console output otherwise.
	logging.Setup(level, errWriter, !cfg.ServerMode)

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// Run executes the application based on the configured mode.
// It dispatches to the appropriate handler (completion, server, REPL,
// sweep or calculation).
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	// Respects --no-color and the NO_COLOR env var.
	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.ServerMode:
		return a.runServer()
	case a.Config.Interactive:
		return a.runREPL()
	case a.Config.Sweep:
		return a.runSweep(ctx, out)
	default:
		return a.runCalculate(ctx, out)
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer starts the HTTP server mode.
func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config,
		server.WithLogger(logging.NewLogger(os.Stdout, "server")))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive REPL mode. Its sweep command runs every
// algorithm, with the recursive one capped like in -sweep mode.
func (a *Application) runREPL() int {
	all := a.Config
	all.Algo = config.DefaultAlgo
	repl := cli.NewREPL(a.Factory.GetAll(), cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Timeout:     a.Config.Timeout,
		Sweep:       orchestration.NewSweepFunc(a.sweepCalculators(all)),
	})
	repl.Start()
	return apperrors.ExitSuccess
}

// sweepCalculators returns the calculators selected by cfg, with the
// recursive one limited to cfg.MaxRecursiveN.
func (a *Application) sweepCalculators(cfg config.AppConfig) []fibonacci.Calculator {
	names := []string{cfg.Algo}
	if cfg.Algo == config.DefaultAlgo {
		names = a.Factory.List()
	}

	calculators := make([]fibonacci.Calculator, 0, len(names))
	for _, name := range names {
		calc, err := a.Factory.Get(name)
		if err != nil {
			continue
		}
		if name == fibonacci.RecursiveName {
			calc = orchestration.LimitIndex(calc, cfg.MaxRecursiveN)
		}
		calculators = append(calculators, calc)
	}
	return calculators
}

// runSweep measures the selected algorithms for every index in [0, n].
func (a *Application) runSweep(ctx context.Context, out io.Writer) int {
	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	calculators := a.sweepCalculators(a.Config)
	if !a.Config.JSONOutput && !a.Config.Quiet {
		fmt.Fprintf(out, "Sweeping F(0)..F(%d) with a timeout of %s.\n", a.Config.N, a.Config.Timeout)
		if a.Config.MaxRecursiveN > 0 && a.Config.N > a.Config.MaxRecursiveN {
			fmt.Fprintf(out, "%sRecursive runs above n = %d are skipped (-max-recursive-n).%s\n",
				ui.ColorYellow(), a.Config.MaxRecursiveN, ui.ColorReset())
		}
	}

	log.Debug().Int("from", 0).Int("to", a.Config.N).Int("calculators", len(calculators)).Msg("starting sweep")
	rows, err := orchestration.ExecuteSweep(ctx, calculators, 0, a.Config.N)
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, out, cli.CLIColorProvider{})
	}

	if a.Config.JSONOutput {
		return printJSON(orchestration.ToCalculations(orchestration.SweepCalculations(rows)), out)
	}
	orchestration.PrintSweep(rows, out)
	return apperrors.ExitSuccess
}

// runCalculate orchestrates the execution of the CLI calculation command.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	calculatorsToRun := cli.GetCalculatorsToRun(a.Config, a.Factory)

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(calculatorsToRun, out)
	}

	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	results := orchestration.ExecuteCalculations(ctx, calculatorsToRun, a.Config, progressOut)

	if a.Config.JSONOutput {
		code := printJSON(orchestration.ToCalculations(results), out)
		if code == apperrors.ExitSuccess && !orchestration.Consistent(results) {
			fmt.Fprintln(a.ErrWriter, "Error: the algorithms returned different results.")
			return apperrors.ExitErrorMismatch
		}
		return code
	}
	return a.analyzeResultsWithOutput(results, out)
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.CalculationResult, out io.Writer) int {
	// AnalyzeComparisonResults reorders results, so keep a copy.
	var best *orchestration.CalculationResult
	if first := orchestration.FirstSuccess(results); first != nil {
		res := *first
		best = &res
	}

	if a.Config.Quiet && best != nil {
		if !orchestration.Consistent(results) {
			fmt.Fprintln(a.ErrWriter, "Error: the algorithms returned different results.")
			return apperrors.ExitErrorMismatch
		}
		cli.DisplayQuietResult(out, best.Measurement)
		if err := a.saveResultIfNeeded(best); err != nil {
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, a.Config, out)

	if best != nil && exitCode == apperrors.ExitSuccess && a.Config.OutputFile != "" {
		if err := a.saveResultIfNeeded(best); err != nil {
			return apperrors.ExitErrorGeneric
		}
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
	}

	return exitCode
}

func (a *Application) saveResultIfNeeded(res *orchestration.CalculationResult) error {
	if a.Config.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(res.Measurement, res.Name, a.Config.OutputFile); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return err
	}
	return nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// printJSON writes the records as an indented JSON array. It fails when
// records is non-empty and none of them succeeded.
func printJSON(records []models.Calculation, out io.Writer) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return apperrors.ExitErrorGeneric
	}
	for _, rec := range records {
		if rec.Succeeded() {
			return apperrors.ExitSuccess
		}
	}
	if len(records) > 0 {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
