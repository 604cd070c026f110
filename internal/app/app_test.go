package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/fibcost/internal/config"
	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/logging"
	"github.com/agbru/fibcost/internal/service"
	"github.com/agbru/fibcost/internal/testutil"
	"github.com/agbru/fibcost/pkg/models"
)

// createMockFactory returns a factory whose "iterative" and "recursive"
// entries share one canned calculator.
func createMockFactory(m fibonacci.Measurement, err error) *fibonacci.TestFactory {
	mockCalc := &fibonacci.MockCalculator{Measurement: m, Err: err}
	return fibonacci.NewTestFactory(map[string]fibonacci.Calculator{
		fibonacci.IterativeName: mockCalc,
		fibonacci.RecursiveName: mockCalc,
	})
}

func blockingFactory() *fibonacci.TestFactory {
	mockCalc := &fibonacci.MockCalculator{
		Fn: func(ctx context.Context, n int) (fibonacci.Measurement, error) {
			<-ctx.Done()
			return fibonacci.Measurement{N: n}, ctx.Err()
		},
	}
	return fibonacci.NewTestFactory(map[string]fibonacci.Calculator{fibonacci.IterativeName: mockCalc})
}

func newTestApp(cfg config.AppConfig, factory fibonacci.CalculatorFactory) *Application {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Algo == "" {
		cfg.Algo = config.DefaultAlgo
	}
	return &Application{Config: cfg, Factory: factory, ErrWriter: &bytes.Buffer{}}
}

// TestNew tests the New function for creating Application instances. It
// configures the global logger, so it does not run in parallel.
func TestNew(t *testing.T) {
	t.Cleanup(func() { logging.Setup(zerolog.InfoLevel, io.Discard, false) })

	t.Run("Valid args create application", func(t *testing.T) {
		var errBuf bytes.Buffer
		app, err := New([]string{"fibcost", "-n", "25", "-algo", "recursive"}, &errBuf)
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}
		if app.Config.N != 25 || app.Config.Algo != "recursive" {
			t.Errorf("unexpected config: %+v", app.Config)
		}
		if app.Factory == nil {
			t.Error("Factory should not be nil")
		}
	})

	t.Run("Invalid args return error", func(t *testing.T) {
		app, err := New([]string{"fibcost", "-invalid-flag"}, &bytes.Buffer{})
		if err == nil || app != nil {
			t.Errorf("New() = %v, %v; want nil, error", app, err)
		}
	})

	t.Run("Index beyond uint64 range is a config error", func(t *testing.T) {
		_, err := New([]string{"fibcost", "-n", "94"}, &bytes.Buffer{})
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", err, apperrors.ExitCodeFor(err), apperrors.ExitErrorConfig)
		}
	})

	t.Run("Invalid log level", func(t *testing.T) {
		var errBuf bytes.Buffer
		_, err := New([]string{"fibcost", "-log-level", "loud"}, &errBuf)
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
			t.Errorf("expected a config error, got %v", err)
		}
		if !strings.Contains(errBuf.String(), "invalid log level") {
			t.Errorf("errWriter should explain the failure, got %q", errBuf.String())
		}
	})

	t.Run("Help flag returns error", func(t *testing.T) {
		_, err := New([]string{"fibcost", "-h"}, &bytes.Buffer{})
		if !IsHelpError(err) {
			t.Errorf("expected flag.ErrHelp, got %v", err)
		}
	})

	t.Run("Empty args use defaults", func(t *testing.T) {
		app, err := New(nil, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New(nil) returned error: %v", err)
		}
		if app.Config.N != config.DefaultN {
			t.Errorf("N = %d, want %d", app.Config.N, config.DefaultN)
		}
	})
}

// TestApplicationRun runs the calculation mode against the real calculators.
func TestApplicationRun(t *testing.T) {
	t.Parallel()

	t.Run("Comparison of both algorithms", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 20, Details: true, NoColor: true}, fibonacci.NewDefaultFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d, output:\n%s", code, outBuf.String())
		}
		testutil.AssertContainsPlain(t, outBuf.String(),
			"Expected recursive cost: 13,529 calls.",
			"Concurrent comparison of all algorithms",
			"Comparison Summary",
			"Global Status: Success",
			"F(20) = 6,765",
		)
	})

	t.Run("Single algorithm", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 10, Algo: "recursive", Details: true}, fibonacci.NewDefaultFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		testutil.AssertContainsPlain(t, outBuf.String(),
			"Single calculation with the Naive Recursion algorithm",
			"F(10) = 55",
			"109 calls",
		)
	})

	t.Run("Mismatch between algorithms", func(t *testing.T) {
		t.Parallel()
		factory := fibonacci.NewTestFactory(map[string]fibonacci.Calculator{
			"a": &fibonacci.MockCalculator{NameValue: "A", Measurement: fibonacci.Measurement{Result: 55, Cost: 9}},
			"b": &fibonacci.MockCalculator{NameValue: "B", Measurement: fibonacci.Measurement{Result: 56, Cost: 9}},
		})
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 10}, factory)

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitErrorMismatch {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorMismatch)
		}
	})

	for _, mode := range []struct {
		name string
		cfg  config.AppConfig
	}{
		{"JSON", config.AppConfig{N: 10, JSONOutput: true}},
		{"quiet", config.AppConfig{N: 10, Quiet: true}},
	} {
		t.Run("Mismatch in "+mode.name+" mode", func(t *testing.T) {
			t.Parallel()
			factory := fibonacci.NewTestFactory(map[string]fibonacci.Calculator{
				"a": &fibonacci.MockCalculator{NameValue: "A", Measurement: fibonacci.Measurement{N: 10, Result: 55, Cost: 9}},
				"b": &fibonacci.MockCalculator{NameValue: "B", Measurement: fibonacci.Measurement{N: 10, Result: 56, Cost: 9}},
			})
			var outBuf, errBuf bytes.Buffer
			app := newTestApp(mode.cfg, factory)
			app.ErrWriter = &errBuf

			if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitErrorMismatch {
				t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorMismatch)
			}
			if !strings.Contains(errBuf.String(), "different results") {
				t.Errorf("stderr = %q, want a mismatch message", errBuf.String())
			}
		})
	}

	t.Run("Timeout failure", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 10, Algo: "iterative", Timeout: time.Millisecond}, blockingFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitErrorTimeout {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
		}
		testutil.AssertContainsPlain(t, outBuf.String(), "Timeout")
	})

	t.Run("Context cancellation", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 10, Algo: "iterative"}, blockingFactory())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if code := app.Run(ctx, &outBuf); code != apperrors.ExitErrorCanceled {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
		}
	})

	t.Run("JSON output mode", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 12, JSONOutput: true}, fibonacci.NewDefaultFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		var records []models.Calculation
		if err := json.Unmarshal(outBuf.Bytes(), &records); err != nil {
			t.Fatalf("output is not a JSON array: %v\n%s", err, outBuf.String())
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		for _, rec := range records {
			if rec.Result != 144 || rec.N != 12 {
				t.Errorf("unexpected record %+v", rec)
			}
		}
	})

	t.Run("Quiet mode", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 10, Algo: "iterative", Quiet: true}, fibonacci.NewDefaultFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if got := outBuf.String(); got != "55 9\n" {
			t.Errorf("quiet output = %q, want %q", got, "55 9\n")
		}
	})
}

func TestRunSweep(t *testing.T) {
	t.Parallel()

	t.Run("Table", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 12, Sweep: true, MaxRecursiveN: 10}, fibonacci.NewDefaultFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d\n%s", code, outBuf.String())
		}
		testutil.AssertContainsPlain(t, outBuf.String(),
			"Sweeping F(0)..F(12)",
			"Recursive runs above n = 10 are skipped",
			"Cost Sweep F(0)..F(12)",
			"Iterative Loop",
			"Naive Recursion",
			"n/a",
		)
	})

	t.Run("JSON", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 5, Sweep: true, Algo: "iterative", JSONOutput: true}, fibonacci.NewDefaultFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		var records []models.Calculation
		if err := json.Unmarshal(outBuf.Bytes(), &records); err != nil {
			t.Fatal(err)
		}
		if len(records) != 6 {
			t.Fatalf("got %d records, want 6", len(records))
		}
		if records[5].N != 5 || records[5].Result != 5 || records[5].Cost != 4 {
			t.Errorf("unexpected last record %+v", records[5])
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		t.Parallel()
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{N: 3, Sweep: true, Algo: "iterative", Timeout: time.Millisecond}, blockingFactory())

		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitErrorTimeout {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
		}
	})
}

func TestSweepCalculators(t *testing.T) {
	t.Parallel()
	app := newTestApp(config.AppConfig{MaxRecursiveN: 5}, fibonacci.NewDefaultFactory())

	calcs := app.sweepCalculators(app.Config)
	if len(calcs) != 2 {
		t.Fatalf("got %d calculators, want 2", len(calcs))
	}
	if _, err := calcs[1].Calculate(context.Background(), nil, 0, 5); err != nil {
		t.Errorf("F(5) within the limit failed: %v", err)
	}
	if _, err := calcs[1].Calculate(context.Background(), nil, 0, 6); !errors.Is(err, service.ErrMaxValueExceeded) {
		t.Errorf("recursive calculator should be capped at 5, got %v", err)
	}
	if _, err := calcs[0].Calculate(context.Background(), nil, 0, 90); err != nil {
		t.Errorf("iterative calculator should not be capped: %v", err)
	}

	app.Config.Algo = "iterative"
	if got := app.sweepCalculators(app.Config); len(got) != 1 || got[0].Name() != "Iterative Loop" {
		t.Errorf("unexpected calculators for -algo iterative: %v", got)
	}
}

// TestIsHelpError tests the IsHelpError function.
func TestIsHelpError(t *testing.T) {
	t.Parallel()
	_, err := config.ParseConfig("fibcost", []string{"-help"}, &bytes.Buffer{}, []string{"iterative"})
	if !IsHelpError(err) {
		t.Errorf("IsHelpError(%v) = false", err)
	}
	if IsHelpError(errors.New("other")) || IsHelpError(nil) {
		t.Error("IsHelpError should only match flag.ErrHelp")
	}
}

// TestRunCompletion tests completion script generation.
func TestRunCompletion(t *testing.T) {
	t.Parallel()
	for _, shell := range []string{"bash", "zsh", "fish"} {
		var outBuf bytes.Buffer
		app := newTestApp(config.AppConfig{Completion: shell}, fibonacci.NewDefaultFactory())
		if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
			t.Errorf("%s: exit code = %d", shell, code)
		}
		if !strings.Contains(outBuf.String(), "recursive") {
			t.Errorf("%s completion should list the algorithms", shell)
		}
	}
}

func TestRunCompletionInvalid(t *testing.T) {
	t.Parallel()
	var errBuf bytes.Buffer
	app := newTestApp(config.AppConfig{Completion: "powershell"}, fibonacci.NewDefaultFactory())
	app.ErrWriter = &errBuf

	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
	}
	if !strings.Contains(errBuf.String(), "unsupported shell") {
		t.Errorf("unexpected error output %q", errBuf.String())
	}
}

func TestPrintJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	records := []models.Calculation{
		models.NewCalculation("Iterative Loop", 10, 55, 9, time.Microsecond, nil),
		models.NewCalculation("Naive Recursion", 10, 0, 0, time.Second, errors.New("intentional failure")),
	}
	if code := printJSON(records, &buf); code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d", code)
	}
	if !strings.Contains(buf.String(), "intentional failure") {
		t.Errorf("error should be reported in JSON: %s", buf.String())
	}

	if code := printJSON(records[1:], &bytes.Buffer{}); code != apperrors.ExitErrorGeneric {
		t.Errorf("all-failed exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if code := printJSON(nil, &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Errorf("empty exit code = %d", code)
	}
}

func TestAnalyzeResultsWithOutputFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out", "result.txt")

	var outBuf bytes.Buffer
	app := newTestApp(config.AppConfig{N: 10, OutputFile: path}, fibonacci.NewDefaultFactory())
	if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	testutil.AssertContainsPlain(t, outBuf.String(), "Result saved to: "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "F(10) = 55") {
		t.Errorf("file content:\n%s", data)
	}
}

func TestAnalyzeResultsQuietWithOutputFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "quiet.txt")

	var outBuf bytes.Buffer
	app := newTestApp(config.AppConfig{N: 10, Quiet: true, OutputFile: path}, createMockFactory(fibonacci.Measurement{Result: 55, Cost: 9}, nil))
	if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if outBuf.String() != "55 9\n" {
		t.Errorf("quiet output = %q", outBuf.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("result file not written: %v", err)
	}
}

func TestAnalyzeResultsOutputFileError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// A directory cannot be opened as the output file.
	app := newTestApp(config.AppConfig{N: 10, OutputFile: dir}, createMockFactory(fibonacci.Measurement{Result: 55, Cost: 9}, nil))
	var errBuf bytes.Buffer
	app.ErrWriter = &errBuf

	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(errBuf.String(), "Error saving result") {
		t.Errorf("unexpected error output %q", errBuf.String())
	}
}

func TestAllAlgorithmsFail(t *testing.T) {
	t.Parallel()
	var outBuf bytes.Buffer
	app := newTestApp(config.AppConfig{N: 10}, createMockFactory(fibonacci.Measurement{}, fibonacci.ErrIndexTooLarge))

	if code := app.Run(context.Background(), &outBuf); code != apperrors.ExitErrorInput {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorInput)
	}
	testutil.AssertContainsPlain(t, outBuf.String(), "Global Status: Failure")
}

func TestRunServerListenError(t *testing.T) {
	t.Parallel()
	var errBuf bytes.Buffer
	app := newTestApp(config.AppConfig{ServerMode: true, Port: "not-a-port"}, fibonacci.NewDefaultFactory())
	app.ErrWriter = &errBuf

	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(errBuf.String(), "Server error") {
		t.Errorf("unexpected error output %q", errBuf.String())
	}
}
