package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints only "result cost".
	Quiet bool
	// Details adds per-run details to the standard display.
	Details bool
}

// WriteResultToFile saves a measurement to path, creating parent
// directories as needed.
func WriteResultToFile(m fibonacci.Measurement, algo, path string) error {
	if path == "" {
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Fibonacci Calculation Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Algorithm: %s\n", algo)
	fmt.Fprintf(file, "# Duration: %s\n", m.Duration)
	fmt.Fprintf(file, "# N: %d\n\n", m.N)
	fmt.Fprintf(file, "F(%d) = %d\n", m.N, m.Result)
	if _, err := fmt.Fprintf(file, "cost = %d %s\n", m.Cost, CostUnit(algo)); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}

// FormatQuietResult returns "result cost" for scripts.
func FormatQuietResult(m fibonacci.Measurement) string {
	return fmt.Sprintf("%d %d", m.Result, m.Cost)
}

// DisplayQuietResult prints FormatQuietResult on its own line.
func DisplayQuietResult(out io.Writer, m fibonacci.Measurement) {
	fmt.Fprintln(out, FormatQuietResult(m))
}

// DisplayResultWithConfig prints a single measurement according to cfg and
// saves it to cfg.OutputFile when set.
func DisplayResultWithConfig(out io.Writer, m fibonacci.Measurement, algo string, cfg OutputConfig) error {
	if cfg.Quiet {
		DisplayQuietResult(out, m)
	} else {
		DisplayResult(m, algo, cfg.Details, out)
	}

	if cfg.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(m, algo, cfg.OutputFile); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
	}
	return nil
}
