// Package cli provides the terminal front end of fibcost: the progress
// spinner shown while calculators run, result and cost formatting, file and
// quiet output, the interactive REPL and shell completion scripts.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/ui"
)

const (
	// ProgressRefreshRate is the refresh period of the spinner line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// FormatExecutionDuration formats a duration with a unit suited to its
// magnitude: microseconds below a millisecond, milliseconds below a second.
// A zero duration is shown as "< 1µs".
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "< 1µs"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a real terminal.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// progressBar renders progress (clamped to [0, 1]) as a bar of length runes.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

func progressLabel(numCalculators int) string {
	if numCalculators > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress renders a spinner with the average progress of
// numCalculators concurrent runs until progressChan is closed, then prints
// a final 100% line. It is meant to run in its own goroutine and calls
// wg.Done on return.
//
// Only the recursive algorithm reports intermediate progress; the iterative
// one jumps straight to completion.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan fibonacci.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressState(numCalculators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	label := progressLabel(numCalculators)
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				spinnerStopped = true
				fmt.Fprintf(out, "%s: %6.2f%% [%s]\n", label, 100.0, progressBar(1.0, ProgressBarWidth))
				return
			}
			state.Update(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			avg := state.Average()
			s.UpdateSuffix(fmt.Sprintf(" %s: %6.2f%% [%s] ETA: %s",
				label, avg*100, progressBar(avg, ProgressBarWidth), FormatETA(state.ETA())))
		}
	}
}

// DisplayResult prints F(n) and, with details, the digit count, the time
// taken and the cost of the run that produced it.
func DisplayResult(m fibonacci.Measurement, algo string, details bool, out io.Writer) {
	fmt.Fprintf(out, "\n%s--- Result ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "F(%s%d%s) = %s%s%s\n",
		ui.ColorMagenta(), m.N, ui.ColorReset(),
		ui.ColorGreen(), FormatNumber(m.Result), ui.ColorReset())

	if !details {
		return
	}
	fmt.Fprintf(out, "\n%s--- Details (%s) ---%s\n", ui.ColorBold(), algo, ui.ColorReset())
	fmt.Fprintf(out, "Number of digits : %s%d%s\n", ui.ColorCyan(), len(strconv.FormatUint(m.Result, 10)), ui.ColorReset())
	fmt.Fprintf(out, "Calculation time : %s%s%s\n", ui.ColorGreen(), FormatExecutionDuration(m.Duration), ui.ColorReset())
	fmt.Fprintf(out, "Cost             : %s%s%s %s\n",
		ui.CostColor(m.Cost, m.N), FormatNumber(m.Cost), ui.ColorReset(), CostUnit(algo))
	if m.Cost > 0 && m.Duration > 0 {
		perStep := float64(m.Duration.Nanoseconds()) / float64(m.Cost)
		fmt.Fprintf(out, "Time per step    : %s%.1fns%s\n", ui.ColorCyan(), perStep, ui.ColorReset())
	}
}

// CostUnit names what the cost of an algorithm counts.
func CostUnit(algo string) string {
	if strings.Contains(strings.ToLower(algo), "recurs") {
		return "calls"
	}
	return "steps"
}

// FormatNumber renders v with thousands separators.
func FormatNumber(v uint64) string {
	return formatNumberString(strconv.FormatUint(v, 10))
}

// formatNumberString inserts thousands separators into a string of digits.
func formatNumberString(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var builder strings.Builder
	builder.Grow(n + (n-1)/3)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])
	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
