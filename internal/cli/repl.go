// Package cli provides the REPL (Read-Eval-Print Loop) functionality
// for interactive Fibonacci calculations.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/ui"
)

// SweepFunc measures every index in [from, to] and prints the cost table.
type SweepFunc func(ctx context.Context, from, to int, out io.Writer) error

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultAlgo is the default algorithm to use for calculations.
	DefaultAlgo string
	// Timeout is the maximum duration for each calculation.
	Timeout time.Duration
	// Sweep runs the "sweep" command. The command is unavailable when nil.
	Sweep SweepFunc
}

// REPL represents an interactive Fibonacci calculator session.
type REPL struct {
	config      REPLConfig
	registry    map[string]fibonacci.Calculator
	names       []string
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a new REPL instance over the given calculators.
func NewREPL(registry map[string]fibonacci.Calculator, config REPLConfig) *REPL {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	currentAlgo := config.DefaultAlgo
	if _, ok := registry[currentAlgo]; !ok && len(names) > 0 {
		currentAlgo = names[0]
		if _, ok := registry[fibonacci.IterativeName]; ok {
			currentAlgo = fibonacci.IterativeName
		}
	}

	return &REPL{
		config:      config,
		registry:    registry,
		names:       names,
		currentAlgo: currentAlgo,
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads and executes commands until "exit" or EOF.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"fib> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			continue
		}
		eof := errors.Is(err, io.EOF)

		if input = strings.TrimSpace(input); input != "" {
			if !r.processCommand(input) {
				return
			}
		}
		if eof {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sFibonacci Cost Calculator - Interactive Mode%s         %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	y, rst := ui.ColorYellow(), ui.ColorReset()
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), rst)
	fmt.Fprintf(r.out, "  %scalc <n>%s         - Calculate F(n) and its cost with the current algorithm\n", y, rst)
	fmt.Fprintf(r.out, "  %salgo <name>%s      - Change algorithm (%s)\n", y, rst, strings.Join(r.names, ", "))
	fmt.Fprintf(r.out, "  %scompare <n>%s      - Compare the cost of all algorithms for F(n)\n", y, rst)
	if r.config.Sweep != nil {
		fmt.Fprintf(r.out, "  %ssweep <from> <to>%s - Tabulate costs over a range of indices\n", y, rst)
	}
	fmt.Fprintf(r.out, "  %slist%s             - List available algorithms\n", y, rst)
	fmt.Fprintf(r.out, "  %sstatus%s           - Display current configuration\n", y, rst)
	fmt.Fprintf(r.out, "  %shelp%s             - Display this help\n", y, rst)
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s     - Exit interactive mode\n", y, rst, y, rst)
}

// processCommand executes one input line. It returns false on exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "calc", "c":
		if n, ok := r.parseIndexArg("calc <n>", args); ok {
			r.calculate(n)
		}
	case "algo", "a":
		r.cmdAlgo(args)
	case "compare", "cmp":
		if n, ok := r.parseIndexArg("compare <n>", args); ok {
			r.compare(n)
		}
	case "sweep":
		r.cmdSweep(args)
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			r.calculate(n)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
		}
	}

	return true
}

func (r *REPL) parseIndexArg(usage string, args []string) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: %s%s\n", ui.ColorRed(), usage, ui.ColorReset())
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return 0, false
	}
	return n, true
}

// calculate runs the current algorithm for n with a progress display.
func (r *REPL) calculate(n int) {
	calc, ok := r.registry[r.currentAlgo]
	if !ok {
		fmt.Fprintf(r.out, "%sAlgorithm not found: %s%s\n", ui.ColorRed(), r.currentAlgo, ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	fmt.Fprintf(r.out, "Calculating F(%s%d%s) with %s%s%s...\n",
		ui.ColorMagenta(), n, ui.ColorReset(),
		ui.ColorCyan(), calc.Name(), ui.ColorReset())

	progressChan := make(chan fibonacci.ProgressUpdate, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	m, err := calc.Calculate(ctx, progressChan, 0, n)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sResult:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  F(%d) = %s%s%s\n", m.N, ui.ColorGreen(), FormatNumber(m.Result), ui.ColorReset())
	fmt.Fprintf(r.out, "  Cost:  %s%s%s %s\n", ui.CostColor(m.Cost, n), FormatNumber(m.Cost), ui.ColorReset(), CostUnit(r.currentAlgo))
	fmt.Fprintf(r.out, "  Time:  %s%s%s\n", ui.ColorGreen(), FormatExecutionDuration(m.Duration), ui.ColorReset())
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ui.ColorRed(), ui.ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", strings.Join(r.names, ", "))
		return
	}

	name := strings.ToLower(args[0])
	if _, ok := r.registry[name]; !ok {
		fmt.Fprintf(r.out, "%sUnknown algorithm: %s%s\n", ui.ColorRed(), name, ui.ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", strings.Join(r.names, ", "))
		return
	}

	r.currentAlgo = name
	fmt.Fprintf(r.out, "Algorithm changed to: %s%s%s\n", ui.ColorGreen(), r.registry[name].Name(), ui.ColorReset())
}

// compare runs every algorithm sequentially for n and checks that the
// results agree.
func (r *REPL) compare(n int) {
	fmt.Fprintf(r.out, "\n%sComparison for F(%d):%s\n", ui.ColorBold(), n, ui.ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────%s\n", ui.ColorCyan(), ui.ColorReset())

	var (
		first    uint64
		haveBase bool
	)
	for _, name := range r.names {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
		m, err := r.registry[name].Calculate(ctx, nil, 0, n)
		cancel()

		if err != nil {
			fmt.Fprintf(r.out, "  %s%-10s%s: %sError - %v%s\n",
				ui.ColorYellow(), name, ui.ColorReset(), ui.ColorRed(), err, ui.ColorReset())
			continue
		}

		if !haveBase {
			first, haveBase = m.Result, true
		}
		status := ui.ColorGreen() + "✓" + ui.ColorReset()
		if m.Result != first {
			status = ui.ColorRed() + "✗ INCONSISTENT" + ui.ColorReset()
		}

		fmt.Fprintf(r.out, "  %s%-10s%s: %s%12s%s  cost %s%s%s %s\n",
			ui.ColorYellow(), name, ui.ColorReset(),
			ui.ColorCyan(), FormatExecutionDuration(m.Duration), ui.ColorReset(),
			ui.CostColor(m.Cost, n), FormatNumber(m.Cost), ui.ColorReset(),
			status)
	}

	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) cmdSweep(args []string) {
	if r.config.Sweep == nil {
		fmt.Fprintf(r.out, "%sSweep is not available in this session.%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	if len(args) != 2 {
		fmt.Fprintf(r.out, "%sUsage: sweep <from> <to>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || from < 0 || to < from {
		fmt.Fprintf(r.out, "%sInvalid range: %s %s%s\n", ui.ColorRed(), args[0], args[1], ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()
	if err := r.config.Sweep(ctx, from, to, r.out); err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable algorithms:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, name := range r.names {
		marker := "  "
		if name == r.currentAlgo {
			marker = ui.ColorGreen() + "► " + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ui.ColorYellow(), name, ui.ColorReset(), r.registry[name].Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Algorithm:  %s%s%s\n", ui.ColorCyan(), r.currentAlgo, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:    %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintln(r.out)
}
