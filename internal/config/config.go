// Package config provides the configuration management for the fibcost
// application. It defines the configuration structure, parses command-line
// flags, layers environment variables and an optional YAML file underneath
// them, and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/fibonacci"
)

const (
	// EnvPrefix is the prefix for all environment variables used by fibcost.
	EnvPrefix = "FIBCOST_"
)

// Default configuration values.
const (
	// DefaultN is the default Fibonacci index to calculate.
	DefaultN = 30
	// DefaultTimeout is the default calculation timeout.
	DefaultTimeout = time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultAlgo is the default algorithm selection.
	DefaultAlgo = "all"
	// DefaultMaxRecursiveN caps the recursive algorithm in server mode, where
	// an exponential request could otherwise tie up a worker for hours.
	DefaultMaxRecursiveN = 35
	// DefaultLogLevel is the default zerolog level.
	DefaultLogLevel = "info"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N is the index of the Fibonacci number to be calculated.
	N int
	// Details, if true, adds per-algorithm cost and timing details.
	Details bool
	// Timeout sets the maximum duration for the calculation.
	Timeout time.Duration
	// Algo specifies the algorithm to use ("all", "iterative", "recursive").
	Algo string
	// JSONOutput, if true, outputs the results in JSON format.
	JSONOutput bool
	// ServerMode, if true, starts the application as an HTTP server.
	ServerMode bool
	// Port specifies the port to listen on in server mode.
	Port string
	// MaxRecursiveN is the largest index the server accepts for the
	// recursive algorithm.
	MaxRecursiveN int
	// Sweep, if true, measures every index from 0 to N instead of N alone.
	Sweep bool
	// NoColor, if true, disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool
	// OutputFile, if specified, saves the result to this file path.
	OutputFile string
	// Quiet mode prints only "result cost" for scripting purposes.
	Quiet bool
	// Interactive, if true, starts the application in REPL mode.
	Interactive bool
	// Completion, if set, generates a shell completion script for the
	// specified shell ("bash", "zsh", "fish").
	Completion string
	// ConfigFile is the path of an optional YAML configuration file.
	ConfigFile string
	// LogLevel is the zerolog level name.
	LogLevel string
}

// Validate checks the semantic consistency of the configuration parameters.
//
// Parameters:
//   - availableAlgos: The registered algorithm names.
//
// Returns:
//   - error: A ConfigError if the configuration is invalid, nil otherwise.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.N < 0 {
		return apperrors.NewConfigError("n cannot be negative: %d", c.N)
	}
	if c.N > fibonacci.MaxFibUint64 {
		return apperrors.NewConfigError("n must be at most %d, F(%d) does not fit in 64 bits", fibonacci.MaxFibUint64, c.N)
	}
	if c.MaxRecursiveN < 0 || c.MaxRecursiveN > fibonacci.MaxRecursiveIndex {
		return apperrors.NewConfigError("max-recursive-n must be between 0 and %d: %d", fibonacci.MaxRecursiveIndex, c.MaxRecursiveN)
	}
	isAlgoAvailable := false
	for _, a := range availableAlgos {
		if a == c.Algo {
			isAlgoAvailable = true
			break
		}
	}
	if c.Algo != "all" && !isAlgoAvailable {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	if c.Completion != "" {
		switch c.Completion {
		case "bash", "zsh", "fish":
		default:
			return apperrors.NewConfigError("unsupported shell for completion: '%s'", c.Completion)
		}
	}
	return nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig.
// Values not given on the command line are taken, in order, from FIBCOST_*
// environment variables, the YAML file named by -config (or FIBCOST_CONFIG),
// and the built-in defaults.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//   - availableAlgos: A slice of valid algorithm names for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: flag.ErrHelp for -h, a ConfigError for an unreadable file, or
//     an error if parsing or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Algorithm to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	fs.IntVar(&config.N, "n", DefaultN, "Index n of the Fibonacci number to calculate.")
	fs.BoolVar(&config.Details, "d", false, "Display cost and timing details per algorithm.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the calculation.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.IntVar(&config.MaxRecursiveN, "max-recursive-n", DefaultMaxRecursiveN, "Largest n the server accepts for the recursive algorithm.")
	fs.BoolVar(&config.Sweep, "sweep", false, "Measure the cost of every index from 0 to n.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - print only 'result cost'.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish).")
	fs.StringVar(&config.ConfigFile, "config", "", "Path to a YAML configuration file.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error or disabled.")
	fs.Bool("version", false, "Print version information and exit.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		fileCfg, err := LoadFile(config.ConfigFile)
		if err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return AppConfig{}, err
		}
		fileCfg.applyTo(&config, fs)
	}

	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.Join(errors.New("invalid configuration"), err)
	}
	return config, nil
}
