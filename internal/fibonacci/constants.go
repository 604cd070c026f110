// Package fibonacci provides implementations for calculating Fibonacci numbers.
package fibonacci

import "errors"

// ─────────────────────────────────────────────────────────────────────────────
// Range Limits
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MaxFibUint64 is the largest index whose Fibonacci number fits in a
	// uint64: F(93) = 12200160415121876738, F(94) exceeds 2^64.
	MaxFibUint64 = 93

	// MaxRecursiveIndex is the largest index accepted by the recursive
	// algorithm. Its cost is 2*F(n)-1 step invocations, which stops fitting
	// in a uint64 counter at n = 93.
	MaxRecursiveIndex = 92

	// CancelCheckInterval is the number of recursive step invocations between
	// two checks of the context and two progress reports.
	CancelCheckInterval = 1 << 16

	// ProgressReportThreshold is the minimum progress delta (1%) between two
	// reports sent to the observers.
	ProgressReportThreshold = 0.01
)

var (
	// ErrNegativeIndex is returned by the recursive algorithm for n < 0.
	ErrNegativeIndex = errors.New("fibonacci: index must be non-negative")

	// ErrIndexTooLarge is returned when the result or its cost cannot be
	// represented in a uint64.
	ErrIndexTooLarge = errors.New("fibonacci: index exceeds native integer range")
)
