// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains the naive doubly-recursive algorithm and its call counter.
package fibonacci

import (
	"context"
	"fmt"
)

// Recursive computes F(n) by naive double recursion and returns the number
// of step invocations performed, base cases included. The cost follows
// cost(n) = 1 + cost(n-1) + cost(n-2) with cost(0) = cost(1) = cost(2) = 1.
//
// Running time grows exponentially with n; nothing is memoized.
//
// Parameters:
//   - n: The index of the Fibonacci number, 0 <= n <= MaxRecursiveIndex.
//
// Returns:
//   - result: F(n).
//   - cost: The number of step invocations.
//   - err: ErrNegativeIndex or ErrIndexTooLarge for out-of-range n.
func Recursive(n int) (result, cost uint64, err error) {
	if err := validateRecursiveIndex(n); err != nil {
		return 0, 0, err
	}
	var r recursion
	result = r.step(n)
	return result, r.calls, nil
}

// RecursiveCost returns the number of step invocations Recursive performs for
// n without running it. The closed form is 2*F(n)-1 for n >= 1 and 1 for n = 0.
//
// Parameters:
//   - n: The index of the Fibonacci number.
//
// Returns:
//   - uint64: The expected cost.
//   - error: The same range errors as Recursive.
func RecursiveCost(n int) (uint64, error) {
	if err := validateRecursiveIndex(n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 1, nil
	}
	fn, _, err := Iterative(n)
	if err != nil {
		return 0, err
	}
	return 2*fn - 1, nil
}

func validateRecursiveIndex(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeIndex, n)
	}
	if n > MaxRecursiveIndex {
		return fmt.Errorf("%w: recursive cost of F(%d) overflows uint64 (max %d)", ErrIndexTooLarge, n, MaxRecursiveIndex)
	}
	return nil
}

// recursion carries the call counter shared by every nested step of one run.
// A zero value runs without cancellation or progress reporting.
type recursion struct {
	calls uint64

	ctx          context.Context
	reporter     ProgressReporter
	expected     float64
	lastReported float64
	err          error
}

// step is one recursive invocation. The counter is incremented on entry,
// before the base cases are evaluated.
func (r *recursion) step(n int) uint64 {
	r.calls++
	if r.ctx != nil && r.calls%CancelCheckInterval == 0 {
		r.checkpoint()
	}
	if r.err != nil {
		return 0
	}
	switch n {
	case 0:
		return 0
	case 1, 2:
		return 1
	}
	return r.step(n-1) + r.step(n-2)
}

// checkpoint records a context error, if any, and reports progress.
func (r *recursion) checkpoint() {
	if err := r.ctx.Err(); err != nil {
		r.err = err
		return
	}
	if r.reporter == nil || r.expected <= 0 {
		return
	}
	progress := float64(r.calls) / r.expected
	if progress-r.lastReported >= ProgressReportThreshold {
		r.reporter(progress)
		r.lastReported = progress
	}
}

// NaiveRecursion is the core calculator for the recursive algorithm.
type NaiveRecursion struct{}

// Name returns the display name of the algorithm.
func (c *NaiveRecursion) Name() string {
	return "Naive Recursion"
}

// CalculateCore runs the recursive algorithm with cooperative cancellation.
// The context is checked every CancelCheckInterval invocations; a cancelled
// run returns the context error and no result.
func (c *NaiveRecursion) CalculateCore(ctx context.Context, reporter ProgressReporter, n int) (uint64, uint64, error) {
	expected, err := RecursiveCost(n)
	if err != nil {
		return 0, 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	r := recursion{
		ctx:      ctx,
		reporter: reporter,
		expected: float64(expected),
	}
	result := r.step(n)
	if r.err != nil {
		return 0, 0, r.err
	}
	return result, r.calls, nil
}
