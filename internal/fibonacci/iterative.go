// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains the iterative accumulation algorithm.
package fibonacci

import (
	"context"
	"fmt"
)

// Iterative computes F(n) by advancing the pair (F(k-1), F(k)) and returns
// the number of update steps performed.
//
// Non-positive n yields (0, 1) and n = 1 yields (1, 1): both report a cost
// of one even though no update step runs. For n >= 2 the cost is n-1.
//
// Parameters:
//   - n: The index of the Fibonacci number, n <= MaxFibUint64.
//
// Returns:
//   - result: F(n).
//   - cost: The number of loop steps.
//   - err: ErrIndexTooLarge when F(n) does not fit in a uint64.
func Iterative(n int) (result, cost uint64, err error) {
	if n > MaxFibUint64 {
		return 0, 0, fmt.Errorf("%w: F(%d) overflows uint64 (max %d)", ErrIndexTooLarge, n, MaxFibUint64)
	}
	if n <= 0 {
		return 0, 1, nil
	}
	if n == 1 {
		return 1, 1, nil
	}

	a, b := uint64(0), uint64(1)
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return b, uint64(n - 1), nil
}

// IterativeLoop is the core calculator for the iterative algorithm.
type IterativeLoop struct{}

// Name returns the display name of the algorithm.
func (c *IterativeLoop) Name() string {
	return "Iterative Loop"
}

// CalculateCore runs the iterative algorithm. The loop is at most
// MaxFibUint64 steps long, so the context is only checked once.
func (c *IterativeLoop) CalculateCore(ctx context.Context, reporter ProgressReporter, n int) (uint64, uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return Iterative(n)
}
