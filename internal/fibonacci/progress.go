// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains progress reporting types used by calculators.
package fibonacci

// ProgressUpdate is a data transfer object (DTO) that encapsulates the
// progress state of a calculation. It is sent over a channel from the
// calculator to the user interface.
type ProgressUpdate struct {
	// CalculatorIndex identifies the calculator instance, allowing the UI to
	// distinguish between concurrent calculations.
	CalculatorIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback used by core algorithms to report their
// progress without being coupled to channels or observers.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
type ProgressReporter func(progress float64)
