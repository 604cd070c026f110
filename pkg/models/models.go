/*
Package models defines the JSON records shared by the CLI -json output and
the HTTP API, so that scripts can consume either one with the same decoder.
*/
package models

import "time"

// Calculation is one run of one algorithm for one index.
type Calculation struct {
	N          int    `json:"n"`               // Index requested.
	Algorithm  string `json:"algorithm"`       // Display name of the algorithm.
	Result     uint64 `json:"result"`          // F(n); zero on error.
	Cost       uint64 `json:"cost"`            // Recursive step invocations or loop steps.
	Duration   string `json:"duration"`        // Human-readable wall-clock time.
	DurationNs int64  `json:"duration_ns"`     // Wall-clock time in nanoseconds.
	Error      string `json:"error,omitempty"` // Failure message, if any.
}

// NewCalculation builds a Calculation record. A non-nil err clears the
// result and cost.
func NewCalculation(algorithm string, n int, result, cost uint64, d time.Duration, err error) Calculation {
	c := Calculation{
		N:          n,
		Algorithm:  algorithm,
		Result:     result,
		Cost:       cost,
		Duration:   d.String(),
		DurationNs: d.Nanoseconds(),
	}
	if err != nil {
		c.Result, c.Cost = 0, 0
		c.Error = err.Error()
	}
	return c
}

// Succeeded reports whether the run produced a result.
func (c Calculation) Succeeded() bool {
	return c.Error == ""
}

// Comparison groups the runs of every algorithm for the same index.
type Comparison struct {
	N          int           `json:"n"`
	Results    []Calculation `json:"results"`
	Consistent bool          `json:"consistent"` // All successful runs agree on F(n).
}

// NewComparison builds a Comparison and computes its consistency flag.
// A comparison without any successful run is not consistent.
func NewComparison(n int, results []Calculation) Comparison {
	cmp := Comparison{N: n, Results: results}
	var first *Calculation
	for i := range results {
		if !results[i].Succeeded() {
			continue
		}
		if first == nil {
			first = &results[i]
			cmp.Consistent = true
			continue
		}
		if results[i].Result != first.Result {
			cmp.Consistent = false
			break
		}
	}
	return cmp
}
