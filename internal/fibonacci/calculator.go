// Package fibonacci provides implementations for calculating Fibonacci numbers.
// It exposes a `Calculator` interface that abstracts the underlying algorithm,
// so that the naive recursive and the iterative formulations can be run,
// timed and compared interchangeably. Each run reports its cost: the number
// of recursive step invocations or the number of loop steps.
package fibonacci

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fibcost_calculations_total",
			Help: "The total number of Fibonacci calculations processed",
		},
		[]string{"algorithm", "status"},
	)
	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fibcost_calculation_duration_seconds",
			Help: "The duration of Fibonacci calculations in seconds",
		},
		[]string{"algorithm"},
	)
	calculationCost = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fibcost_calculation_cost",
			Help:    "The cost (recursive calls or loop steps) of Fibonacci calculations",
			Buckets: prometheus.ExponentialBuckets(1, 4, 16),
		},
		[]string{"algorithm"},
	)
)

// Measurement is the outcome of one calculation: the value of F(N), the
// number of elementary steps the algorithm performed, and how long it took.
type Measurement struct {
	// N is the requested index.
	N int
	// Result is F(N).
	Result uint64
	// Cost counts recursive step invocations or loop steps.
	Cost uint64
	// Duration is the wall-clock time of the calculation.
	Duration time.Duration
}

// Calculator defines the public interface for a Fibonacci calculator.
// It is the primary abstraction used by the orchestration layer, the REPL and
// the HTTP service to interact with the different algorithms.
type Calculator interface {
	// Calculate computes F(n) and its cost. It is safe for concurrent use and
	// honours cancellation of ctx. Progress updates are sent asynchronously
	// to progressChan, which may be nil.
	//
	// Parameters:
	//   - ctx: The context for managing cancellation and deadlines.
	//   - progressChan: The channel for sending progress updates.
	//   - calcIndex: A unique index for the calculator instance.
	//   - n: The index of the Fibonacci number to calculate.
	//
	// Returns:
	//   - Measurement: The result, cost and duration.
	//   - error: A domain error for out-of-range n, or a context error.
	Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, n int) (Measurement, error)

	// Name returns the display name of the algorithm (e.g., "Naive Recursion").
	Name() string
}

// coreCalculator defines the internal interface for a pure calculation
// algorithm.
type coreCalculator interface {
	CalculateCore(ctx context.Context, reporter ProgressReporter, n int) (result, cost uint64, err error)
	Name() string
}

// FibCalculator implements Calculator by decorating a coreCalculator with
// the cross-cutting concerns: timing, tracing, metrics, logging and the
// adaptation of progress reporting to observers.
type FibCalculator struct {
	core coreCalculator
}

// NewCalculator wraps a coreCalculator. It panics if core is nil.
//
// Parameters:
//   - core: The core calculator to be wrapped.
//
// Returns:
//   - Calculator: A new FibCalculator instance.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("fibonacci: the `coreCalculator` implementation cannot be nil")
	}
	return &FibCalculator{core: core}
}

// Name returns the name of the encapsulated coreCalculator.
func (c *FibCalculator) Name() string {
	return c.core.Name()
}

// Calculate adapts progressChan into a ProgressSubject and delegates to
// CalculateWithObservers.
func (c *FibCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, n int) (Measurement, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return c.CalculateWithObservers(ctx, subject, calcIndex, n)
}

// CalculateWithObservers executes the calculation with observer-based
// progress reporting. Progress is reported as 1.0 once the calculation
// succeeds.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - subject: The progress subject with registered observers. If nil, progress is ignored.
//   - calcIndex: A unique index for the calculator instance.
//   - n: The index of the Fibonacci number to calculate.
//
// Returns:
//   - Measurement: The result, cost and duration.
//   - error: An error if one occurred.
func (c *FibCalculator) CalculateWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, n int) (m Measurement, err error) {
	algoName := c.core.Name()
	ctx, span := otel.Tracer("fibonacci").Start(ctx, "Calculate")
	span.SetAttributes(attribute.String("algorithm", algoName), attribute.Int("n", n))
	defer span.End()

	m.N = n
	start := time.Now()
	defer func() {
		m.Duration = time.Since(start)
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			calculationCost.WithLabelValues(algoName).Observe(float64(m.Cost))
			span.SetAttributes(attribute.Int64("cost", int64(m.Cost)))
		}
		calculationsTotal.WithLabelValues(algoName, status).Inc()
		calculationDuration.WithLabelValues(algoName).Observe(m.Duration.Seconds())

		log.Debug().
			Str("algo", algoName).
			Int("n", n).
			Uint64("cost", m.Cost).
			Dur("duration", m.Duration).
			Str("status", status).
			Msg("calculation completed")
	}()

	reporter := ProgressReporter(func(float64) {})
	if subject != nil {
		reporter = subject.AsProgressReporter(calcIndex)
	}

	m.Result, m.Cost, err = c.core.CalculateCore(ctx, reporter, n)
	if err != nil {
		m.Result, m.Cost = 0, 0
		return m, err
	}
	reporter(1.0)
	return m, nil
}
