package service

//go:generate mockgen -source=calculator_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/agbru/fibcost/internal/config"
	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/fibonacci"
)

var (
	// ErrMaxValueExceeded is returned when n exceeds the configured maximum limit.
	ErrMaxValueExceeded = errors.New("maximum n value exceeded")
)

// Service defines the interface for Fibonacci calculation services.
// This abstraction enables dependency injection and easier testing/mocking.
type Service interface {
	// Calculate runs the named algorithm for index n.
	//
	// Parameters:
	//   - ctx: The context for cancellation.
	//   - algoName: The registry name of the algorithm ("iterative", "recursive").
	//   - n: The Fibonacci index to calculate.
	//
	// Returns:
	//   - fibonacci.Measurement: The result, cost and duration.
	//   - error: An error if validation or calculation fails.
	Calculate(ctx context.Context, algoName string, n int) (fibonacci.Measurement, error)

	// Algorithms returns the sorted registry names of the algorithms served.
	Algorithms() []string
}

// CalculatorService handles the core logic for calculating Fibonacci numbers.
// It centralizes validation, algorithm retrieval and error classification.
// Implements the Service interface.
type CalculatorService struct {
	factory       fibonacci.CalculatorFactory
	maxRecursiveN int
}

// Ensure CalculatorService implements Service interface.
var _ Service = (*CalculatorService)(nil)

// NewCalculatorService creates a new instance of CalculatorService. The
// recursive algorithm is limited to cfg.MaxRecursiveN (0 for no limit
// beyond the algorithm's own range).
func NewCalculatorService(factory fibonacci.CalculatorFactory, cfg config.AppConfig) *CalculatorService {
	return &CalculatorService{
		factory:       factory,
		maxRecursiveN: cfg.MaxRecursiveN,
	}
}

// Calculate retrieves the requested calculator and runs it.
//
// An unknown algorithm returns *fibonacci.UnknownCalculatorError. A
// recursive request above the configured limit returns ErrMaxValueExceeded
// without running. An index the algorithm rejects is returned as an
// apperrors.ValidationError wrapping the domain error.
func (s *CalculatorService) Calculate(ctx context.Context, algoName string, n int) (fibonacci.Measurement, error) {
	calc, err := s.factory.Get(algoName)
	if err != nil {
		return fibonacci.Measurement{}, err
	}

	if algoName == fibonacci.RecursiveName && s.maxRecursiveN > 0 && n > s.maxRecursiveN {
		return fibonacci.Measurement{}, fmt.Errorf("%w: recursive limit is %d, got %d", ErrMaxValueExceeded, s.maxRecursiveN, n)
	}

	// Progress is not reported for synchronous service calls.
	m, err := calc.Calculate(ctx, nil, 0, n)
	if errors.Is(err, fibonacci.ErrNegativeIndex) || errors.Is(err, fibonacci.ErrIndexTooLarge) {
		return m, apperrors.WrapValidationError("n", n, err)
	}
	return m, err
}

// Algorithms returns the registered algorithm names.
func (s *CalculatorService) Algorithms() []string {
	return s.factory.List()
}
