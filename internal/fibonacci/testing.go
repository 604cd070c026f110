package fibonacci

import (
	"context"
	"sort"
)

// MockCalculator is a Calculator with canned answers, exported for tests in
// other packages.
type MockCalculator struct {
	Measurement Measurement
	Err         error
	Fn          func(ctx context.Context, n int) (Measurement, error)
	// NameValue overrides the default "mock" name when set.
	NameValue string
}

// Name returns the calculator name.
func (m *MockCalculator) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

// Calculate calls Fn when provided, otherwise returns the canned Measurement
// (with N set to n) and Err.
func (m *MockCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, n int) (Measurement, error) {
	if m.Fn != nil {
		return m.Fn(ctx, n)
	}
	if progressChan != nil {
		progressChan <- ProgressUpdate{CalculatorIndex: calcIndex, Value: 1.0}
	}
	res := m.Measurement
	res.N = n
	return res, m.Err
}

// TestFactory is a CalculatorFactory over a fixed set of calculators.
type TestFactory struct {
	calculators map[string]Calculator
}

// NewTestFactory creates a factory pre-populated with calculators.
func NewTestFactory(calculators map[string]Calculator) *TestFactory {
	if calculators == nil {
		calculators = make(map[string]Calculator)
	}
	return &TestFactory{calculators: calculators}
}

// Create returns the calculator by name.
func (f *TestFactory) Create(name string) (Calculator, error) {
	return f.Get(name)
}

// Get returns the calculator by name.
func (f *TestFactory) Get(name string) (Calculator, error) {
	calc, ok := f.calculators[name]
	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}
	return calc, nil
}

// List returns the sorted calculator names.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.calculators))
	for name := range f.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a no-op: calculators are fixed at construction.
func (f *TestFactory) Register(name string, creator func() coreCalculator) error {
	return nil
}

// GetAll returns a copy of the calculators.
func (f *TestFactory) GetAll() map[string]Calculator {
	result := make(map[string]Calculator, len(f.calculators))
	for k, v := range f.calculators {
		result[k] = v
	}
	return result
}
