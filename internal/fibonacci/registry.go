package fibonacci

// Note: CalculatorFactory is not mockable with mockgen because Register()
// uses the unexported coreCalculator type. Use TestFactory instead.

import (
	"fmt"
	"sort"
	"sync"
)

// Registered calculator names.
const (
	IterativeName = "iterative"
	RecursiveName = "recursive"
)

// CalculatorFactory creates and caches Calculator instances by name.
type CalculatorFactory interface {
	// Create returns a fresh Calculator instance by name.
	Create(name string) (Calculator, error)

	// Get returns the cached Calculator instance by name, creating it on first use.
	Get(name string) (Calculator, error)

	// List returns the sorted registered calculator names.
	List() []string

	// Register adds or replaces a calculator type.
	Register(name string, creator func() coreCalculator) error

	// GetAll returns every registered calculator, keyed by name.
	GetAll() map[string]Calculator
}

// UnknownCalculatorError is returned when a calculator name is not registered.
type UnknownCalculatorError struct {
	Name string
}

func (e *UnknownCalculatorError) Error() string {
	return "unknown calculator: " + e.Name
}

// DefaultFactory is the thread-safe CalculatorFactory implementation.
type DefaultFactory struct {
	mu          sync.RWMutex
	creators    map[string]func() coreCalculator
	calculators map[string]Calculator
}

// NewDefaultFactory creates a factory with both algorithms registered:
//   - "iterative": IterativeLoop, O(n) steps
//   - "recursive": NaiveRecursion, O(phi^n) calls
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:    make(map[string]func() coreCalculator),
		calculators: make(map[string]Calculator),
	}

	_ = f.Register(IterativeName, func() coreCalculator { return &IterativeLoop{} })
	_ = f.Register(RecursiveName, func() coreCalculator { return &NaiveRecursion{} })

	return f
}

// Register adds a calculator type. The creator is called lazily; a cached
// instance registered under the same name is dropped.
func (f *DefaultFactory) Register(name string, creator func() coreCalculator) error {
	if name == "" {
		return fmt.Errorf("fibonacci: calculator name cannot be empty")
	}
	if creator == nil {
		return fmt.Errorf("fibonacci: nil creator for calculator %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.calculators, name)
	return nil
}

// Create returns a new, uncached Calculator instance.
func (f *DefaultFactory) Create(name string) (Calculator, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}
	return NewCalculator(creator()), nil
}

// Get returns the cached Calculator for name, creating it on first use.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	f.mu.RLock()
	if calc, exists := f.calculators[name]; exists {
		f.mu.RUnlock()
		return calc, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring the write lock.
	if calc, exists := f.calculators[name]; exists {
		return calc, nil
	}

	creator, ok := f.creators[name]
	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}

	calc := NewCalculator(creator())
	f.calculators[name] = calc
	return calc, nil
}

// List returns the registered names in alphabetical order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll initializes every registered calculator and returns a copy of the
// cache.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.calculators[name]; !exists {
			f.calculators[name] = NewCalculator(creator())
		}
	}

	result := make(map[string]Calculator, len(f.calculators))
	for name, calc := range f.calculators {
		result[name] = calc
	}
	return result
}

// MustGet is like Get but panics if the calculator is not registered.
func (f *DefaultFactory) MustGet(name string) Calculator {
	calc, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("fibonacci: required calculator not found: %s", name))
	}
	return calc
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// RegisterCalculator registers a calculator in the global factory.
func RegisterCalculator(name string, creator func() coreCalculator) error {
	return globalFactory.Register(name, creator)
}
