package pi

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// DefaultAlgorithm is the backend used when none is selected.
const DefaultAlgorithm = "chudnovsky"

// CalculatorFactory creates and caches calculators by name.
type CalculatorFactory interface {
	// Create returns a fresh Calculator for name.
	Create(name string) (Calculator, error)
	// Get returns a cached Calculator for name.
	Get(name string) (Calculator, error)
	// List returns the sorted registered names.
	List() []string
	// Register adds or replaces a backend.
	Register(name string, creator func() coreCalculator) error
	// GetAll returns every registered calculator.
	GetAll() map[string]Calculator
}

// DefaultFactory is the thread-safe CalculatorFactory used by the
// application.
type DefaultFactory struct {
	mu          sync.RWMutex
	creators    map[string]func() coreCalculator
	calculators map[string]Calculator
}

// NewDefaultFactory creates a factory with the built-in backends:
//   - "chudnovsky": binary splitting with the adaptive Karatsuba/FFT strategy
//   - "karatsuba": binary splitting with math/big multiplication only
//   - "fft": binary splitting with FFT multiplication only
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:    make(map[string]func() coreCalculator),
		calculators: make(map[string]Calculator),
	}
	_ = f.Register(DefaultAlgorithm, func() coreCalculator { return NewChudnovskyCalculator(&AdaptiveStrategy{}) })
	_ = f.Register("karatsuba", func() coreCalculator { return NewChudnovskyCalculator(&KaratsubaStrategy{}) })
	_ = f.Register("fft", func() coreCalculator { return NewChudnovskyCalculator(&FFTOnlyStrategy{}) })
	return f
}

// Register adds a backend, replacing any existing one with the same name.
func (f *DefaultFactory) Register(name string, creator func() coreCalculator) error {
	if creator == nil {
		return fmt.Errorf("pi: nil creator for calculator %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[name] = creator
	delete(f.calculators, name)
	return nil
}

// Create always builds a new, uncached Calculator.
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
	calc, ok := f.calculators[name]
	f.mu.RUnlock()
	if ok {
		return calc, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cachedLocked(name)
}

// cachedLocked returns the cached calculator for name, building it if
// needed. f.mu must be held for writing.
func (f *DefaultFactory) cachedLocked(name string) (Calculator, error) {
	if calc, ok := f.calculators[name]; ok {
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
	return slices.Sorted(maps.Keys(f.creators))
}

// GetAll returns every registered calculator keyed by name.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make(map[string]Calculator, len(f.creators))
	for name := range f.creators {
		all[name], _ = f.cachedLocked(name)
	}
	return all
}

// MustGet is like Get but panics for unknown names.
func (f *DefaultFactory) MustGet(name string) Calculator {
	calc, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("pi: required calculator not found: %s", name))
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

// RegisterCalculator registers a backend in the global factory.
func RegisterCalculator(name string, creator func() coreCalculator) error {
	return globalFactory.Register(name, creator)
}

// UnknownCalculatorError is returned when a calculator name is not found.
type UnknownCalculatorError struct {
	Name string
}

func (e *UnknownCalculatorError) Error() string {
	return "unknown calculator: " + e.Name
}
