package pi

import (
	"context"
	"sort"
)

// MockCalculator is a Calculator returning preset values, for use in tests
// of other packages.
type MockCalculator struct {
	Label  string
	Result *Result
	Err    error
	Fn     func(ctx context.Context, digits uint64) (*Result, error)
}

// Name returns Label, or "mock" when empty.
func (m *MockCalculator) Name() string {
	if m.Label != "" {
		return m.Label
	}
	return "mock"
}

// Calculate calls Fn when set, otherwise returns Result and Err.
func (m *MockCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, digits uint64, opts Options) (*Result, error) {
	if m.Fn != nil {
		return m.Fn(ctx, digits)
	}
	if progressChan != nil {
		select {
		case progressChan <- ProgressUpdate{CalculatorIndex: calcIndex, Value: 1.0}:
		default:
		}
	}
	return m.Result, m.Err
}

// TestFactory is a CalculatorFactory over a fixed set of calculators.
type TestFactory struct {
	calculators map[string]Calculator
}

// NewTestFactory creates a factory serving calculators.
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

// Register is a no-op; calculators are fixed at construction.
func (f *TestFactory) Register(string, func() coreCalculator) error {
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

// ResultFromString builds a Result from a "3.xxx" digit string. It returns
// nil if s is not of that form.
func ResultFromString(s string) *Result {
	if len(s) < 2 || s[1] != '.' {
		return nil
	}
	digits := uint64(len(s) - 2)
	scaled, ok := newIntFromDecimal(s[:1] + s[2:])
	if !ok {
		return nil
	}
	return &Result{Digits: digits, Terms: TermCount(digits), Scaled: scaled, text: s}
}
