package pi

import (
	"slices"
	"sync"
)

// ProgressObserver receives the normalized progress (0 to 1) of the
// calculator at calcIndex.
type ProgressObserver interface {
	Update(calcIndex int, progress float64)
}

// ProgressSubject fans progress out to registered observers. It is safe for
// concurrent use; observers are called without the lock held, so an
// observer may register or unregister others.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds observer. Nil is ignored.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Unregister removes the first registration of observer.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.observers, observer); i >= 0 {
		s.observers = slices.Delete(s.observers, i, i+1)
	}
}

// Notify calls every observer in registration order.
func (s *ProgressSubject) Notify(calcIndex int, progress float64) {
	s.mu.RLock()
	observers := slices.Clone(s.observers)
	s.mu.RUnlock()
	for _, o := range observers {
		o.Update(calcIndex, progress)
	}
}

func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// AsProgressReporter binds the subject to one calculator index.
func (s *ProgressSubject) AsProgressReporter(calcIndex int) ProgressReporter {
	return func(progress float64) { s.Notify(calcIndex, progress) }
}
