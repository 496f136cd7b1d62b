package pi

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingObserver struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

func (o *recordingObserver) Update(calcIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, ProgressUpdate{CalculatorIndex: calcIndex, Value: progress})
}

type failingCore struct{ err error }

func (f *failingCore) Name() string { return "failing" }

func (f *failingCore) CalculateCore(context.Context, ProgressReporter, uint64, Options) (*Result, error) {
	return nil, f.err
}

func TestNewCalculatorPanicsOnNil(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("NewCalculator(nil) did not panic")
		}
	}()
	NewCalculator(nil)
}

func TestCalculateWithObserversReportsCompletion(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(NewChudnovskyCalculator(nil)).(*PiCalculator)
	subject := NewProgressSubject()
	obs := &recordingObserver{}
	subject.Register(obs)

	res, err := calc.CalculateWithObservers(context.Background(), subject, 3, 2000, Options{})
	if err != nil {
		t.Fatalf("CalculateWithObservers error: %v", err)
	}
	if !strings.HasPrefix(res.String(), "3.14159") {
		t.Errorf("unexpected result prefix: %.10s", res.String())
	}
	if len(obs.updates) == 0 {
		t.Fatal("observer received no updates")
	}
	last := obs.updates[len(obs.updates)-1]
	if last.CalculatorIndex != 3 || last.Value != 1.0 {
		t.Errorf("last update = %+v, want index 3 and value 1.0", last)
	}
}

func TestCalculateNilSubject(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(NewChudnovskyCalculator(nil)).(*PiCalculator)
	if _, err := calc.CalculateWithObservers(context.Background(), nil, 0, 20, Options{}); err != nil {
		t.Fatalf("CalculateWithObservers(nil subject) error: %v", err)
	}
}

func TestCalculateSendsToChannel(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 256)
	calc := NewCalculator(NewChudnovskyCalculator(nil))
	if _, err := calc.Calculate(context.Background(), ch, 1, 500, Options{}); err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	close(ch)
	var last ProgressUpdate
	count := 0
	for u := range ch {
		last = u
		count++
	}
	if count == 0 || last.Value != 1.0 || last.CalculatorIndex != 1 {
		t.Errorf("got %d updates, last %+v", count, last)
	}
}

func TestCalculatePropagatesErrors(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("boom")
	calc := NewCalculator(&failingCore{err: sentinel})
	res, err := calc.Calculate(context.Background(), nil, 0, 10, Options{})
	if !errors.Is(err, sentinel) || res != nil {
		t.Errorf("Calculate = (%v, %v), want (nil, boom)", res, err)
	}
}

func TestCalculateCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCalculator(NewChudnovskyCalculator(nil)).Calculate(ctx, nil, 0, 100_000, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Calculate error = %v, want context.Canceled", err)
	}
}

func TestCalculateTimeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	_, err := NewCalculator(NewChudnovskyCalculator(nil)).Calculate(ctx, nil, 0, 100_000, Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Calculate error = %v, want context.DeadlineExceeded", err)
	}
}

func TestCalculateTooManyDigits(t *testing.T) {
	t.Parallel()
	_, err := NewChudnovskyCalculator(nil).CalculateCore(context.Background(), nil, MaxDigits(MinMarginBits)+100, Options{})
	if err == nil {
		t.Error("expected a precision error above MaxDigits")
	}
}

func TestObserverSubject(t *testing.T) {
	t.Parallel()
	subject := NewProgressSubject()
	a, b := &recordingObserver{}, &recordingObserver{}
	subject.Register(a)
	subject.Register(b)
	subject.Register(nil)
	if subject.ObserverCount() != 2 {
		t.Fatalf("ObserverCount = %d, want 2", subject.ObserverCount())
	}
	subject.Notify(0, 0.5)
	subject.Unregister(a)
	subject.Unregister(nil)
	subject.AsProgressReporter(2)(0.75)

	if len(a.updates) != 1 || len(b.updates) != 2 {
		t.Errorf("a got %d updates, b got %d; want 1 and 2", len(a.updates), len(b.updates))
	}
	if b.updates[1] != (ProgressUpdate{CalculatorIndex: 2, Value: 0.75}) {
		t.Errorf("unexpected update %+v", b.updates[1])
	}
}

func TestChannelObserverDropsWhenFull(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 1)
	obs := NewChannelObserver(ch)
	obs.Update(0, 0.2)
	obs.Update(0, 1.7) // dropped, channel full
	if got := <-ch; got.Value != 0.2 {
		t.Errorf("got %v, want 0.2", got.Value)
	}
	obs.Update(0, 1.7)
	if got := <-ch; got.Value != 1.0 {
		t.Errorf("progress above 1 should be clamped, got %v", got.Value)
	}
	NewChannelObserver(nil).Update(0, 0.5)
}

func TestLoggingObserverThrottles(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	obs := NewLoggingObserver(logger, 0.25)
	for _, p := range []float64{0.01, 0.05, 0.1, 0.3, 0.4, 0.6, 1.0} {
		obs.Update(0, p)
	}
	lines := strings.Count(buf.String(), "\n")
	// 0.01 (first), 0.3, 0.6, 1.0
	if lines != 4 {
		t.Errorf("logged %d lines, want 4:\n%s", lines, buf.String())
	}
}

func TestMetricsAndNoOpObservers(t *testing.T) {
	t.Parallel()
	m := NewMetricsObserver()
	m.Update(9, 0.5)
	m.ResetMetrics()
	NewNoOpObserver().Update(0, 1)
}
