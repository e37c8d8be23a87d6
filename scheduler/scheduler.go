// Package scheduler decides when interruptible rendering hands control back
// to its host, and drives resumable work from the outside in slices.
package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultSlice            = 5 * time.Millisecond
	DefaultMaxYieldInterval = 300 * time.Millisecond
)

// Host is the environment work is interleaved with.
type Host interface {
	Now() time.Time
	IsHighPriorityEventPending() bool
}

// Budget bounds a time slice. Past Slice, work yields as soon as the host
// has a high priority event waiting; past MaxYieldInterval it yields anyway.
type Budget struct {
	Slice            time.Duration
	MaxYieldInterval time.Duration
}

func DefaultBudget() Budget {
	return Budget{Slice: DefaultSlice, MaxYieldInterval: DefaultMaxYieldInterval}
}

// Yielder implements the yield predicate for one slice at a time.
type Yielder struct {
	host   Host
	budget Budget
	start  time.Time
}

func NewYielder(host Host, budget Budget) *Yielder {
	y := &Yielder{host: host, budget: budget}
	y.StartSlice()
	return y
}

// StartSlice resets the elapsed time of the slice.
func (y *Yielder) StartSlice() {
	y.start = y.host.Now()
}

// ShouldYield reports whether the slice budget is spent and either an event
// is waiting or the hard cap has passed.
func (y *Yielder) ShouldYield() bool {
	elapsed := y.host.Now().Sub(y.start)
	if elapsed < y.budget.Slice {
		return false
	}
	if y.host.IsHighPriorityEventPending() {
		return true
	}
	return elapsed >= y.budget.MaxYieldInterval
}

// Task is resumable work. It is invoked once per slice and reports whether it
// has nothing left to do.
type Task func(y *Yielder) (done bool, err error)

// Run invokes task slice after slice until it is done, fails, or ctx ends.
// Between slices the goroutine yields, and waits tick when tick is positive,
// so the host's events get a chance to run.
func Run(ctx context.Context, host Host, budget Budget, tick time.Duration, task Task) (slices int, err error) {
	y := NewYielder(host, budget)
	for {
		if err := ctx.Err(); err != nil {
			return slices, err
		}
		y.StartSlice()
		done, err := task(y)
		slices++
		if err != nil || done {
			return slices, err
		}
		if tick <= 0 {
			runtime.Gosched()
			continue
		}
		timer := time.NewTimer(tick)
		select {
		case <-ctx.Done():
			timer.Stop()
			return slices, ctx.Err()
		case <-timer.C:
		}
	}
}

// SystemHost uses the wall clock. Event sources mark pending events with
// SetPending.
type SystemHost struct {
	pending atomic.Bool
}

func (h *SystemHost) Now() time.Time { return time.Now() }

func (h *SystemHost) IsHighPriorityEventPending() bool { return h.pending.Load() }

func (h *SystemHost) SetPending(v bool) { h.pending.Store(v) }

// ManualHost is a host whose clock only moves when told to. Every call to Now
// advances the clock by Step, which lets tests model work taking time.
type ManualHost struct {
	mu      sync.Mutex
	now     time.Time
	pending bool
	Step    time.Duration
}

func NewManualHost() *ManualHost {
	return &ManualHost{now: time.Unix(0, 0)}
}

func (h *ManualHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.now
	h.now = h.now.Add(h.Step)
	return t
}

func (h *ManualHost) Advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func (h *ManualHost) IsHighPriorityEventPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending
}

func (h *ManualHost) SetPending(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = v
}
