// Package loop implements the single-threaded event-loop scheduler:
// a timer queue, idle callbacks, and the iteration protocol that drives
// one platform event source per cycle.
package loop

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Source is the pluggable event source the loop drives once per
// iteration. A platform driver implements it; the loop stays
// driver-agnostic.
type Source interface {
	// Setup hands the source its owning loop before the first iteration.
	Setup(l *Loop)

	// Wakeup makes a concurrently-blocked EventsPending return promptly.
	// Callable from any thread, any number of times, with no event loss.
	Wakeup()

	// EventsPending blocks up to the loop's wait budget (or polls when
	// wait is false) and reports whether something is ready: queued
	// input, an expired timer, a wakeup, or cancellation.
	EventsPending(wait bool) bool

	// RunIteration synchronously dispatches at most the currently-queued
	// input events, bounded per cycle so timers are never starved.
	RunIteration()
}

// Handle identifies a registered timer or idle callback.
type Handle uuid.UUID

type timerEntry struct {
	deadline time.Time
	seq      uint64 // insertion order breaks deadline ties
	handle   Handle
	cb       func()
	removed  bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)        { *h = append(*h, x.(*timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Loop owns the timers and idle callbacks and repeats one logical
// cycle — compute wait, wait for the event source, drain and dispatch —
// for the process lifetime. Only the UI thread runs callbacks; the
// internal mutex exists because Add/Remove and Wakeup may be called
// from callbacks or other threads.
type Loop struct {
	source Source

	mu         sync.Mutex
	timers     timerHeap
	timerIndex map[Handle]*timerEntry
	idle       map[Handle]func() bool
	seq        uint64

	stopped atomic.Bool
}

// New creates a loop bound to the given event source.
func New(source Source) *Loop {
	l := &Loop{
		source:     source,
		timerIndex: make(map[Handle]*timerEntry),
		idle:       make(map[Handle]func() bool),
	}
	source.Setup(l)
	return l
}

// AddTimeout schedules cb to run once after delay. A timer fires
// exactly once; a callback that wants to repeat re-registers itself.
func (l *Loop) AddTimeout(delay time.Duration, cb func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := &timerEntry{
		deadline: time.Now().Add(delay),
		seq:      l.seq,
		handle:   Handle(uuid.New()),
		cb:       cb,
	}
	l.seq++
	heap.Push(&l.timers, e)
	l.timerIndex[e.handle] = e
	return e.handle
}

// RemoveTimeout cancels a pending timer. Returns false if the timer
// already fired or was removed.
func (l *Loop) RemoveTimeout(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.timerIndex[h]
	if !ok {
		return false
	}
	e.removed = true
	delete(l.timerIndex, h)
	return true
}

// AddIdle registers cb to run once per iteration whenever no blocking
// input is pending. Returning false unregisters it.
func (l *Loop) AddIdle(cb func() bool) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := Handle(uuid.New())
	l.idle[h] = cb
	return h
}

// RemoveIdle unregisters an idle callback.
func (l *Loop) RemoveIdle(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.idle[h]; !ok {
		return false
	}
	delete(l.idle, h)
	return true
}

// Wakeup interrupts a blocked wait. Safe from any thread, including
// from inside timer and idle callbacks.
func (l *Loop) Wakeup() { l.source.Wakeup() }

// Stop requests shutdown: the current wait is released and Run returns
// before driving the source again. Safe to call multiple times.
func (l *Loop) Stop() {
	l.stopped.Store(true)
	l.source.Wakeup()
}

// Stopped reports whether shutdown has been requested.
func (l *Loop) Stopped() bool { return l.stopped.Load() }

// WaitBudget returns how long the event source may block before the
// next scheduled work: zero when idle callbacks exist (the iteration
// must proceed immediately), the nearest timer deadline otherwise, or
// infinite when nothing is scheduled.
func (l *Loop) WaitBudget() (d time.Duration, infinite bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.idle) > 0 {
		return 0, false
	}
	if e := l.peekTimer(); e != nil {
		d := time.Until(e.deadline)
		if d < 0 {
			d = 0
		}
		return d, false
	}
	return 0, true
}

// peekTimer returns the nearest live timer. Caller holds the mutex.
func (l *Loop) peekTimer() *timerEntry {
	for len(l.timers) > 0 {
		if l.timers[0].removed {
			heap.Pop(&l.timers)
			continue
		}
		return l.timers[0]
	}
	return nil
}

// RunIteration performs one drain/dispatch phase: expired timers in
// deadline order, each idle callback once, then at most the queued
// input events via the source.
func (l *Loop) RunIteration() {
	l.runTimers()
	l.runIdle()
	l.source.RunIteration()
}

// Run repeats the cycle until Stop. After a shutdown request the
// source's EventsPending is observed true once more and the source is
// never driven again.
func (l *Loop) Run() {
	for !l.stopped.Load() {
		l.source.EventsPending(true)
		if l.stopped.Load() {
			return
		}
		l.RunIteration()
	}
}

func (l *Loop) runTimers() {
	now := time.Now()

	l.mu.Lock()
	var due []*timerEntry
	for {
		e := l.peekTimer()
		if e == nil || e.deadline.After(now) {
			break
		}
		heap.Pop(&l.timers)
		delete(l.timerIndex, e.handle)
		due = append(due, e)
	}
	l.mu.Unlock()

	// Callbacks run unlocked so they can re-register or stop the loop.
	for _, e := range due {
		e.cb()
	}
}

func (l *Loop) runIdle() {
	l.mu.Lock()
	type idleRun struct {
		h  Handle
		cb func() bool
	}
	snapshot := make([]idleRun, 0, len(l.idle))
	for h, cb := range l.idle {
		snapshot = append(snapshot, idleRun{h, cb})
	}
	l.mu.Unlock()

	for _, ir := range snapshot {
		if !ir.cb() {
			l.RemoveIdle(ir.h)
		}
	}
}
