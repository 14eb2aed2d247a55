package loop

import (
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource sleeps out the loop's wait budget (capped so tests stay
// fast) and lets a Wakeup cut the sleep short, approximating a platform
// driver without a terminal.
type fakeSource struct {
	loop       *Loop
	wake       chan struct{}
	iterations atomic.Int64
}

func newFakeSource() *fakeSource {
	return &fakeSource{wake: make(chan struct{}, 1)}
}

func (s *fakeSource) Setup(l *Loop) { s.loop = l }

func (s *fakeSource) Wakeup() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *fakeSource) EventsPending(wait bool) bool {
	if !wait {
		return false
	}
	budget, infinite := s.loop.WaitBudget()
	if infinite {
		<-s.wake
		return true
	}
	if budget > 0 {
		select {
		case <-s.wake:
		case <-time.After(budget):
		}
	}
	return true
}

func (s *fakeSource) RunIteration() { s.iterations.Add(1) }

func TestTimersFireInDeadlineOrder(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	var order []time.Duration
	add := func(d time.Duration) {
		l.AddTimeout(d, func() {
			order = append(order, d)
			if len(order) == 3 {
				l.Stop()
			}
		})
	}
	add(50 * time.Millisecond)
	add(10 * time.Millisecond)
	add(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not finish")
	}

	want := []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 50 * time.Millisecond}
	if len(order) != len(want) {
		t.Fatalf("fired %d timers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: fired %v, want %v", i, order[i], want[i])
		}
	}
}

func TestTimerTiesFireInInsertionOrder(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	var order []int
	deadline := 10 * time.Millisecond
	for i := 0; i < 4; i++ {
		i := i
		l.AddTimeout(deadline, func() {
			order = append(order, i)
			if len(order) == 4 {
				l.Stop()
			}
		})
	}

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not finish")
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("tie order = %v, want insertion order", order)
		}
	}
}

func TestRemoveTimeoutCancels(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	fired := false
	h := l.AddTimeout(10*time.Millisecond, func() { fired = true })
	if !l.RemoveTimeout(h) {
		t.Fatal("RemoveTimeout reported no such timer")
	}
	if l.RemoveTimeout(h) {
		t.Error("second RemoveTimeout should report the timer gone")
	}

	time.Sleep(20 * time.Millisecond)
	l.RunIteration()
	if fired {
		t.Error("removed timer still fired")
	}
}

func TestTimerRepeatsOnlyByReRegistering(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	count := 0
	var rearm func()
	rearm = func() {
		l.AddTimeout(5*time.Millisecond, func() {
			count++
			if count < 3 {
				rearm()
				return
			}
			l.Stop()
		})
	}
	rearm()

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not finish")
	}

	if count != 3 {
		t.Errorf("timer fired %d times, want 3", count)
	}
}

func TestIdleRunsOncePerIterationUntilFalse(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	runs := 0
	l.AddIdle(func() bool {
		runs++
		return runs < 2
	})

	l.RunIteration()
	l.RunIteration()
	l.RunIteration()

	if runs != 2 {
		t.Errorf("idle ran %d times, want 2 (self-removed after second)", runs)
	}
}

func TestRemoveIdle(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	runs := 0
	h := l.AddIdle(func() bool {
		runs++
		return true
	})
	l.RunIteration()
	if !l.RemoveIdle(h) {
		t.Fatal("RemoveIdle reported no such callback")
	}
	l.RunIteration()
	if runs != 1 {
		t.Errorf("idle ran %d times after removal, want 1", runs)
	}
}

func TestWaitBudget(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	if _, infinite := l.WaitBudget(); !infinite {
		t.Error("empty loop should wait forever")
	}

	h := l.AddTimeout(time.Hour, func() {})
	d, infinite := l.WaitBudget()
	if infinite {
		t.Error("loop with a timer must not wait forever")
	}
	if d <= 59*time.Minute || d > time.Hour {
		t.Errorf("budget %v, want just under an hour", d)
	}
	l.RemoveTimeout(h)

	idle := l.AddIdle(func() bool { return true })
	if d, _ := l.WaitBudget(); d != 0 {
		t.Errorf("budget with idle callback = %v, want 0", d)
	}
	l.RemoveIdle(idle)
}

func TestWakeupInterruptsInfiniteWait(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()

	// Give the loop time to park in the infinite wait, then stop it;
	// Stop wakes the source.
	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	l.Stop()

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
			t.Errorf("loop took %v to observe wakeup", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wakeup did not interrupt the wait")
	}
}

func TestCallbacksRunOnLoopThread(t *testing.T) {
	src := newFakeSource()
	l := New(src)

	// A timer callback scheduling another timer must not deadlock.
	fired := false
	l.AddTimeout(5*time.Millisecond, func() {
		l.AddTimeout(5*time.Millisecond, func() {
			fired = true
			l.Stop()
		})
	})

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not finish")
	}
	if !fired {
		t.Error("nested timer never fired")
	}
}
