// Package tcellscr implements the console driver on top of tcell,
// delegating terminfo handling and platform quirks to the library
// while exposing the same event-source and sink contract as the raw
// ANSI driver.
package tcellscr

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/input/key"
	"github.com/markobalaban/GuiCS/internal/logging"
	"github.com/markobalaban/GuiCS/internal/loop"
	"github.com/markobalaban/GuiCS/internal/screen"
)

// Options configures the driver.
type Options struct {
	// Mouse enables mouse reporting.
	Mouse bool

	Logger *logging.Logger
}

type queuedKind uint8

const (
	queuedKey queuedKind = iota
	queuedMouse
	queuedResize
)

type queuedEvent struct {
	kind  queuedKind
	key   key.Raw
	mouse driver.MouseEvent
}

// Driver is the tcell-backed console driver. A single collector
// goroutine blocks in PollEvent and feeds the pending queue; it exits
// when Fini makes PollEvent return nil.
type Driver struct {
	screen tcell.Screen
	mouse  bool
	log    *logging.Logger

	lp   *loop.Loop
	sink *Sink

	mu          sync.Mutex
	pending     []queuedEvent
	rows, cols  int
	lastButtons tcell.ButtonMask

	ready     chan struct{}
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	tracker driver.ModTracker

	onKey    func(key.Event)
	onMouse  func(driver.MouseEvent)
	onResize func(driver.ResizeEvent)
}

// New creates a driver with a platform screen.
func New(opts Options) (*Driver, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	return NewWithScreen(s, opts), nil
}

// NewWithScreen creates a driver over an existing screen. Tests hand
// in a simulation screen.
func NewWithScreen(s tcell.Screen, opts Options) *Driver {
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	d := &Driver{
		screen: s,
		mouse:  opts.Mouse,
		log:    opts.Logger.WithComponent("tcellscr"),
		ready:  make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
	d.sink = newSink(d)
	return d
}

// Init claims the terminal and starts the event collector.
func (d *Driver) Init() error {
	if err := d.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	if d.mouse {
		d.screen.EnableMouse()
	}

	cols, rows := d.screen.Size()
	d.mu.Lock()
	d.rows, d.cols = rows, cols
	d.mu.Unlock()

	d.wg.Add(1)
	go d.collect()

	d.log.Debug("initialized %dx%d", rows, cols)
	return nil
}

// End restores the terminal. Idempotent; unblocks the collector and
// any thread waiting in EventsPending.
func (d *Driver) End() {
	d.closeOnce.Do(func() {
		d.screen.Fini()
		close(d.quit)
	})
	d.wg.Wait()
}

// Size returns the current terminal dimensions.
func (d *Driver) Size() (rows, cols int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rows == 0 {
		d.cols, d.rows = d.screen.Size()
	}
	return d.rows, d.cols
}

// Sink returns the flush target for this terminal.
func (d *Driver) Sink() screen.Sink { return d.sink }

// SetCursor positions and shows the terminal cursor.
func (d *Driver) SetCursor(row, col int) {
	d.screen.ShowCursor(col, row)
	d.screen.Show()
}

// HideCursor hides the terminal cursor.
func (d *Driver) HideCursor() {
	d.screen.HideCursor()
	d.screen.Show()
}

// OnKey registers the single key handler.
func (d *Driver) OnKey(fn func(key.Event)) { d.onKey = fn }

// OnMouse registers the single mouse handler.
func (d *Driver) OnMouse(fn func(driver.MouseEvent)) { d.onMouse = fn }

// OnResize registers the single resize handler.
func (d *Driver) OnResize(fn func(driver.ResizeEvent)) { d.onResize = fn }

// Setup hands the driver its owning loop.
func (d *Driver) Setup(l *loop.Loop) { d.lp = l }

// Wakeup releases a blocked EventsPending. Safe from any thread.
func (d *Driver) Wakeup() {
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// EventsPending blocks up to the loop's wait budget and reports
// whether queued input, a due timer, a wakeup, or shutdown is ready.
func (d *Driver) EventsPending(wait bool) bool {
	if d.hasPending() {
		return true
	}
	if !wait {
		return false
	}

	infinite := true
	var budget time.Duration
	if d.lp != nil {
		budget, infinite = d.lp.WaitBudget()
		if !infinite && budget <= 0 {
			return true
		}
	}

	var timeout <-chan time.Time
	if !infinite {
		t := time.NewTimer(budget)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-d.ready:
		return true
	case <-timeout:
		return true
	case <-d.quit:
		return true
	}
}

// RunIteration dispatches queued reports until one key event has been
// delivered or the queue drains.
func (d *Driver) RunIteration() {
	for {
		ev, ok := d.popEvent()
		if !ok {
			return
		}
		switch ev.kind {
		case queuedResize:
			if d.onResize != nil {
				d.onResize(driver.ResizeEvent{TopRow: 0})
			}
		case queuedMouse:
			if d.onMouse != nil {
				d.onMouse(ev.mouse)
			}
		case queuedKey:
			mods := d.tracker.Observe(ev.key.Mods)
			if ev.key.Code == key.RawNone {
				continue
			}
			raw := ev.key
			raw.Mods = mods
			kev, ok := key.Translate(raw)
			if !ok {
				// Unrepresentable report; keep accumulated modifiers.
				continue
			}
			d.tracker.Reset()
			if d.onKey != nil {
				d.onKey(kev)
			}
			return
		}
	}
}

func (d *Driver) hasPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) > 0
}

func (d *Driver) popEvent() (queuedEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return queuedEvent{}, false
	}
	ev := d.pending[0]
	d.pending = d.pending[1:]
	return ev, true
}

func (d *Driver) enqueue(events ...queuedEvent) {
	d.mu.Lock()
	d.pending = append(d.pending, events...)
	d.mu.Unlock()
	d.Wakeup()
}

// collect blocks in PollEvent and converts everything into queued
// reports. PollEvent returning nil means Fini ran.
func (d *Driver) collect() {
	defer d.wg.Done()
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			d.enqueue(queuedEvent{kind: queuedKey, key: convertKey(e)})
		case *tcell.EventMouse:
			if q, ok := d.convertMouse(e); ok {
				d.enqueue(q)
			}
		case *tcell.EventResize:
			cols, rows := e.Size()
			d.mu.Lock()
			changed := rows != d.rows || cols != d.cols
			if changed {
				d.rows, d.cols = rows, cols
				d.pending = append(d.pending, queuedEvent{kind: queuedResize})
			}
			d.mu.Unlock()
			if changed {
				d.log.Debug("resized to %dx%d", rows, cols)
				d.Wakeup()
			}
		}
	}
}

// convertMouse derives press/release/motion by diffing the reported
// button state against the previous report.
func (d *Driver) convertMouse(e *tcell.EventMouse) (queuedEvent, bool) {
	col, row := e.Position()
	mods := convertMods(e.Modifiers())

	ev := driver.MouseEvent{Row: row, Col: col, Mods: mods}
	buttons := e.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		ev.Button = driver.MouseWheelUp
		ev.Action = driver.MousePress
	case buttons&tcell.WheelDown != 0:
		ev.Button = driver.MouseWheelDown
		ev.Action = driver.MousePress
	default:
		d.mu.Lock()
		prev := d.lastButtons
		d.lastButtons = buttons
		d.mu.Unlock()

		switch {
		case buttons == prev:
			ev.Button = buttonFor(buttons)
			ev.Action = driver.MouseMotion
		case buttons&^prev != 0:
			ev.Button = buttonFor(buttons &^ prev)
			ev.Action = driver.MousePress
		default:
			ev.Button = buttonFor(prev &^ buttons)
			ev.Action = driver.MouseRelease
		}
	}
	return queuedEvent{kind: queuedMouse, mouse: ev}, true
}

func buttonFor(b tcell.ButtonMask) driver.MouseButton {
	switch {
	case b&tcell.Button1 != 0:
		return driver.MouseLeft
	case b&tcell.Button2 != 0:
		return driver.MouseMiddle
	case b&tcell.Button3 != 0:
		return driver.MouseRight
	default:
		return driver.MouseNone
	}
}
