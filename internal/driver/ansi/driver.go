// Package ansi implements the raw-terminal console driver: direct
// escape-sequence output over a tty in raw mode, with input decoded
// from the byte stream on a background reader.
package ansi

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/input/key"
	"github.com/markobalaban/GuiCS/internal/logging"
	"github.com/markobalaban/GuiCS/internal/loop"
	"github.com/markobalaban/GuiCS/internal/screen"
)

// Options configures the driver.
type Options struct {
	// In and Out default to the process stdin/stdout.
	In  *os.File
	Out *os.File

	// EscapeTimeout is how long a lone ESC byte may sit in the read
	// buffer before it is delivered as an Escape keypress rather than
	// the start of a sequence. Defaults to 50ms.
	EscapeTimeout time.Duration

	// ResizePollInterval bounds how often dimensions are re-queried when
	// no SIGWINCH arrives (some terminals never deliver one). Defaults
	// to 500ms.
	ResizePollInterval time.Duration

	// Mouse enables SGR mouse reporting.
	Mouse bool

	Logger *logging.Logger
}

// Driver is the ANSI console driver. It owns two background
// goroutines: a gated input reader that performs one read handoff per
// probe, and a resize watcher. Both communicate with the UI thread
// only through the pending queue.
type Driver struct {
	in, out *os.File
	inFd    int
	outFd   int
	saved   *term.State

	escapeTimeout time.Duration
	resizePoll    time.Duration
	mouse         bool
	log           *logging.Logger

	lp   *loop.Loop
	sink *Sink

	mu         sync.Mutex
	pending    []inputEvent
	rows, cols int

	probe     chan struct{}
	ready     chan struct{}
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	tracker driver.ModTracker

	onKey    func(key.Event)
	onMouse  func(driver.MouseEvent)
	onResize func(driver.ResizeEvent)
}

// New creates a driver. Init must be called before the loop runs it.
func New(opts Options) *Driver {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.EscapeTimeout <= 0 {
		opts.EscapeTimeout = 50 * time.Millisecond
	}
	if opts.ResizePollInterval <= 0 {
		opts.ResizePollInterval = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}

	d := &Driver{
		in:            opts.In,
		out:           opts.Out,
		inFd:          int(opts.In.Fd()),
		outFd:         int(opts.Out.Fd()),
		escapeTimeout: opts.EscapeTimeout,
		resizePoll:    opts.ResizePollInterval,
		mouse:         opts.Mouse,
		log:           opts.Logger.WithComponent("ansi"),
		probe:         make(chan struct{}, 1),
		ready:         make(chan struct{}, 1),
		quit:          make(chan struct{}),
	}
	d.sink = NewSink(opts.Out, func() (int, int) { return d.Size() })
	return d
}

// Init claims the terminal and starts the background machinery.
func (d *Driver) Init() error {
	if !term.IsTerminal(d.inFd) {
		return fmt.Errorf("input is not a terminal")
	}
	saved, err := term.MakeRaw(d.inFd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	d.saved = saved

	rows, cols := queryWinsize(d.outFd)
	d.mu.Lock()
	d.rows, d.cols = rows, cols
	d.mu.Unlock()

	// Alternate screen, clear, hide cursor.
	d.out.WriteString("\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l")
	if d.mouse {
		d.out.WriteString("\x1b[?1002h\x1b[?1006h")
	}

	d.start()
	d.log.Debug("initialized %dx%d", rows, cols)
	return nil
}

// start launches the reader and resize watcher. Split from Init so
// tests can drive the input path over a pipe without a tty.
func (d *Driver) start() {
	d.wg.Add(2)
	go d.readLoop()
	go d.watchResize()
}

// End stops the background goroutines and restores the terminal.
// Idempotent; releases any thread blocked in EventsPending.
func (d *Driver) End() {
	d.closeOnce.Do(func() { close(d.quit) })
	d.wg.Wait()

	if d.saved == nil {
		return
	}
	if d.mouse {
		d.out.WriteString("\x1b[?1006l\x1b[?1002l")
	}
	d.out.WriteString("\x1b[0m\x1b[?25h\x1b[?1049l")
	if err := term.Restore(d.inFd, d.saved); err != nil {
		d.log.Error("restoring terminal: %v", err)
	}
	d.saved = nil
}

// Size returns the current terminal dimensions.
func (d *Driver) Size() (rows, cols int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rows == 0 {
		d.rows, d.cols = queryWinsize(d.outFd)
	}
	return d.rows, d.cols
}

// Sink returns the flush target for this terminal.
func (d *Driver) Sink() screen.Sink { return d.sink }

// SetCursor positions and shows the terminal cursor.
func (d *Driver) SetCursor(row, col int) {
	fmt.Fprintf(d.out, "\x1b[%d;%dH\x1b[?25h", row+1, col+1)
}

// HideCursor hides the terminal cursor.
func (d *Driver) HideCursor() {
	d.out.WriteString("\x1b[?25l")
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

// EventsPending probes the reader for one read handoff, then blocks up
// to the loop's wait budget. It reports true when input is queued, a
// timer is due, a wakeup arrived, or shutdown was requested.
func (d *Driver) EventsPending(wait bool) bool {
	select {
	case d.probe <- struct{}{}:
	default:
	}

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
// delivered or the queue drains. Resize and mouse reports encountered
// on the way are dispatched as well; modifier-only reports accumulate
// into the next key.
func (d *Driver) RunIteration() {
	for {
		ev, ok := d.popEvent()
		if !ok {
			return
		}
		switch ev.kind {
		case inputResize:
			if d.onResize != nil {
				d.onResize(driver.ResizeEvent{TopRow: 0})
			}
		case inputMouse:
			if d.onMouse != nil {
				d.onMouse(ev.mouse)
			}
		case inputKey:
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

func (d *Driver) popEvent() (inputEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return inputEvent{}, false
	}
	ev := d.pending[0]
	d.pending = d.pending[1:]
	return ev, true
}

func (d *Driver) enqueue(events ...inputEvent) {
	d.mu.Lock()
	d.pending = append(d.pending, events...)
	d.mu.Unlock()
	d.Wakeup()
}

func (d *Driver) stopping() bool {
	select {
	case <-d.quit:
		return true
	default:
		return false
	}
}

// readLoop is the gated input reader: it sleeps until probed, performs
// one read handoff (blocking until at least one complete report is
// decoded), queues the results, and goes back to sleep.
func (d *Driver) readLoop() {
	defer d.wg.Done()

	buf := make([]byte, 0, 256)
	chunk := make([]byte, 256)
	pollMS := int(d.escapeTimeout / time.Millisecond)
	if pollMS <= 0 {
		pollMS = 50
	}

	for {
		select {
		case <-d.quit:
			return
		case <-d.probe:
		}

		for !d.stopping() {
			fds := []unix.PollFd{{Fd: int32(d.inFd), Events: unix.POLLIN}}
			n, err := unix.Poll(fds, pollMS)
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				d.log.Error("input poll: %v", err)
				return
			}

			if n == 0 {
				// A lone ESC that outlived the timeout is a real
				// Escape press, not a sequence introducer.
				if len(buf) == 1 && buf[0] == 0x1b {
					buf = buf[:0]
					d.enqueue(keyEvent(key.Raw{Code: key.RawEscape}))
					break
				}
				continue
			}

			rn, err := unix.Read(d.inFd, chunk)
			if err != nil {
				if err == unix.EINTR || err == unix.EAGAIN {
					continue
				}
				d.log.Error("input read: %v", err)
				return
			}
			if rn == 0 {
				d.log.Debug("input closed")
				return
			}

			buf = append(buf, chunk[:rn]...)
			events, consumed := parseBytes(buf)
			if consumed > 0 {
				buf = append(buf[:0], buf[consumed:]...)
			}
			if len(events) > 0 {
				d.enqueue(events...)
				break
			}
		}
	}
}

// watchResize re-queries dimensions on SIGWINCH and on a bounded poll
// interval, queueing a resize report when they change.
func (d *Driver) watchResize() {
	defer d.wg.Done()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(d.resizePoll)
	defer ticker.Stop()

	for {
		select {
		case <-d.quit:
			return
		case <-sigCh:
		case <-ticker.C:
		}
		d.checkResize()
	}
}

func (d *Driver) checkResize() {
	rows, cols := queryWinsize(d.outFd)

	d.mu.Lock()
	changed := rows != d.rows || cols != d.cols
	if changed {
		d.rows, d.cols = rows, cols
		d.pending = append(d.pending, inputEvent{kind: inputResize})
	}
	d.mu.Unlock()

	if changed {
		d.log.Debug("resized to %dx%d", rows, cols)
		d.Wakeup()
	}
}

// queryWinsize returns (rows, cols), falling back to 24x80 when the
// ioctl fails (output is not a tty).
func queryWinsize(fd int) (int, int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Row == 0 || ws.Col == 0 {
		return 24, 80
	}
	return int(ws.Row), int(ws.Col)
}
