// Package app wires the engine together: configuration, logging, the
// console driver, the screen buffer, and the event loop, with the
// lifecycle managed in one place.
package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/markobalaban/GuiCS/internal/config"
	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/driver/ansi"
	"github.com/markobalaban/GuiCS/internal/driver/tcellscr"
	"github.com/markobalaban/GuiCS/internal/input/key"
	"github.com/markobalaban/GuiCS/internal/logging"
	"github.com/markobalaban/GuiCS/internal/loop"
	"github.com/markobalaban/GuiCS/internal/screen"
)

// Options configures a Session.
type Options struct {
	// ConfigPath locates the TOML configuration file. A missing file
	// leaves the defaults in effect.
	ConfigPath string

	// DriverName overrides the configured driver ("ansi" or "tcell").
	DriverName string

	// Driver injects a pre-built driver, bypassing selection. Tests use
	// this to run the session headless.
	Driver driver.Driver

	// Logger overrides the log destination derived from the config.
	Logger *logging.Logger
}

// Session owns one engine instance for the process lifetime.
type Session struct {
	cfg     *config.Config
	log     *logging.Logger
	drv     driver.Driver
	lp      *loop.Loop
	buf     *screen.Buffer
	palette *ansi.Palette

	render   func(*screen.Buffer)
	onKey    func(key.Event)
	onMouse  func(driver.MouseEvent)
	onResize func(rows, cols int)

	endOnce sync.Once
}

// New assembles a session. The terminal is not touched until Run.
func New(opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DriverName != "" {
		cfg.Terminal.Driver = opts.DriverName
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log, err = newLogger(cfg)
		if err != nil {
			return nil, err
		}
	}

	palette := ansi.DefaultPalette()
	for name, hex := range cfg.Colors.Palette {
		c, _ := screen.ColorFromName(name)
		if err := palette.Override(c, hex); err != nil {
			return nil, fmt.Errorf("applying palette: %w", err)
		}
	}

	drv := opts.Driver
	if drv == nil {
		drv, err = newDriver(cfg, log)
		if err != nil {
			return nil, &InitError{Component: "driver", Err: err}
		}
	}

	s := &Session{
		cfg:     cfg,
		log:     log.WithComponent("session"),
		drv:     drv,
		palette: palette,
	}
	s.lp = loop.New(drv)
	return s, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if cfg.Log.File == "" {
		return logging.Discard, nil
	}
	return logging.NewFile(cfg.Log.File, logging.ParseLevel(cfg.Log.Level), "guics")
}

func newDriver(cfg *config.Config, log *logging.Logger) (driver.Driver, error) {
	switch cfg.Terminal.Driver {
	case "tcell":
		return tcellscr.New(tcellscr.Options{
			Mouse:  cfg.Terminal.Mouse,
			Logger: log,
		})
	default:
		return ansi.New(ansi.Options{
			Mouse:              cfg.Terminal.Mouse,
			EscapeTimeout:      cfg.EscapeTimeout(),
			ResizePollInterval: cfg.ResizePoll(),
			Logger:             log,
		}), nil
	}
}

// Config returns the loaded configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Loop returns the scheduler for timer and idle registration.
func (s *Session) Loop() *loop.Loop { return s.lp }

// Buffer returns the screen buffer. Nil until Run initializes the
// terminal.
func (s *Session) Buffer() *screen.Buffer { return s.buf }

// QuantizeHex maps an "#rrggbb" value to the nearest palette color,
// honoring configured palette overrides.
func (s *Session) QuantizeHex(hex string) (screen.Color, error) {
	return s.palette.NearestHex(hex)
}

// OnKey registers the key handler. Must be called before Run.
func (s *Session) OnKey(fn func(key.Event)) { s.onKey = fn }

// OnMouse registers the mouse handler. Must be called before Run.
func (s *Session) OnMouse(fn func(driver.MouseEvent)) { s.onMouse = fn }

// OnResize registers a handler called with the new dimensions after
// the buffer has been resized.
func (s *Session) OnResize(fn func(rows, cols int)) { s.onResize = fn }

// SetRender registers the frame builder. It runs against the buffer
// on startup and after every resize; handlers may also draw directly
// and call Flush.
func (s *Session) SetRender(fn func(*screen.Buffer)) { s.render = fn }

// Quit requests shutdown from any callback or thread.
func (s *Session) Quit() { s.lp.Stop() }

// SetCursor positions and shows the terminal cursor.
func (s *Session) SetCursor(row, col int) { s.drv.SetCursor(row, col) }

// HideCursor hides the terminal cursor.
func (s *Session) HideCursor() { s.drv.HideCursor() }

// Flush transmits buffered changes to the terminal. A transient
// console fault leaves the undelivered cells dirty; the next flush
// retries them.
func (s *Session) Flush() {
	sink := s.drv.Sink()
	err := s.buf.Flush(sink)
	sink.Reset()
	if err == nil {
		return
	}
	var te *driver.TransientError
	if errors.As(err, &te) {
		s.log.Debug("flush deferred: %v", err)
		return
	}
	s.log.Error("flush: %v", err)
}

// Run claims the terminal and drives the event loop until Quit. The
// terminal is restored before it returns.
func (s *Session) Run() error {
	if err := s.drv.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer s.End()

	rows, cols := s.drv.Size()
	s.buf = screen.NewBuffer(rows, cols, s.cfg.DefaultAttr())

	s.drv.OnKey(func(ev key.Event) {
		if s.onKey != nil {
			s.onKey(ev)
		}
	})
	s.drv.OnMouse(func(ev driver.MouseEvent) {
		if s.onMouse != nil {
			s.onMouse(ev)
		}
	})
	s.drv.OnResize(func(driver.ResizeEvent) {
		rows, cols := s.drv.Size()
		s.buf.Resize(rows, cols)
		if s.onResize != nil {
			s.onResize(rows, cols)
		}
		if s.render != nil {
			s.render(s.buf)
		}
		s.Flush()
	})

	if s.render != nil {
		s.render(s.buf)
	}
	s.Flush()

	s.log.Info("session started %dx%d driver=%s", rows, cols, s.cfg.Terminal.Driver)
	s.lp.Run()
	return nil
}

// End restores the terminal. Run calls it on the way out; calling it
// again is harmless.
func (s *Session) End() {
	s.endOnce.Do(func() {
		s.drv.End()
		s.log.Info("session ended")
	})
}
