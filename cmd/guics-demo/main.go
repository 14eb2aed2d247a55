// Package main is a small interactive exercise of the engine: a status
// line, a clock driven by a repeating timer, a key/mouse event log, and
// live resize handling. Press q or Ctrl+C to quit.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markobalaban/GuiCS/internal/app"
	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/input/key"
	"github.com/markobalaban/GuiCS/internal/screen"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options
	var showVersion bool
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.DriverName, "driver", "", "Console driver (ansi or tcell)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("guics-demo %s\n", version)
		return 0
	}

	session, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer session.End()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		session.Quit()
	}()

	d := &demo{session: session}
	session.SetRender(d.render)
	session.OnKey(d.handleKey)
	session.OnMouse(d.handleMouse)

	var tick func()
	tick = func() {
		d.drawClock(session.Buffer())
		session.Flush()
		session.Loop().AddTimeout(time.Second, tick)
	}
	session.Loop().AddTimeout(time.Second, tick)

	if err := session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

const logLines = 8

type demo struct {
	session *app.Session
	events  []string
}

var (
	titleAttr  = screen.MakeAttr(screen.ColorBrightWhite, screen.ColorBlue)
	statusAttr = screen.MakeAttr(screen.ColorBlack, screen.ColorWhite)
	logAttr    = screen.MakeAttr(screen.ColorGreen, screen.ColorBlack)
	clockAttr  = screen.MakeAttr(screen.ColorBrightYellow, screen.ColorBlack)
)

// render rebuilds the whole frame; it runs on startup and after every
// resize.
func (d *demo) render(buf *screen.Buffer) {
	rows, cols := buf.Size()
	buf.Clear()

	buf.Fill(screen.NewRect(0, 0, 1, cols), ' ', titleAttr)
	buf.Move(0, 1)
	buf.WriteString("guics demo", titleAttr)

	buf.Fill(screen.NewRect(rows-1, 0, rows, cols), ' ', statusAttr)
	buf.Move(rows-1, 1)
	buf.WriteString(fmt.Sprintf("%dx%d | q or Ctrl+C to quit", rows, cols), statusAttr)

	d.drawClock(buf)
	d.drawLog(buf)
}

func (d *demo) drawClock(buf *screen.Buffer) {
	_, cols := buf.Size()
	stamp := time.Now().Format("15:04:05")
	if cols < len(stamp)+2 {
		return
	}
	buf.Move(0, cols-len(stamp)-1)
	buf.WriteString(stamp, clockAttr)
}

func (d *demo) drawLog(buf *screen.Buffer) {
	rows, cols := buf.Size()
	top := 2
	for i := 0; i < logLines && top+i < rows-1; i++ {
		buf.Fill(screen.NewRect(top+i, 0, top+i+1, cols), ' ', logAttr)
		if i < len(d.events) {
			buf.Move(top+i, 1)
			buf.WriteString(d.events[i], logAttr)
		}
	}
}

func (d *demo) record(line string) {
	d.events = append([]string{line}, d.events...)
	if len(d.events) > logLines {
		d.events = d.events[:logLines]
	}
	d.drawLog(d.session.Buffer())
	d.session.Flush()
}

func (d *demo) handleKey(ev key.Event) {
	if ev.Key == key.Char('q') || ev.Key == key.ControlCode(3) {
		d.session.Quit()
		return
	}
	d.record(fmt.Sprintf("key   %s", ev))
}

func (d *demo) handleMouse(ev driver.MouseEvent) {
	action := "press"
	switch ev.Action {
	case driver.MouseRelease:
		action = "release"
	case driver.MouseMotion:
		action = "motion"
	}
	d.record(fmt.Sprintf("mouse %s button=%d at %d,%d", action, ev.Button, ev.Row, ev.Col))
}
