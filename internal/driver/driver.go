// Package driver defines the contract every platform console family
// implements: terminal session lifecycle, the flush sink, the event
// source protocol, and the callback registration surface.
package driver

import (
	"fmt"

	"github.com/markobalaban/GuiCS/internal/input/key"
	"github.com/markobalaban/GuiCS/internal/loop"
	"github.com/markobalaban/GuiCS/internal/screen"
)

// ResizeEvent notifies the widget layer that the visible scroll origin
// moved. It carries only the new top-row offset; callers recompute
// row/column counts from Size, not from the event.
type ResizeEvent struct {
	TopRow int
}

// MouseButton identifies which button a mouse report refers to.
type MouseButton uint8

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// MouseAction distinguishes press, release, and motion reports.
type MouseAction uint8

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMotion
)

// MouseEvent is one translated mouse report.
type MouseEvent struct {
	Row, Col int
	Button   MouseButton
	Action   MouseAction
	Mods     key.Modifier
}

// Driver is one platform console family. It owns the terminal session,
// provides the sink the screen buffer flushes into, and feeds the
// scheduler as its event source. Multiple drivers satisfy the same
// contract; the scheduler never knows which one it is driving.
type Driver interface {
	loop.Source

	// Init claims the terminal (raw mode, alternate screen) and starts
	// the background input machinery.
	Init() error

	// End restores the terminal. Idempotent; also releases any thread
	// blocked in EventsPending.
	End()

	// Size returns the current terminal dimensions.
	Size() (rows, cols int)

	// Sink returns the flush target for this terminal.
	Sink() screen.Sink

	// SetCursor positions and shows the terminal cursor. Callers invoke
	// it after Flush to park the visible cursor.
	SetCursor(row, col int)

	// HideCursor hides the terminal cursor.
	HideCursor()

	// OnKey registers the single key handler.
	OnKey(func(key.Event))

	// OnMouse registers the single mouse handler.
	OnMouse(func(MouseEvent))

	// OnResize registers the single resize handler.
	OnResize(func(ResizeEvent))
}

// TransientError marks a platform fault that the next iteration
// retries: cursor positioning or dimension queries racing a terminal
// resize. It never propagates beyond the driver layer as a failure.
type TransientError struct {
	Op string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient console fault during %s", e.Op)
}

// ModTracker accumulates modifier flags across raw reports that split
// one logical keypress into several notifications. The driver resets it
// after each successfully dispatched key event.
type ModTracker struct {
	mods key.Modifier
}

// Observe folds another report's modifier bits into the pending state
// and returns the combined mask.
func (t *ModTracker) Observe(m key.Modifier) key.Modifier {
	t.mods = t.mods.With(m)
	return t.mods
}

// Reset clears the pending state after a dispatch.
func (t *ModTracker) Reset() { t.mods = key.ModNone }
