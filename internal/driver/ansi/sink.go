package ansi

import (
	"bufio"
	"fmt"
	"io"

	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/screen"
)

// Sink renders flush instructions as ANSI control sequences. Output is
// buffered; Reset ends the frame and pushes everything to the terminal
// in one write.
type Sink struct {
	w    *bufio.Writer
	size func() (rows, cols int)
}

// NewSink wraps w. size reports the terminal dimensions used to bounds
// check cursor moves; positioning races a shrinking terminal otherwise.
func NewSink(w io.Writer, size func() (rows, cols int)) *Sink {
	return &Sink{
		w:    bufio.NewWriterSize(w, 8192),
		size: size,
	}
}

// MoveCursor positions the cursor at a zero-based cell. A move outside
// the current dimensions reports a transient fault so the caller can
// retry after the pending resize lands.
func (s *Sink) MoveCursor(row, col int) error {
	rows, cols := s.size()
	if row < 0 || col < 0 || row >= rows || col >= cols {
		return &driver.TransientError{Op: "cursor move"}
	}
	fmt.Fprintf(s.w, "\x1b[%d;%dH", row+1, col+1)
	return nil
}

// SetActiveColor emits the SGR pair for the attribute's colors.
func (s *Sink) SetActiveColor(attr screen.Attribute) {
	fg, bg := attr.Decompose()
	fmt.Fprintf(s.w, "\x1b[%d;%dm", sgrForeground(fg), sgrBackground(bg))
}

// WriteCharacter emits one rune at the cursor.
func (s *Sink) WriteCharacter(r rune) {
	s.w.WriteRune(r)
}

// Reset clears the active attributes and flushes the frame.
func (s *Sink) Reset() {
	s.w.WriteString("\x1b[0m")
	s.w.Flush()
}

func sgrForeground(c screen.Color) int {
	if c.IsBright() {
		return 90 + int(c) - 8
	}
	return 30 + int(c)
}

func sgrBackground(c screen.Color) int {
	if c.IsBright() {
		return 100 + int(c) - 8
	}
	return 40 + int(c)
}
