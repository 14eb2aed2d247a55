package tcellscr

import (
	"github.com/gdamore/tcell/v2"

	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/screen"
)

// Sink renders flush instructions through tcell's cell grid. Reset
// ends the frame with Show, which performs the library's own diffing
// against the physical terminal.
type Sink struct {
	d        *Driver
	row, col int
	style    tcell.Style
}

func newSink(d *Driver) *Sink {
	return &Sink{d: d, style: styleFor(screen.DefaultAttr)}
}

// MoveCursor positions the write cursor at a zero-based cell.
func (s *Sink) MoveCursor(row, col int) error {
	rows, cols := s.d.Size()
	if row < 0 || col < 0 || row >= rows || col >= cols {
		return &driver.TransientError{Op: "cursor move"}
	}
	s.row, s.col = row, col
	return nil
}

// SetActiveColor sets the style used for subsequent characters.
func (s *Sink) SetActiveColor(attr screen.Attribute) {
	s.style = styleFor(attr)
}

// WriteCharacter places one rune at the cursor and advances it by the
// rune's display width, so a double-width glyph leaves its trailing
// column untouched just as a real terminal cursor would.
func (s *Sink) WriteCharacter(r rune) {
	s.d.screen.SetContent(s.col, s.row, r, nil, s.style)
	w := screen.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	s.col += w
}

// Reset pushes the frame to the terminal.
func (s *Sink) Reset() {
	s.d.screen.Show()
}

func styleFor(attr screen.Attribute) tcell.Style {
	fg, bg := attr.Decompose()
	return tcell.StyleDefault.
		Foreground(tcell.PaletteColor(int(fg))).
		Background(tcell.PaletteColor(int(bg)))
}
