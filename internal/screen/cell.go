package screen

import "github.com/mattn/go-runewidth"

// Cell is one character-grid position: its rune, packed color pair, and
// whether its content has been transmitted to the terminal. Cells live
// only inside a Buffer; nothing outside this package holds a reference
// to one.
type Cell struct {
	Rune  rune
	Attr  Attribute
	Width int
	Dirty bool
}

// blankCell returns the cell a resize fills the grid with.
func blankCell(attr Attribute) Cell {
	return Cell{Rune: ' ', Attr: attr, Width: 1, Dirty: true}
}

// continuationCell trails a double-width rune. It occupies a grid slot
// but is never emitted; flush skips zero-width cells.
func continuationCell(attr Attribute) Cell {
	return Cell{Rune: 0, Attr: attr, Width: 0, Dirty: true}
}

// IsContinuation reports whether the cell is the trailing half of a
// double-width rune.
func (c Cell) IsContinuation() bool { return c.Width == 0 }

// RuneWidth returns the terminal display width of r: 0 for control
// runes, 2 for wide (CJK and friends), otherwise 1.
func RuneWidth(r rune) int {
	if r < ' ' || r == 0x7f {
		return 0
	}
	return runewidth.RuneWidth(r)
}
