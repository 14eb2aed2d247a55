package screen

// Buffer is the off-screen grid the widget layer draws into. It
// accumulates writes as dirty cells and transmits only changed runs on
// Flush, so repaint cost tracks changed cells rather than screen area.
//
// The buffer is owned by the UI thread; it is not safe for concurrent
// use and never needs to be, since background input threads never touch
// screen state.
type Buffer struct {
	rows, cols int
	backing    []Cell   // one contiguous allocation
	cells      [][]Cell // row views into backing
	rowDirty   []bool
	clip       Rect
	defAttr    Attribute

	// implicit write cursor, advanced by rune display width
	curRow, curCol int
}

// NewBuffer allocates a buffer with every cell blank and dirty, so the
// first flush paints the whole screen.
func NewBuffer(rows, cols int, def Attribute) *Buffer {
	b := &Buffer{defAttr: def, rows: -1, cols: -1}
	b.Resize(rows, cols)
	return b
}

// Resize reallocates the grid for the new terminal dimensions, clears
// every cell to a blank with the default attribute, marks everything
// dirty, and resets the clip to the full grid. Calling it with the
// current dimensions is a no-op.
func (b *Buffer) Resize(rows, cols int) {
	if rows == b.rows && cols == b.cols {
		return
	}
	b.rows, b.cols = rows, cols
	b.backing = make([]Cell, rows*cols)
	b.cells = make([][]Cell, rows)
	b.rowDirty = make([]bool, rows)
	blank := blankCell(b.defAttr)
	for r := 0; r < rows; r++ {
		row := b.backing[r*cols : (r+1)*cols]
		for c := range row {
			row[c] = blank
		}
		b.cells[r] = row
		b.rowDirty[r] = true
	}
	b.clip = Rect{Bottom: rows, Right: cols}
	b.curRow, b.curCol = 0, 0
}

// Size returns the current grid dimensions.
func (b *Buffer) Size() (rows, cols int) { return b.rows, b.cols }

// SetClip constrains subsequent writes to the intersection of r with
// the grid. Writes outside the clip are dropped, never an error.
func (b *Buffer) SetClip(r Rect) {
	b.clip = r.Intersection(Rect{Bottom: b.rows, Right: b.cols})
}

// Clip returns the active clip rectangle.
func (b *Buffer) Clip() Rect { return b.clip }

// Move positions the implicit write cursor.
func (b *Buffer) Move(row, col int) {
	b.curRow, b.curCol = row, col
}

// WriteRune writes r at the cursor with the given attribute and
// advances the cursor by r's display width. Double-width runes consume
// two grid slots; the trailing slot becomes a continuation cell that
// flush skips. A wide rune whose trailing slot falls outside the clip
// becomes a blank. Writes outside the clip still advance the cursor.
func (b *Buffer) WriteRune(r rune, attr Attribute) {
	w := RuneWidth(r)
	if w == 0 {
		// Control runes would corrupt the terminal stream; render a blank.
		r, w = ' ', 1
	}
	row, col := b.curRow, b.curCol
	b.curCol += w
	if !b.clip.Contains(row, col) {
		return
	}
	if w == 2 && !b.clip.Contains(row, col+1) {
		// No room for the trailing half; render a blank rather than
		// let the glyph spill past the clip edge on flush.
		b.cells[row][col] = Cell{Rune: ' ', Attr: attr, Width: 1, Dirty: true}
		b.rowDirty[row] = true
		return
	}
	b.cells[row][col] = Cell{Rune: r, Attr: attr, Width: w, Dirty: true}
	b.rowDirty[row] = true
	if w == 2 {
		b.cells[row][col+1] = continuationCell(attr)
	}
}

// WriteCell positions the cursor and writes one rune there.
func (b *Buffer) WriteCell(row, col int, r rune, attr Attribute) {
	b.Move(row, col)
	b.WriteRune(r, attr)
}

// WriteString writes s at the cursor, clip- and width-aware.
func (b *Buffer) WriteString(s string, attr Attribute) {
	for _, r := range s {
		b.WriteRune(r, attr)
	}
}

// Fill writes r into every cell of rect that lies within the clip.
func (b *Buffer) Fill(rect Rect, r rune, attr Attribute) {
	for row := rect.Top; row < rect.Bottom; row++ {
		b.Move(row, rect.Left)
		for col := rect.Left; col < rect.Right; col++ {
			b.WriteRune(r, attr)
		}
	}
}

// Clear blanks the whole grid with the default attribute.
func (b *Buffer) Clear() {
	b.Fill(Rect{Bottom: b.rows, Right: b.cols}, ' ', b.defAttr)
}

// CellAt returns a copy of the cell at (row, col) and whether the
// position is inside the grid.
func (b *Buffer) CellAt(row, col int) (Cell, bool) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return Cell{}, false
	}
	return b.cells[row][col], true
}

// RowDirty reports whether any cell in the row awaits transmission.
func (b *Buffer) RowDirty(row int) bool {
	if row < 0 || row >= b.rows {
		return false
	}
	return b.rowDirty[row]
}

// Dirty reports whether any cell awaits transmission.
func (b *Buffer) Dirty() bool {
	for _, d := range b.rowDirty {
		if d {
			return true
		}
	}
	return false
}

// Flush transmits every dirty run to the sink. Rows with no dirty cells
// are skipped entirely. Each maximal contiguous dirty run costs one
// MoveCursor; the active color switches only when an emitted cell's
// attribute differs from the previous one.
//
// If MoveCursor reports a transient fault the flush aborts without
// clearing the dirty flags of unemitted cells, so the next Flush
// retries them: screen content is delivered at least once.
func (b *Buffer) Flush(sink Sink) error {
	var active Attribute
	activeValid := false

	for row := 0; row < b.rows; row++ {
		if !b.rowDirty[row] {
			continue
		}
		line := b.cells[row]
		col := 0
		for col < b.cols {
			if !line[col].Dirty {
				col++
				continue
			}
			if err := sink.MoveCursor(row, col); err != nil {
				b.rowDirty[row] = rowHasDirty(line)
				return err
			}
			for col < b.cols && line[col].Dirty {
				c := &line[col]
				if !c.IsContinuation() {
					if !activeValid || c.Attr != active {
						sink.SetActiveColor(c.Attr)
						active = c.Attr
						activeValid = true
					}
					sink.WriteCharacter(c.Rune)
				}
				c.Dirty = false
				col++
			}
		}
		b.rowDirty[row] = false
	}
	return nil
}

func rowHasDirty(line []Cell) bool {
	for i := range line {
		if line[i].Dirty {
			return true
		}
	}
	return false
}
