package screen

import (
	"errors"
	"testing"
)

// recordingSink captures the flush instruction stream for assertions.
type recordingSink struct {
	moves      int
	colorSets  int
	runes      []rune
	failMoves  int // fail the first N MoveCursor calls
	lastRow    int
	lastCol    int
	lastAttr   Attribute
	haveAttr   bool
	resetCalls int
}

var errMidResize = errors.New("cursor positioning failed")

func (s *recordingSink) MoveCursor(row, col int) error {
	if s.failMoves > 0 {
		s.failMoves--
		return errMidResize
	}
	s.moves++
	s.lastRow, s.lastCol = row, col
	return nil
}

func (s *recordingSink) SetActiveColor(attr Attribute) {
	s.colorSets++
	s.lastAttr = attr
	s.haveAttr = true
}

func (s *recordingSink) WriteCharacter(r rune) {
	s.runes = append(s.runes, r)
}

func (s *recordingSink) Reset() { s.resetCalls++ }

func TestFlushIsIdempotent(t *testing.T) {
	b := NewBuffer(5, 10, DefaultAttr)
	if err := b.Flush(&recordingSink{}); err != nil {
		t.Fatalf("initial flush: %v", err)
	}

	b.WriteCell(2, 3, 'x', DefaultAttr)

	first := &recordingSink{}
	if err := b.Flush(first); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(first.runes) != 1 || first.runes[0] != 'x' {
		t.Errorf("first flush emitted %q, want exactly %q", string(first.runes), "x")
	}

	second := &recordingSink{}
	if err := b.Flush(second); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if len(second.runes) != 0 || second.moves != 0 {
		t.Errorf("second flush emitted %d runes, %d moves; want none", len(second.runes), second.moves)
	}
}

func TestFlushMinimizesInstructions(t *testing.T) {
	for _, n := range []int{1, 5, 40} {
		b := NewBuffer(3, 50, DefaultAttr)
		_ = b.Flush(&recordingSink{})

		attr := MakeAttr(ColorGreen, ColorBlack)
		b.Move(1, 2)
		for i := 0; i < n; i++ {
			b.WriteRune('a', attr)
		}

		s := &recordingSink{}
		if err := b.Flush(s); err != nil {
			t.Fatalf("n=%d: flush: %v", n, err)
		}
		if s.moves != 1 {
			t.Errorf("n=%d: %d cursor moves, want 1", n, s.moves)
		}
		if s.colorSets != 1 {
			t.Errorf("n=%d: %d color switches, want 1", n, s.colorSets)
		}
		if len(s.runes) != n {
			t.Errorf("n=%d: emitted %d runes, want %d", n, len(s.runes), n)
		}
	}
}

func TestFlushSwitchesColorOnlyOnChange(t *testing.T) {
	b := NewBuffer(1, 10, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	red := MakeAttr(ColorRed, ColorBlack)
	blue := MakeAttr(ColorBlue, ColorBlack)
	b.Move(0, 0)
	b.WriteRune('r', red)
	b.WriteRune('r', red)
	b.WriteRune('b', blue)
	b.WriteRune('r', red)

	s := &recordingSink{}
	if err := b.Flush(s); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s.colorSets != 3 {
		t.Errorf("%d color switches, want 3 (red, blue, red)", s.colorSets)
	}
}

func TestFlushSkipsCleanRows(t *testing.T) {
	b := NewBuffer(100, 100, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	b.WriteCell(50, 50, 'x', DefaultAttr)

	s := &recordingSink{}
	_ = b.Flush(s)
	if s.moves != 1 || s.lastRow != 50 || s.lastCol != 50 {
		t.Errorf("flush visited (%d,%d) in %d moves, want one move to (50,50)",
			s.lastRow, s.lastCol, s.moves)
	}
}

func TestResizeClearsAndMarksAllDirty(t *testing.T) {
	b := NewBuffer(10, 10, DefaultAttr)
	_ = b.Flush(&recordingSink{})
	b.WriteCell(1, 1, 'x', DefaultAttr)

	b.Resize(5, 20)

	rows, cols := b.Size()
	if rows != 5 || cols != 20 {
		t.Fatalf("Size() = (%d, %d), want (5, 20)", rows, cols)
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c, ok := b.CellAt(row, col)
			if !ok {
				t.Fatalf("CellAt(%d, %d) out of range after resize", row, col)
			}
			if !c.Dirty {
				t.Fatalf("cell (%d, %d) not dirty after resize", row, col)
			}
			if c.Rune != ' ' || c.Attr != DefaultAttr {
				t.Fatalf("cell (%d, %d) = %q/%v, want blank/default", row, col, c.Rune, c.Attr)
			}
		}
	}
}

func TestResizeSameDimensionsIsNoop(t *testing.T) {
	b := NewBuffer(10, 10, DefaultAttr)
	_ = b.Flush(&recordingSink{})
	b.WriteCell(3, 3, 'x', DefaultAttr)

	b.Resize(10, 10)

	c, _ := b.CellAt(3, 3)
	if c.Rune != 'x' {
		t.Error("Resize with unchanged dimensions should preserve content")
	}
	if b.RowDirty(0) {
		t.Error("Resize with unchanged dimensions should not re-dirty rows")
	}
}

func TestWriteOutsideClipIsDropped(t *testing.T) {
	b := NewBuffer(10, 10, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	b.SetClip(NewRect(2, 2, 5, 5))
	b.WriteCell(0, 0, 'x', DefaultAttr) // above clip
	b.WriteCell(3, 7, 'y', DefaultAttr) // right of clip
	b.WriteCell(3, 3, 'z', DefaultAttr) // inside

	if c, _ := b.CellAt(0, 0); c.Rune == 'x' {
		t.Error("write above clip should be dropped")
	}
	if c, _ := b.CellAt(3, 7); c.Rune == 'y' {
		t.Error("write right of clip should be dropped")
	}
	if c, _ := b.CellAt(3, 3); c.Rune != 'z' {
		t.Error("write inside clip should land")
	}
}

func TestWideRuneOccupiesTwoCells(t *testing.T) {
	b := NewBuffer(2, 10, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	b.Move(0, 0)
	b.WriteRune('漢', DefaultAttr)
	b.WriteRune('a', DefaultAttr)

	lead, _ := b.CellAt(0, 0)
	if lead.Rune != '漢' || lead.Width != 2 {
		t.Errorf("lead cell = %q width %d, want 漢 width 2", lead.Rune, lead.Width)
	}
	trail, _ := b.CellAt(0, 1)
	if !trail.IsContinuation() {
		t.Error("trailing cell of a wide rune should be a continuation cell")
	}
	next, _ := b.CellAt(0, 2)
	if next.Rune != 'a' {
		t.Errorf("cursor should advance by 2 after a wide rune; cell (0,2) = %q", next.Rune)
	}

	s := &recordingSink{}
	_ = b.Flush(s)
	if string(s.runes) != "漢a" {
		t.Errorf("flush emitted %q, want %q (continuation skipped)", string(s.runes), "漢a")
	}
}

func TestWideRuneAtClipEdgeBecomesBlank(t *testing.T) {
	b := NewBuffer(1, 10, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	b.SetClip(NewRect(0, 0, 1, 4))
	b.Move(0, 3)
	b.WriteRune('漢', DefaultAttr)

	c, _ := b.CellAt(0, 3)
	if c.Rune != ' ' || c.Width != 1 {
		t.Errorf("clip-edge cell = %q width %d, want blank width 1", c.Rune, c.Width)
	}
	if next, _ := b.CellAt(0, 4); next.Dirty {
		t.Error("cell beyond the clip was touched")
	}

	s := &recordingSink{}
	_ = b.Flush(s)
	if string(s.runes) != " " {
		t.Errorf("flush emitted %q, want a single blank", string(s.runes))
	}
}

func TestWideRuneAtLastColumnBecomesBlank(t *testing.T) {
	b := NewBuffer(1, 5, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	b.Move(0, 4)
	b.WriteRune('漢', DefaultAttr)

	c, _ := b.CellAt(0, 4)
	if c.Rune != ' ' || c.Width != 1 {
		t.Errorf("last-column cell = %q width %d, want blank width 1", c.Rune, c.Width)
	}
}

func TestFlushAbortRetainsDirtyForRetry(t *testing.T) {
	b := NewBuffer(3, 10, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	b.WriteCell(0, 1, 'a', DefaultAttr)
	b.WriteCell(2, 1, 'b', DefaultAttr)

	failing := &recordingSink{failMoves: 1}
	if err := b.Flush(failing); err == nil {
		t.Fatal("flush should propagate the sink fault")
	}
	if !b.Dirty() {
		t.Fatal("aborted flush must leave unemitted cells dirty")
	}

	retry := &recordingSink{}
	if err := b.Flush(retry); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if string(retry.runes) != "ab" {
		t.Errorf("retry emitted %q, want %q", string(retry.runes), "ab")
	}
	if b.Dirty() {
		t.Error("buffer still dirty after successful retry")
	}
}

func TestWriteStringRespectsClipEdge(t *testing.T) {
	b := NewBuffer(1, 5, DefaultAttr)
	_ = b.Flush(&recordingSink{})

	b.Move(0, 3)
	b.WriteString("hello", DefaultAttr)

	s := &recordingSink{}
	_ = b.Flush(s)
	if string(s.runes) != "he" {
		t.Errorf("flush emitted %q, want %q (rest dropped at clip edge)", string(s.runes), "he")
	}
}
