package screen

// Rect is a rectangular region of the grid. Top/Left are inclusive,
// Bottom/Right exclusive.
type Rect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// NewRect creates a rectangle from its edges.
func NewRect(top, left, bottom, right int) Rect {
	return Rect{Top: top, Left: left, Bottom: bottom, Right: right}
}

// Width returns the column span, never negative.
func (r Rect) Width() int {
	if r.Right <= r.Left {
		return 0
	}
	return r.Right - r.Left
}

// Height returns the row span, never negative.
func (r Rect) Height() int {
	if r.Bottom <= r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether (row, col) lies inside the rectangle.
func (r Rect) Contains(row, col int) bool {
	return row >= r.Top && row < r.Bottom && col >= r.Left && col < r.Right
}

// Intersection returns the overlapping region of two rectangles, or the
// zero Rect when they do not overlap.
func (r Rect) Intersection(other Rect) Rect {
	out := Rect{
		Top:    max(r.Top, other.Top),
		Left:   max(r.Left, other.Left),
		Bottom: min(r.Bottom, other.Bottom),
		Right:  min(r.Right, other.Right),
	}
	if out.IsEmpty() {
		return Rect{}
	}
	return out
}

// Equals reports whether two rectangles have identical edges.
func (r Rect) Equals(other Rect) bool {
	return r == other
}
