package screen

// Sink receives flushed screen content. A platform driver supplies one
// per terminal family.
//
// MoveCursor may fail transiently while the terminal is mid-resize; the
// flush aborts and retries the unemitted cells on its next call. The
// remaining operations are fire-and-forget into the driver's output
// buffer; Reset transmits whatever is buffered and returns the terminal
// to its default color state.
type Sink interface {
	MoveCursor(row, col int) error
	SetActiveColor(attr Attribute)
	WriteCharacter(r rune)
	Reset()
}
