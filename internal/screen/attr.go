// Package screen implements the off-screen cell grid and the diffed
// flush that transmits only changed content to the terminal.
package screen

import "fmt"

// Color identifies one of the terminal's sixteen base palette colors.
// Encoding an out-of-range value into an Attribute is a caller error;
// callers validate against this enumerated set before packing.
type Color uint8

const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightBlack
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite

	// NumColors is the size of the enumerated palette.
	NumColors = 16
)

// colorNames is indexed by Color.
var colorNames = [NumColors]string{
	"black", "red", "green", "yellow",
	"blue", "magenta", "cyan", "white",
	"brightblack", "brightred", "brightgreen", "brightyellow",
	"brightblue", "brightmagenta", "brightcyan", "brightwhite",
}

// String returns the lowercase palette name.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// IsBright reports whether the color is in the high-intensity half of
// the palette.
func (c Color) IsBright() bool {
	return c >= ColorBrightBlack && c < NumColors
}

// ColorFromName returns the Color for a palette name and whether the
// name was recognized.
func ColorFromName(name string) (Color, bool) {
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	return ColorBlack, false
}

// Attribute packs a foreground/background color pair into a single
// comparable value. The foreground occupies bits 0-7 and the background
// bits 8-15, so equality is plain integer equality and the flush path
// can detect color changes with one comparison. Immutable once made.
type Attribute uint16

// MakeAttr packs a color pair. It is total over the enumerated palette;
// it performs no validation.
func MakeAttr(fg, bg Color) Attribute {
	return Attribute(fg) | Attribute(bg)<<8
}

// DefaultAttr is the attribute used for blank cells after a resize.
var DefaultAttr = MakeAttr(ColorWhite, ColorBlack)

// Decompose returns the exact color pair MakeAttr packed.
func (a Attribute) Decompose() (fg, bg Color) {
	return Color(a & 0xff), Color(a >> 8)
}

// Foreground returns the packed foreground color.
func (a Attribute) Foreground() Color { return Color(a & 0xff) }

// Background returns the packed background color.
func (a Attribute) Background() Color { return Color(a >> 8) }

func (a Attribute) String() string {
	fg, bg := a.Decompose()
	return fg.String() + " on " + bg.String()
}
