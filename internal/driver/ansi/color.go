package ansi

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/markobalaban/GuiCS/internal/screen"
)

// defaultPaletteHex holds the RGB value assumed for each of the 16
// terminal colors (xterm defaults). Quantization measures against
// these; configs may override individual slots to match a theme.
var defaultPaletteHex = [screen.NumColors]string{
	screen.ColorBlack:         "#000000",
	screen.ColorRed:           "#cd0000",
	screen.ColorGreen:         "#00cd00",
	screen.ColorYellow:        "#cdcd00",
	screen.ColorBlue:          "#0000ee",
	screen.ColorMagenta:       "#cd00cd",
	screen.ColorCyan:          "#00cdcd",
	screen.ColorWhite:         "#e5e5e5",
	screen.ColorBrightBlack:   "#7f7f7f",
	screen.ColorBrightRed:     "#ff0000",
	screen.ColorBrightGreen:   "#00ff00",
	screen.ColorBrightYellow:  "#ffff00",
	screen.ColorBrightBlue:    "#5c5cff",
	screen.ColorBrightMagenta: "#ff00ff",
	screen.ColorBrightCyan:    "#00ffff",
	screen.ColorBrightWhite:   "#ffffff",
}

// Palette maps the 16 terminal colors to the RGB values the terminal
// is believed to render them as.
type Palette struct {
	slots [screen.NumColors]colorful.Color
}

// DefaultPalette returns the xterm default palette.
func DefaultPalette() *Palette {
	p := &Palette{}
	for i, hex := range defaultPaletteHex {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic(fmt.Sprintf("bad builtin palette entry %d: %v", i, err))
		}
		p.slots[i] = c
	}
	return p
}

// Override replaces one slot with the color parsed from hex ("#rrggbb").
func (p *Palette) Override(c screen.Color, hex string) error {
	if int(c) >= screen.NumColors {
		return fmt.Errorf("palette slot %d out of range", c)
	}
	parsed, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("palette slot %s: %w", c, err)
	}
	p.slots[c] = parsed
	return nil
}

// Nearest returns the terminal color perceptually closest to the given
// RGB value, measured in CIE-Lab space.
func (p *Palette) Nearest(c colorful.Color) screen.Color {
	best := screen.ColorBlack
	bestDist := c.DistanceLab(p.slots[0])
	for i := 1; i < screen.NumColors; i++ {
		d := c.DistanceLab(p.slots[i])
		if d < bestDist {
			bestDist = d
			best = screen.Color(i)
		}
	}
	return best
}

// NearestHex parses hex ("#rrggbb") and quantizes it to the palette.
func (p *Palette) NearestHex(hex string) (screen.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return screen.ColorBlack, fmt.Errorf("parsing color %q: %w", hex, err)
	}
	return p.Nearest(c), nil
}
