package tcellscr

import (
	"github.com/gdamore/tcell/v2"

	"github.com/markobalaban/GuiCS/internal/input/key"
)

var namedTcellKeys = map[tcell.Key]key.RawCode{
	tcell.KeyEscape:     key.RawEscape,
	tcell.KeyEnter:      key.RawEnter,
	tcell.KeyTab:        key.RawTab,
	tcell.KeyBacktab:    key.RawTab, // Shift rides on the modifiers
	tcell.KeyBackspace:  key.RawBackspace,
	tcell.KeyBackspace2: key.RawBackspace,
	tcell.KeyDelete:     key.RawDelete,
	tcell.KeyInsert:     key.RawInsert,
	tcell.KeyHome:       key.RawHome,
	tcell.KeyEnd:        key.RawEnd,
	tcell.KeyPgUp:       key.RawPageUp,
	tcell.KeyPgDn:       key.RawPageDown,
	tcell.KeyUp:         key.RawUp,
	tcell.KeyDown:       key.RawDown,
	tcell.KeyLeft:       key.RawLeft,
	tcell.KeyRight:      key.RawRight,
}

// convertKey normalizes a tcell key event into a raw report.
func convertKey(e *tcell.EventKey) key.Raw {
	mods := convertMods(e.Modifiers())
	k := e.Key()

	if k == tcell.KeyBacktab {
		mods = mods.With(key.ModShift)
	}
	if code, ok := namedTcellKeys[k]; ok {
		return key.Raw{Code: code, Mods: mods}
	}
	if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
		return key.Raw{Code: key.RawF1 + key.RawCode(k-tcell.KeyF1), Mods: mods}
	}
	if k == tcell.KeyRune {
		return key.Raw{Code: key.RawChar, Rune: e.Rune(), Mods: mods}
	}

	// Ctrl-modified keys arrive as dedicated key codes in the 64..95
	// block, not as C0 runes.
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return key.Raw{
			Code: key.RawChar,
			Rune: rune(k-tcell.KeyCtrlA) + 'a',
			Mods: mods.With(key.ModCtrl),
		}
	}
	if k == tcell.KeyCtrlSpace {
		return key.Raw{Code: key.RawSpace, Mods: mods.With(key.ModCtrl)}
	}
	if k > tcell.KeyCtrlZ && k <= tcell.KeyCtrlUnderscore {
		return key.Raw{
			Code: key.RawChar,
			Rune: rune(k - tcell.KeyCtrlSpace),
			Mods: mods.With(key.ModCtrl),
		}
	}

	// Raw C0 control codes pass through in-band.
	if k > 0 && k < 0x20 {
		return key.Raw{Code: key.RawChar, Rune: rune(k), Mods: mods}
	}

	return key.Raw{Code: key.RawNone, Mods: mods}
}

func convertMods(m tcell.ModMask) key.Modifier {
	var out key.Modifier
	if m&tcell.ModShift != 0 {
		out = out.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		out = out.With(key.ModCtrl)
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		out = out.With(key.ModAlt)
	}
	return out
}
