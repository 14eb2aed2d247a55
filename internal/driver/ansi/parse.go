package ansi

import (
	"unicode/utf8"

	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/input/key"
)

type inputKind uint8

const (
	inputKey inputKind = iota
	inputMouse
	inputResize
)

// inputEvent is one decoded terminal report queued for the UI thread.
type inputEvent struct {
	kind  inputKind
	key   key.Raw
	mouse driver.MouseEvent
}

func keyEvent(raw key.Raw) inputEvent {
	return inputEvent{kind: inputKey, key: raw}
}

// tildeKeys maps the first parameter of a CSI ...~ sequence to a raw
// code (vt220 style).
var tildeKeys = map[int]key.RawCode{
	1:  key.RawHome,
	2:  key.RawInsert,
	3:  key.RawDelete,
	4:  key.RawEnd,
	5:  key.RawPageUp,
	6:  key.RawPageDown,
	7:  key.RawHome,
	8:  key.RawEnd,
	11: key.RawF1,
	12: key.RawF2,
	13: key.RawF3,
	14: key.RawF4,
	15: key.RawF5,
	17: key.RawF6,
	18: key.RawF7,
	19: key.RawF8,
	20: key.RawF9,
	21: key.RawF10,
	23: key.RawF11,
	24: key.RawF12,
}

// letterKeys maps CSI final letters to raw codes (xterm style).
var letterKeys = map[byte]key.RawCode{
	'A': key.RawUp,
	'B': key.RawDown,
	'C': key.RawRight,
	'D': key.RawLeft,
	'H': key.RawHome,
	'F': key.RawEnd,
	'P': key.RawF1,
	'Q': key.RawF2,
	'R': key.RawF3,
	'S': key.RawF4,
}

// ss3Keys maps SS3 (ESC O x) finals to raw codes.
var ss3Keys = map[byte]key.RawCode{
	'A': key.RawUp,
	'B': key.RawDown,
	'C': key.RawRight,
	'D': key.RawLeft,
	'H': key.RawHome,
	'F': key.RawEnd,
	'P': key.RawF1,
	'Q': key.RawF2,
	'R': key.RawF3,
	'S': key.RawF4,
}

// xtermMods decodes the xterm modifier parameter (1 + bitmask).
func xtermMods(param int) key.Modifier {
	if param < 2 {
		return key.ModNone
	}
	bits := param - 1
	var m key.Modifier
	if bits&1 != 0 {
		m = m.With(key.ModShift)
	}
	if bits&2 != 0 {
		m = m.With(key.ModAlt)
	}
	if bits&4 != 0 {
		m = m.With(key.ModCtrl)
	}
	return m
}

// parseBytes decodes as many complete reports as data holds and returns
// how many bytes were consumed. It stops at an incomplete escape or
// UTF-8 sequence so the caller can wait for the rest.
func parseBytes(data []byte) ([]inputEvent, int) {
	var events []inputEvent
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		// Fast path: printable ASCII.
		if b >= 0x20 && b < 0x7f {
			events = append(events, keyEvent(key.Raw{Code: key.RawChar, Rune: rune(b)}))
			i++
			continue
		}

		if b == 0x1b {
			if i+1 >= n {
				break // lone ESC so far; caller decides on timeout
			}
			consumed, ev, emit := parseEscape(data[i:])
			if consumed == 0 {
				break
			}
			if emit {
				events = append(events, ev)
			}
			i += consumed
			continue
		}

		if b < 0x20 || b == 0x7f {
			events = append(events, keyEvent(controlRaw(b)))
			i++
			continue
		}

		// UTF-8 multibyte.
		if !utf8.FullRune(data[i:]) {
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		if r != utf8.RuneError || size > 1 {
			events = append(events, keyEvent(key.Raw{Code: key.RawChar, Rune: r}))
		}
		i += size
	}
	return events, i
}

// controlRaw maps a lone control byte to a raw report. Bytes without a
// dedicated code pass through in-band; the translator recognizes them
// as Ctrl signals.
func controlRaw(b byte) key.Raw {
	switch b {
	case 0x00:
		return key.Raw{Code: key.RawSpace, Mods: key.ModCtrl}
	case 0x08, 0x7f:
		return key.Raw{Code: key.RawBackspace}
	case 0x09:
		return key.Raw{Code: key.RawTab}
	case 0x0a, 0x0d:
		return key.Raw{Code: key.RawEnter}
	case 0x1b:
		return key.Raw{Code: key.RawEscape}
	default:
		return key.Raw{Code: key.RawChar, Rune: rune(b)}
	}
}

// parseEscape decodes one ESC-prefixed sequence. consumed is 0 when the
// sequence is incomplete; emit is false for well-formed sequences we do
// not recognize (consumed but swallowed).
func parseEscape(data []byte) (consumed int, ev inputEvent, emit bool) {
	if len(data) < 2 {
		return 0, inputEvent{}, false
	}

	switch {
	case data[1] == 0x1b:
		return 2, keyEvent(key.Raw{Code: key.RawEscape, Mods: key.ModAlt}), true
	case data[1] == '[':
		return parseCSI(data)
	case data[1] == 'O':
		return parseSS3(data)
	case data[1] < 0x20 || data[1] == 0x7f:
		raw := controlRaw(data[1])
		raw.Mods = raw.Mods.With(key.ModAlt)
		return 2, keyEvent(raw), true
	case data[1] < 0x7f:
		return 2, keyEvent(key.Raw{Code: key.RawChar, Rune: rune(data[1]), Mods: key.ModAlt}), true
	}
	return 2, inputEvent{}, false
}

func parseCSI(data []byte) (int, inputEvent, bool) {
	if len(data) < 3 {
		return 0, inputEvent{}, false
	}

	// SGR mouse: ESC [ < btn ; col ; row M/m
	if data[2] == '<' {
		return parseSGRMouse(data)
	}

	// Scan to the final byte. Parameters are digits and semicolons.
	end := 2
	params := [3]int{}
	nparams := 0
	val, haveVal := 0, false
	for end < len(data) && end < 18 {
		b := data[end]
		switch {
		case b >= '0' && b <= '9':
			val = val*10 + int(b-'0')
			haveVal = true
			end++
		case b == ';':
			if nparams < len(params) {
				params[nparams] = val
				nparams++
			}
			val, haveVal = 0, false
			end++
		case b == '~' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z'):
			if haveVal && nparams < len(params) {
				params[nparams] = val
				nparams++
			}
			end++
			return csiEvent(b, params[:nparams], end)
		default:
			// Malformed; swallow the introducer and resync.
			return end, inputEvent{}, false
		}
	}
	if end >= 18 {
		return end, inputEvent{}, false
	}
	return 0, inputEvent{}, false // incomplete
}

func csiEvent(final byte, params []int, consumed int) (int, inputEvent, bool) {
	mods := key.ModNone
	if len(params) >= 2 {
		mods = xtermMods(params[1])
	}

	if final == '~' {
		if len(params) == 0 {
			return consumed, inputEvent{}, false
		}
		code, ok := tildeKeys[params[0]]
		if !ok {
			return consumed, inputEvent{}, false
		}
		return consumed, keyEvent(key.Raw{Code: code, Mods: mods}), true
	}

	if final == 'Z' {
		return consumed, keyEvent(key.Raw{Code: key.RawTab, Mods: key.ModShift}), true
	}

	code, ok := letterKeys[final]
	if !ok {
		return consumed, inputEvent{}, false
	}
	return consumed, keyEvent(key.Raw{Code: code, Mods: mods}), true
}

func parseSS3(data []byte) (int, inputEvent, bool) {
	if len(data) < 3 {
		return 0, inputEvent{}, false
	}
	code, ok := ss3Keys[data[2]]
	if !ok {
		return 3, inputEvent{}, false
	}
	return 3, keyEvent(key.Raw{Code: code}), true
}

// parseSGRMouse decodes ESC [ < btn ; col ; row (M|m).
func parseSGRMouse(data []byte) (int, inputEvent, bool) {
	end := 3
	for end < len(data) && end < 32 {
		if data[end] == 'M' || data[end] == 'm' {
			break
		}
		end++
	}
	if end >= len(data) || end >= 32 {
		if end >= 32 {
			return end, inputEvent{}, false
		}
		return 0, inputEvent{}, false
	}

	btn, col, row, ok := sgrParams(data[3:end])
	if !ok {
		return end + 1, inputEvent{}, false
	}

	ev := driver.MouseEvent{Row: row - 1, Col: col - 1}

	isMotion := btn&32 != 0
	isWheel := btn&64 != 0
	buttonID := btn & 0x03

	switch {
	case isWheel:
		if buttonID == 0 {
			ev.Button = driver.MouseWheelUp
		} else {
			ev.Button = driver.MouseWheelDown
		}
		ev.Action = driver.MousePress
	default:
		switch buttonID {
		case 0:
			ev.Button = driver.MouseLeft
		case 1:
			ev.Button = driver.MouseMiddle
		case 2:
			ev.Button = driver.MouseRight
		case 3:
			ev.Button = driver.MouseNone
		}
		switch {
		case data[end] == 'm':
			ev.Action = driver.MouseRelease
		case isMotion:
			ev.Action = driver.MouseMotion
		default:
			ev.Action = driver.MousePress
		}
	}

	if btn&4 != 0 {
		ev.Mods = ev.Mods.With(key.ModShift)
	}
	if btn&8 != 0 {
		ev.Mods = ev.Mods.With(key.ModAlt)
	}
	if btn&16 != 0 {
		ev.Mods = ev.Mods.With(key.ModCtrl)
	}

	return end + 1, inputEvent{kind: inputMouse, mouse: ev}, true
}

// sgrParams extracts btn, col, row from "btn;col;row".
func sgrParams(data []byte) (btn, col, row int, ok bool) {
	state := 0
	val := 0
	for _, b := range data {
		switch {
		case b == ';':
			switch state {
			case 0:
				btn = val
			case 1:
				col = val
			default:
				return 0, 0, 0, false
			}
			state++
			val = 0
		case b >= '0' && b <= '9':
			val = val*10 + int(b-'0')
			if val > 9999 {
				return 0, 0, 0, false
			}
		default:
			return 0, 0, 0, false
		}
	}
	if state != 2 {
		return 0, 0, 0, false
	}
	row = val
	return btn, col, row, true
}
