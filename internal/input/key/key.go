package key

import "fmt"

// Key is the unified key code. Printable characters are their rune
// value; everything else lives in ranges that cannot collide with a
// Unicode scalar.
type Key uint32

// Control-code range. Ctrl+letter translates to an offset from
// KeyCtrlA, mirroring the terminal's own 0x01-0x1A encoding.
const (
	KeyNone Key = iota
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH
	KeyCtrlI
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ
)

// Keys that coincide with their ASCII control or character codes.
const (
	KeyTab       Key = 9
	KeyEnter     Key = 13
	KeyEsc       Key = 27
	KeySpace     Key = 32
	KeyBackspace Key = 127
)

// Mask bits tagging Ctrl/Alt-modified characters that have no dedicated
// control code (digits, punctuation). Placed above the Unicode range.
const (
	CtrlMask Key = 1 << 24
	AltMask  Key = 1 << 25
)

// Named keys, above the Unicode range and below the mask bits.
const (
	keyNamedBase Key = 0x200000

	KeyCursorUp Key = keyNamedBase + iota
	KeyCursorDown
	KeyCursorLeft
	KeyCursorRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyBackTab

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Char returns the key code for a printable character; the character
// value passes through unchanged.
func Char(r rune) Key { return Key(r) }

// ControlCode returns the key for control code n, where 1 is Ctrl-A.
func ControlCode(n int) Key { return Key(n) }

// IsChar reports whether k is a plain printable character key.
func (k Key) IsChar() bool {
	return k&(CtrlMask|AltMask) == 0 && k >= KeySpace && k < keyNamedBase
}

// Char returns the character for a plain or Ctrl/Alt-tagged character
// key, or 0 for named keys and control codes.
func (k Key) Char() rune {
	base := k &^ (CtrlMask | AltMask)
	if base >= KeySpace && base < keyNamedBase {
		return rune(base)
	}
	return 0
}

// IsControlCode reports whether k lies in the Ctrl-A..Ctrl-Z range.
func (k Key) IsControlCode() bool {
	return k >= KeyCtrlA && k <= KeyCtrlZ
}

// IsFunctionKey reports whether k is one of F1-F12.
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

var namedKeyNames = map[Key]string{
	KeyNone:        "None",
	KeyTab:         "Tab",
	KeyEnter:       "Enter",
	KeyEsc:         "Esc",
	KeySpace:       "Space",
	KeyBackspace:   "Backspace",
	KeyCursorUp:    "CursorUp",
	KeyCursorDown:  "CursorDown",
	KeyCursorLeft:  "CursorLeft",
	KeyCursorRight: "CursorRight",
	KeyHome:        "Home",
	KeyEnd:         "End",
	KeyPageUp:      "PageUp",
	KeyPageDown:    "PageDown",
	KeyInsert:      "Insert",
	KeyDelete:      "Delete",
	KeyBackTab:     "BackTab",
}

// String returns a readable name for the key.
func (k Key) String() string {
	if name, ok := namedKeyNames[k]; ok {
		return name
	}
	if k.IsFunctionKey() {
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	if k.IsControlCode() {
		return fmt.Sprintf("Ctrl+%c", 'A'+rune(k-KeyCtrlA))
	}
	if k&CtrlMask != 0 {
		return fmt.Sprintf("Ctrl+%c", k.Char())
	}
	if k&AltMask != 0 {
		return fmt.Sprintf("Alt+%c", k.Char())
	}
	if k.IsChar() {
		return string(k.Char())
	}
	return fmt.Sprintf("Key(%#x)", uint32(k))
}
