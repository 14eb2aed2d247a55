package key

import "unicode"

// namedRaw maps raw codes that translate to a fixed unified key
// regardless of modifiers (the modifiers still ride on the event).
var namedRaw = map[RawCode]Key{
	RawEscape:    KeyEsc,
	RawEnter:     KeyEnter,
	RawSpace:     KeySpace,
	RawBackspace: KeyBackspace,
	RawDelete:    KeyDelete,
	RawInsert:    KeyInsert,
	RawHome:      KeyHome,
	RawEnd:       KeyEnd,
	RawPageUp:    KeyPageUp,
	RawPageDown:  KeyPageDown,
	RawUp:        KeyCursorUp,
	RawDown:      KeyCursorDown,
	RawLeft:      KeyCursorLeft,
	RawRight:     KeyCursorRight,
}

// Translate maps one raw platform key report to the unified key model.
// It returns ok=false when the report is unrepresentable; the caller
// must not dispatch in that case.
//
// Policy, in priority order: named control keys (Tab splitting into
// Tab/BackTab on Shift), OEM punctuation passthrough, Ctrl/Alt letter
// and digit encoding, function keys with modifier-independent identity,
// then printable fallback.
func Translate(raw Raw) (Event, bool) {
	mods := raw.Mods

	if raw.Code == RawTab {
		if mods.HasShift() {
			return Event{Key: KeyBackTab, Modifiers: mods}, true
		}
		return Event{Key: KeyTab, Modifiers: mods}, true
	}
	if k, ok := namedRaw[raw.Code]; ok {
		return Event{Key: k, Modifiers: mods}, true
	}
	if raw.Code >= RawF1 && raw.Code <= RawF12 {
		// Shift/Alt/Ctrl never change which function key this is.
		return Event{Key: KeyF1 + Key(raw.Code-RawF1), Modifiers: mods}, true
	}

	switch raw.Code {
	case RawOEM:
		if raw.Rune == 0 {
			return Event{}, false
		}
		return Event{Key: Char(raw.Rune), Modifiers: mods}, true

	case RawChar:
		return translateChar(raw.Rune, mods)
	}

	return Event{}, false
}

func translateChar(r rune, mods Modifier) (Event, bool) {
	// An in-band control byte is an equivalent Ctrl signal on platforms
	// that report the modifier unreliably.
	if r > 0 && r < 0x20 {
		return Event{Key: Key(r), Modifiers: mods.With(ModCtrl)}, true
	}

	if isASCIILetter(r) {
		switch {
		case mods.HasCtrl():
			lower := unicode.ToLower(r)
			return Event{Key: KeyCtrlA + Key(lower-'a'), Modifiers: mods}, true
		case mods.HasAlt():
			return Event{Key: AltMask | Char(r), Modifiers: mods}, true
		default:
			return Event{Key: Char(r), Modifiers: mods}, true
		}
	}

	if r >= '0' && r <= '9' {
		switch {
		case mods.HasCtrl():
			return Event{Key: CtrlMask | Char(r), Modifiers: mods}, true
		case mods.HasAlt():
			return Event{Key: AltMask | Char(r), Modifiers: mods}, true
		default:
			return Event{Key: Char(r), Modifiers: mods}, true
		}
	}

	if unicode.IsPrint(r) {
		if mods.HasAlt() {
			return Event{Key: AltMask | Char(r), Modifiers: mods}, true
		}
		return Event{Key: Char(r), Modifiers: mods}, true
	}

	return Event{}, false
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
