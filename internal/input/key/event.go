package key

// Event is one translated keypress: the unified key code plus the
// modifier flags observed with it. Immutable; consumed by exactly one
// handler per physical keypress.
type Event struct {
	Key       Key
	Modifiers Modifier
}

// Rune returns the printable character for character keys, or 0.
func (e Event) Rune() rune { return e.Key.Char() }

// IsChar reports whether the event carries a plain printable character.
func (e Event) IsChar() bool { return e.Key.IsChar() }

// Equals reports whether two events represent the same keypress.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key && e.Modifiers == other.Modifiers
}

// String returns a readable form like "Shift+F5" or "q".
func (e Event) String() string {
	mods := e.Modifiers
	// Masked and control-code keys already name their Ctrl/Alt part.
	if e.Key.IsControlCode() || e.Key&CtrlMask != 0 {
		mods = mods.Without(ModCtrl)
	}
	if e.Key&AltMask != 0 {
		mods = mods.Without(ModAlt)
	}
	if e.IsChar() {
		mods = mods.Without(ModShift)
	}
	if mods == ModNone {
		return e.Key.String()
	}
	return mods.String() + "+" + e.Key.String()
}
