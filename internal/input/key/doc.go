// Package key defines the platform-independent key model and the
// translation from raw platform key reports to it.
//
// A Key is a single comparable code: printable characters use their
// rune value, Ctrl+letter combinations land in the control-code range
// offset from KeyCtrlA, Alt- and Ctrl-tagged characters carry a mask
// bit, and named keys (arrows, function keys, editing keys) occupy a
// range above the Unicode space. Modifier state travels separately on
// the Event so callers can distinguish, say, Shift+F5 from F5 while the
// key identity stays F5.
package key
