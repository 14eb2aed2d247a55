package key

// RawCode identifies the platform key a raw report refers to. Drivers
// normalize their native codes (escape sequences, virtual-key codes)
// into these before handing reports to Translate.
type RawCode uint16

const (
	// RawNone marks a report carrying only modifier state; such reports
	// are accumulated by the driver, never dispatched.
	RawNone RawCode = iota

	// RawChar carries a character (or an in-band control byte) in Rune.
	RawChar

	// RawOEM carries platform punctuation whose character value passes
	// through untranslated.
	RawOEM

	RawEscape
	RawEnter
	RawSpace
	RawTab
	RawBackspace
	RawDelete
	RawInsert
	RawHome
	RawEnd
	RawPageUp
	RawPageDown
	RawUp
	RawDown
	RawLeft
	RawRight

	RawF1
	RawF2
	RawF3
	RawF4
	RawF5
	RawF6
	RawF7
	RawF8
	RawF9
	RawF10
	RawF11
	RawF12
)

// Raw is one raw platform key report. It is the only key shape that
// crosses the background-thread boundary.
type Raw struct {
	Code RawCode
	Rune rune
	Mods Modifier
}
