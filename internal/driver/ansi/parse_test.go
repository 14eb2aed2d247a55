package ansi

import (
	"testing"

	"github.com/markobalaban/GuiCS/internal/driver"
	"github.com/markobalaban/GuiCS/internal/input/key"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  key.Raw
	}{
		{"printable", "a", key.Raw{Code: key.RawChar, Rune: 'a'}},
		{"utf8", "é", key.Raw{Code: key.RawChar, Rune: 'é'}},
		{"control byte", "\x01", key.Raw{Code: key.RawChar, Rune: 0x01}},
		{"nul is ctrl space", "\x00", key.Raw{Code: key.RawSpace, Mods: key.ModCtrl}},
		{"tab", "\t", key.Raw{Code: key.RawTab}},
		{"enter cr", "\r", key.Raw{Code: key.RawEnter}},
		{"enter lf", "\n", key.Raw{Code: key.RawEnter}},
		{"del is backspace", "\x7f", key.Raw{Code: key.RawBackspace}},
		{"cursor up", "\x1b[A", key.Raw{Code: key.RawUp}},
		{"cursor left", "\x1b[D", key.Raw{Code: key.RawLeft}},
		{"shift up", "\x1b[1;2A", key.Raw{Code: key.RawUp, Mods: key.ModShift}},
		{"ctrl right", "\x1b[1;5C", key.Raw{Code: key.RawRight, Mods: key.ModCtrl}},
		{"alt down", "\x1b[1;3B", key.Raw{Code: key.RawDown, Mods: key.ModAlt}},
		{"home", "\x1b[H", key.Raw{Code: key.RawHome}},
		{"end tilde", "\x1b[4~", key.Raw{Code: key.RawEnd}},
		{"page down", "\x1b[6~", key.Raw{Code: key.RawPageDown}},
		{"delete", "\x1b[3~", key.Raw{Code: key.RawDelete}},
		{"shift delete", "\x1b[3;2~", key.Raw{Code: key.RawDelete, Mods: key.ModShift}},
		{"backtab", "\x1b[Z", key.Raw{Code: key.RawTab, Mods: key.ModShift}},
		{"f1 ss3", "\x1bOP", key.Raw{Code: key.RawF1}},
		{"f5", "\x1b[15~", key.Raw{Code: key.RawF5}},
		{"shift f5", "\x1b[15;2~", key.Raw{Code: key.RawF5, Mods: key.ModShift}},
		{"ctrl f9", "\x1b[20;5~", key.Raw{Code: key.RawF9, Mods: key.ModCtrl}},
		{"f12", "\x1b[24~", key.Raw{Code: key.RawF12}},
		{"alt letter", "\x1bx", key.Raw{Code: key.RawChar, Rune: 'x', Mods: key.ModAlt}},
		{"alt escape", "\x1b\x1b", key.Raw{Code: key.RawEscape, Mods: key.ModAlt}},
		{"alt enter", "\x1b\r", key.Raw{Code: key.RawEnter, Mods: key.ModAlt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, consumed := parseBytes([]byte(tt.input))
			if consumed != len(tt.input) {
				t.Fatalf("consumed %d of %d bytes", consumed, len(tt.input))
			}
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].kind != inputKey {
				t.Fatalf("got kind %d, want key", events[0].kind)
			}
			if events[0].key != tt.want {
				t.Errorf("got %+v, want %+v", events[0].key, tt.want)
			}
		})
	}
}

func TestParseStopsAtIncompleteSequence(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"lone escape", "\x1b"},
		{"csi introducer", "\x1b["},
		{"csi params", "\x1b[1;5"},
		{"partial utf8", "\xc3"},
		{"partial mouse", "\x1b[<0;10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, consumed := parseBytes([]byte(tt.input))
			if consumed != 0 {
				t.Errorf("consumed %d bytes of incomplete input", consumed)
			}
			if len(events) != 0 {
				t.Errorf("got %d events from incomplete input", len(events))
			}
		})
	}
}

func TestParseSwallowsUnknownSequences(t *testing.T) {
	events, consumed := parseBytes([]byte("\x1b[99~a"))
	if consumed != len("\x1b[99~a") {
		t.Fatalf("consumed %d bytes", consumed)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].key.Rune != 'a' {
		t.Errorf("trailing character lost: %+v", events[0].key)
	}
}

func TestParseMultipleReports(t *testing.T) {
	events, consumed := parseBytes([]byte("ab\x1b[A"))
	if consumed != 5 {
		t.Fatalf("consumed %d bytes, want 5", consumed)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].key.Rune != 'a' || events[1].key.Rune != 'b' {
		t.Errorf("character events wrong: %+v %+v", events[0].key, events[1].key)
	}
	if events[2].key.Code != key.RawUp {
		t.Errorf("got %+v, want cursor up", events[2].key)
	}
}

func TestParseSGRMouse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  driver.MouseEvent
	}{
		{
			"left press",
			"\x1b[<0;10;5M",
			driver.MouseEvent{Row: 4, Col: 9, Button: driver.MouseLeft, Action: driver.MousePress},
		},
		{
			"left release",
			"\x1b[<0;10;5m",
			driver.MouseEvent{Row: 4, Col: 9, Button: driver.MouseLeft, Action: driver.MouseRelease},
		},
		{
			"right press",
			"\x1b[<2;1;1M",
			driver.MouseEvent{Row: 0, Col: 0, Button: driver.MouseRight, Action: driver.MousePress},
		},
		{
			"wheel up",
			"\x1b[<64;1;1M",
			driver.MouseEvent{Row: 0, Col: 0, Button: driver.MouseWheelUp, Action: driver.MousePress},
		},
		{
			"wheel down",
			"\x1b[<65;1;1M",
			driver.MouseEvent{Row: 0, Col: 0, Button: driver.MouseWheelDown, Action: driver.MousePress},
		},
		{
			"drag",
			"\x1b[<32;3;3M",
			driver.MouseEvent{Row: 2, Col: 2, Button: driver.MouseLeft, Action: driver.MouseMotion},
		},
		{
			"shift click",
			"\x1b[<4;1;1M",
			driver.MouseEvent{Row: 0, Col: 0, Button: driver.MouseLeft, Action: driver.MousePress, Mods: key.ModShift},
		},
		{
			"ctrl click",
			"\x1b[<16;1;1M",
			driver.MouseEvent{Row: 0, Col: 0, Button: driver.MouseLeft, Action: driver.MousePress, Mods: key.ModCtrl},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, consumed := parseBytes([]byte(tt.input))
			if consumed != len(tt.input) {
				t.Fatalf("consumed %d of %d bytes", consumed, len(tt.input))
			}
			if len(events) != 1 || events[0].kind != inputMouse {
				t.Fatalf("got %+v, want one mouse event", events)
			}
			if events[0].mouse != tt.want {
				t.Errorf("got %+v, want %+v", events[0].mouse, tt.want)
			}
		})
	}
}
