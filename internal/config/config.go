// Package config loads engine configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/markobalaban/GuiCS/internal/screen"
)

// Config is the engine configuration.
type Config struct {
	Terminal TerminalConfig `toml:"terminal"`
	Colors   ColorsConfig   `toml:"colors"`
	Log      LogConfig      `toml:"log"`
}

// TerminalConfig selects and tunes the console driver.
type TerminalConfig struct {
	// Driver is "ansi" or "tcell".
	Driver string `toml:"driver"`

	// Mouse enables mouse reporting.
	Mouse bool `toml:"mouse"`

	// EscapeTimeoutMS is how long the ANSI driver waits before treating
	// a lone ESC byte as an Escape keypress.
	EscapeTimeoutMS int `toml:"escape_timeout_ms"`

	// ResizePollMS bounds the ANSI driver's dimension re-check interval.
	ResizePollMS int `toml:"resize_poll_ms"`
}

// ColorsConfig sets the default attribute and palette overrides.
type ColorsConfig struct {
	// Foreground and Background name the default colors ("white",
	// "brightblue", ...).
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`

	// Palette maps color names to the "#rrggbb" value the terminal
	// renders them as, refining quantization for themed terminals.
	Palette map[string]string `toml:"palette"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `toml:"level"`

	// File is the log destination; empty disables logging.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Terminal: TerminalConfig{
			Driver:          "ansi",
			Mouse:           true,
			EscapeTimeoutMS: 50,
			ResizePollMS:    500,
		},
		Colors: ColorsConfig{
			Foreground: "white",
			Background: "black",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not
// an error; the defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values that would otherwise fail deep inside
// the engine.
func (c *Config) Validate() error {
	switch c.Terminal.Driver {
	case "ansi", "tcell":
	default:
		return fmt.Errorf("unknown driver %q", c.Terminal.Driver)
	}
	if c.Terminal.EscapeTimeoutMS < 0 {
		return fmt.Errorf("escape_timeout_ms must not be negative")
	}
	if c.Terminal.ResizePollMS < 0 {
		return fmt.Errorf("resize_poll_ms must not be negative")
	}
	if _, ok := screen.ColorFromName(c.Colors.Foreground); !ok {
		return fmt.Errorf("unknown foreground color %q", c.Colors.Foreground)
	}
	if _, ok := screen.ColorFromName(c.Colors.Background); !ok {
		return fmt.Errorf("unknown background color %q", c.Colors.Background)
	}
	for name := range c.Colors.Palette {
		if _, ok := screen.ColorFromName(name); !ok {
			return fmt.Errorf("unknown palette color %q", name)
		}
	}
	return nil
}

// DefaultAttr returns the configured default attribute.
func (c *Config) DefaultAttr() screen.Attribute {
	fg, _ := screen.ColorFromName(c.Colors.Foreground)
	bg, _ := screen.ColorFromName(c.Colors.Background)
	return screen.MakeAttr(fg, bg)
}

// EscapeTimeout returns the escape disambiguation window.
func (c *Config) EscapeTimeout() time.Duration {
	return time.Duration(c.Terminal.EscapeTimeoutMS) * time.Millisecond
}

// ResizePoll returns the resize re-check interval.
func (c *Config) ResizePoll() time.Duration {
	return time.Duration(c.Terminal.ResizePollMS) * time.Millisecond
}
