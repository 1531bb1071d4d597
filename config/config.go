// Package config handles flint.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/flint/translate"
)

var f = translate.From

const (
	FILENAME = "flint.toml" // Name of the configuration file.

	COLOR_AUTO   = "auto"
	COLOR_ALWAYS = "always"
	COLOR_NEVER  = "never"

	MEMORY_LIMIT = 1 << 20 // Default memory slots.
)

var (
	ErrColor = errors.New(f("color must be auto, always, or never"))
	ErrLimit = errors.New(f("limits must not be negative"))
)

// Config represents a flint.toml configuration.
type Config struct {
	Vm        Vm        `toml:"vm"`
	Assembler Assembler `toml:"assembler"`
	Output    Output    `toml:"output"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
	// Unknown lists the keys of the file that were not recognized.
	Unknown []string `toml:"-"`
}

// Vm configures machine limits. Zero means unlimited.
type Vm struct {
	MaxSteps    int  `toml:"max_steps"`
	MemoryLimit int  `toml:"memory_limit"`
	StackLimit  int  `toml:"stack_limit"`
	Verbose     bool `toml:"verbose"`
}

// Assembler configures assembly output.
type Assembler struct {
	Header  bool              `toml:"header"`
	Symbols bool              `toml:"symbols"`
	Defines map[string]string `toml:"defines"`
}

// Output configures PRINT and listing output.
type Output struct {
	Typed bool   `toml:"typed"`
	Color string `toml:"color"`
}

// Default returns the configuration used when no flint.toml is found.
func Default() *Config {
	return &Config{
		Vm:     Vm{MemoryLimit: MEMORY_LIMIT},
		Output: Output{Color: COLOR_AUTO},
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case COLOR_AUTO, COLOR_ALWAYS, COLOR_NEVER:
	default:
		return fmt.Errorf("%w: %q", ErrColor, c.Output.Color)
	}

	if c.Vm.MaxSteps < 0 || c.Vm.MemoryLimit < 0 || c.Vm.StackLimit < 0 {
		return ErrLimit
	}

	return nil
}

// Load parses a configuration file. Keys it does not set keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	for _, key := range md.Undecoded() {
		c.Unknown = append(c.Unknown, key.String())
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Path = path

	return c, nil
}

// FindAndLoad walks up from startDir to find a flint.toml file, then loads
// and returns it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FILENAME)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}
