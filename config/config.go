// Package config handles intcode.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"

	"github.com/chazu/intcode/pkg/intcode"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "intcode.toml"

// Config represents an intcode.toml configuration.
type Config struct {
	VM      VM      `toml:"vm" json:"vm"`
	Log     Log     `toml:"log" json:"log"`
	Network Network `toml:"network" json:"network"`
	Store   Store   `toml:"store" json:"store"`

	// Dir is the directory containing the intcode.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// VM configures new machines.
type VM struct {
	Memory    string `toml:"memory" json:"memory"`
	StepLimit int64  `toml:"step-limit" json:"step-limit"`
	Trace     bool   `toml:"trace" json:"trace"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"`
	File      string `toml:"file" json:"file"`
}

// Network configures parallel runs.
type Network struct {
	Parallelism int `toml:"parallelism" json:"parallelism"`
}

// Store configures the checkpoint database.
type Store struct {
	Path string `toml:"path" json:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.VM.Memory == "" {
		c.VM.Memory = intcode.MemorySparse.String()
	}
	if c.Network.Parallelism == 0 {
		c.Network.Parallelism = 4
	}
	if c.Store.Path == "" {
		c.Store.Path = "checkpoints.db"
	}
}

// Load parses an intcode.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// Parse decodes and validates configuration text. Missing keys take their
// default values.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}

	c.applyDefaults()

	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file, then
// loads and returns it. Returns Default() if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// VMOptions returns the machine options implied by the [vm] section.
func (c *Config) VMOptions() ([]intcode.Option, error) {
	kind, err := intcode.ParseMemoryKind(c.VM.Memory)
	if err != nil {
		return nil, err
	}

	opts := []intcode.Option{
		intcode.WithMemory(kind),
		intcode.WithTrace(c.VM.Trace),
	}
	if c.VM.StepLimit > 0 {
		opts = append(opts, intcode.WithStepLimit(uint64(c.VM.StepLimit)))
	}
	return opts, nil
}

// StorePath returns the checkpoint database path. Relative paths are
// resolved against the configuration directory.
func (c *Config) StorePath() string {
	if c.Store.Path == ":memory:" || filepath.IsAbs(c.Store.Path) || c.Dir == "" {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}

// ConfigureLogging applies the [log] section to commonlog.
func (c *Config) ConfigureLogging() {
	var path *string
	if c.Log.File != "" {
		file := c.Log.File
		if !filepath.IsAbs(file) && c.Dir != "" {
			file = filepath.Join(c.Dir, file)
		}
		path = &file
	}
	commonlog.Configure(c.Log.Verbosity, path)
}
