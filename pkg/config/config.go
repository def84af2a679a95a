// Package config reads the INI-style settings file shared by the desktop
// shell and the pick CLI.
//
//	[Pick]
//	Epsilon = 1e-10
//
//	[Kernel]
//	MeshCells = 200
//
//	[Engine]
//	Timeout = 5s
//
//	[Window]
//	Width = 1280
//	Height = 800
//	Title = Lignin Pick
package config

import (
	"time"

	"github.com/chazu/ligninpick/pkg/intersect"
	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"
)

// Defaults used for every key the file leaves out.
const (
	DefaultEpsilon   = float64(intersect.DefaultEpsilon)
	DefaultMeshCells = 200
	DefaultTimeout   = 5 * time.Second
	DefaultWidth     = 1280
	DefaultHeight    = 800
	DefaultTitle     = "Lignin Pick"
)

type PickConfig struct {
	// Epsilon is the triangle determinant below which a segment counts as
	// parallel to the triangle and is rejected.
	Epsilon float64
}

type KernelConfig struct {
	MeshCells int
}

type EngineConfig struct {
	// Timeout is a time.ParseDuration string such as "5s" or "750ms".
	Timeout string
}

type WindowConfig struct {
	Width, Height int
	Title         string
}

// Config mirrors the sections of the settings file.
type Config struct {
	Pick   PickConfig
	Kernel KernelConfig
	Engine EngineConfig
	Window WindowConfig

	timeout time.Duration
}

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	if err := c.CheckInit(); err != nil {
		panic(err)
	}
	return c
}

// Read parses fname. An empty fname yields Default().
func Read(fname string) (*Config, error) {
	c := &Config{}
	if fname != "" {
		if err := gcfg.ReadFileInto(c, fname); err != nil {
			return nil, errors.Wrapf(err, "config: reading %s", fname)
		}
	}
	if err := c.CheckInit(); err != nil {
		return nil, errors.Wrapf(err, "config: %s", fname)
	}
	return c, nil
}

// ReadString parses an in-memory settings file.
func ReadString(src string) (*Config, error) {
	c := &Config{}
	if err := gcfg.ReadStringInto(c, src); err != nil {
		return nil, errors.Wrap(err, "config: parsing")
	}
	if err := c.CheckInit(); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckInit fills in defaults for zero values and rejects negative ones.
func (c *Config) CheckInit() error {
	switch {
	case c.Pick.Epsilon < 0:
		return errors.Errorf("Pick.Epsilon must be non-negative, but is %g", c.Pick.Epsilon)
	case c.Pick.Epsilon == 0:
		c.Pick.Epsilon = DefaultEpsilon
	}

	switch {
	case c.Kernel.MeshCells < 0:
		return errors.Errorf("Kernel.MeshCells must be non-negative, but is %d", c.Kernel.MeshCells)
	case c.Kernel.MeshCells == 0:
		c.Kernel.MeshCells = DefaultMeshCells
	}

	c.timeout = DefaultTimeout
	if c.Engine.Timeout != "" {
		d, err := time.ParseDuration(c.Engine.Timeout)
		if err != nil {
			return errors.Wrap(err, "Engine.Timeout")
		}
		if d <= 0 {
			return errors.Errorf("Engine.Timeout must be positive, but is %s", d)
		}
		c.timeout = d
	}

	if c.Window.Width < 0 || c.Window.Height < 0 {
		return errors.Errorf("Window size must be non-negative, but is %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.Width == 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height == 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Window.Title == "" {
		c.Window.Title = DefaultTitle
	}
	return nil
}

// Epsilon returns the pick tolerance in the precision the intersector uses.
func (c *Config) Epsilon() float32 { return float32(c.Pick.Epsilon) }

// Timeout returns the parsed engine timeout.
func (c *Config) Timeout() time.Duration {
	if c.timeout == 0 {
		return DefaultTimeout
	}
	return c.timeout
}
