// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

// Package config provides the procpin configuration. Settings are layered,
// with later layers overriding earlier ones: defaults < YAML file <
// environment < command line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thediveo/procpin"
)

// Config holds all procpin settings.
type Config struct {
	// Process is the executable base name of the process to pin.
	Process string `yaml:"process"`
	// CPUs is the desired affinity in CPU list format, such as "0-3,8".
	CPUs string `yaml:"cpus"`
	// Mask is the desired affinity as an integer, such as "0xf". Only one of
	// CPUs and Mask can be set.
	Mask string `yaml:"mask"`
	// Interval between two pinning cycles.
	Interval time.Duration `yaml:"interval"`
	// Once runs only a single cycle.
	Once bool `yaml:"once"`
	// Color enables colored console output.
	Color bool      `yaml:"color"`
	Log   LogConfig `yaml:"log"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Defaults returns the default configuration, pinning the Windows audio
// device graph isolation process to the first CPU every ten seconds.
func Defaults() Config {
	return Config{
		Process:  "audiodg.exe",
		Mask:     "0x1",
		Interval: 10 * time.Second,
		Color:    true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the configuration from the defaults, the optional YAML file at
// path, and the environment, in this order.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overrides the configuration with the settings present in the YAML
// file at path.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	// an affinity given in the file replaces the default one, whatever form
	// it is in.
	var affinity struct {
		CPUs *string `yaml:"cpus"`
		Mask *string `yaml:"mask"`
	}
	if err := yaml.Unmarshal(data, &affinity); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if affinity.CPUs != nil || affinity.Mask != nil {
		c.CPUs, c.Mask = "", ""
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// SetCPUs sets the desired affinity in CPU list format, replacing any mask.
func (c *Config) SetCPUs(cpus string) {
	c.CPUs, c.Mask = cpus, ""
}

// SetMask sets the desired affinity as an integer, replacing any CPU list.
func (c *Config) SetMask(mask string) {
	c.CPUs, c.Mask = "", mask
}

// DesiredMask returns the desired affinity mask from either the CPU list or
// the integer mask.
func (c Config) DesiredMask() (procpin.Mask, error) {
	switch {
	case c.CPUs != "" && c.Mask != "":
		return 0, errors.New("cpus and mask are mutually exclusive")
	case c.CPUs != "":
		l, err := procpin.ParseList([]byte(c.CPUs))
		if err != nil {
			return 0, fmt.Errorf("invalid cpu list %q: %w", c.CPUs, err)
		}
		return l.Mask()
	case c.Mask != "":
		return procpin.ParseMask(c.Mask)
	default:
		return 0, errors.New("no affinity configured")
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Process) == "" {
		return errors.New("no process name configured")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	mask, err := c.DesiredMask()
	if err != nil {
		return err
	}
	if mask == 0 {
		return errors.New("affinity must include at least one CPU")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// SlogLevel returns the slog level for the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}
