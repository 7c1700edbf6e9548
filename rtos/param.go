// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// A Tick counts periods of the kernel time source.
type Tick uint32

// MaxDelay blocks a task until something wakes it explicitly.
// Tick accounting never counts it down.
const MaxDelay Tick = 0xFFFFFFFF

/*
 * task identities
 */
const (
	NoTask  TaskID = 0xFF /* no task has run yet */
	maxTask        = 0xFE /* largest table, so the idle id stays below NoTask */
)

// Config holds the kernel limits and feature switches.
// None of them can change after New.
type Config struct {
	MaxTasks           int  `yaml:"maxTasks"`
	MaxPriority        int  `yaml:"maxPriority"`
	MinStackSize       int  `yaml:"minStackSize"`
	IdleStackSize      int  `yaml:"idleStackSize"`
	TicksPerReschedule Tick `yaml:"ticksPerReschedule"`
	MaxNameLen         int  `yaml:"maxNameLen"`

	UseDelay     bool `yaml:"useDelay"`
	UseSemaphore bool `yaml:"useSemaphore"`
	UseQueue     bool `yaml:"useQueue"`
	UseTickHook  bool `yaml:"useTickHook"`
}

// DefaultConfig returns the configuration in default.yaml.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic("rtos: bad default.yaml: " + err.Error())
	}
	return cfg
}

// LoadConfig reads a YAML document on top of DefaultConfig
// and checks the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("rtos config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first limit or feature dependency that cfg breaks.
func (cfg *Config) Validate() error {
	switch {
	case cfg.MaxTasks < 1 || cfg.MaxTasks > maxTask:
		return fmt.Errorf("rtos config: maxTasks must be in [1, %d], have %d", maxTask, cfg.MaxTasks)
	case cfg.MaxPriority < 1 || cfg.MaxPriority > 0xFF:
		return fmt.Errorf("rtos config: maxPriority must be in [1, 255], have %d", cfg.MaxPriority)
	case cfg.MinStackSize < 0 || cfg.IdleStackSize < 0:
		return fmt.Errorf("rtos config: negative stack size")
	case cfg.TicksPerReschedule < 1:
		return fmt.Errorf("rtos config: ticksPerReschedule must be at least 1")
	case cfg.MaxNameLen < 1:
		return fmt.Errorf("rtos config: maxNameLen must be at least 1")
	case cfg.UseQueue && !cfg.UseSemaphore:
		return fmt.Errorf("rtos config: useQueue requires useSemaphore")
	case cfg.UseSemaphore && !cfg.UseDelay:
		return fmt.Errorf("rtos config: useSemaphore requires useDelay")
	}
	return nil
}

// Marshal renders cfg as YAML.
func (cfg Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}
