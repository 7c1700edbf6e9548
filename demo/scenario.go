// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package demo

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"rsc.io/rtos/rtos"
	"rsc.io/rtos/simcpu"
)

// Boot builds a kernel for cfg on cpu and installs app on a board
// writing to out. The kernel is not started.
func Boot(cfg rtos.Config, cpu *simcpu.CPU, app string, out io.Writer, log *logrus.Entry) (*Board, error) {
	setup, ok := Apps[app]
	if !ok {
		return nil, fmt.Errorf("unknown app %q", app)
	}
	k, err := rtos.New(cfg, cpu)
	if err != nil {
		return nil, err
	}
	if log != nil {
		k.Log = log
		cpu.Log = log
	}
	b := NewBoard(k, cpu, out)
	if err := setup(b); err != nil {
		return nil, fmt.Errorf("%s: %w", app, err)
	}
	return b, nil
}

// A Scenario is a scripted run of an app: button events at fixed ticks.
//
// A scenario is stored as a txtar archive with files
//
//	config.yaml  app, ticks and kernel configuration
//	events       one event per line: TICK BUTTON down|up
//	want         expected output (optional)
type Scenario struct {
	App    string
	Ticks  int
	Config rtos.Config
	Events []Event
	Want   []byte
}

// An Event moves a button at a tick.
type Event struct {
	Tick   int
	Button Button
	Down   bool
}

type scenarioConfig struct {
	App    string      `yaml:"app"`
	Ticks  int         `yaml:"ticks"`
	Kernel rtos.Config `yaml:"kernel"`
}

// ParseScenario parses a scenario archive. The file name is used in errors.
func ParseScenario(file string, data []byte) (*Scenario, error) {
	ar := txtar.Parse(data)
	s := new(Scenario)
	var haveConfig bool
	for _, f := range ar.Files {
		switch f.Name {
		case "config.yaml":
			cfg := scenarioConfig{Kernel: rtos.DefaultConfig()}
			if err := yaml.Unmarshal(f.Data, &cfg); err != nil {
				return nil, fmt.Errorf("%s: config.yaml: %w", file, err)
			}
			if err := cfg.Kernel.Validate(); err != nil {
				return nil, fmt.Errorf("%s: config.yaml: %w", file, err)
			}
			if _, ok := Apps[cfg.App]; !ok {
				return nil, fmt.Errorf("%s: config.yaml: unknown app %q", file, cfg.App)
			}
			if cfg.Ticks < 0 {
				return nil, fmt.Errorf("%s: config.yaml: negative ticks", file)
			}
			s.App, s.Ticks, s.Config = cfg.App, cfg.Ticks, cfg.Kernel
			haveConfig = true
		case "events":
			events, err := parseEvents(file, f.Data)
			if err != nil {
				return nil, err
			}
			s.Events = events
		case "want":
			s.Want = f.Data
		default:
			return nil, fmt.Errorf("%s: unexpected file %s", file, f.Name)
		}
	}
	if !haveConfig {
		return nil, fmt.Errorf("%s: missing config.yaml", file)
	}
	for _, e := range s.Events {
		if e.Tick > s.Ticks {
			return nil, fmt.Errorf("%s: event at tick %d after end of run at %d", file, e.Tick, s.Ticks)
		}
	}
	return s, nil
}

func parseEvents(file string, data []byte) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(bytes.NewReader(data))
	for lineno := 1; sc.Scan(); lineno++ {
		line, _, _ := strings.Cut(sc.Text(), "#")
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		if len(f) != 3 {
			return nil, fmt.Errorf("%s: events:%d: want TICK BUTTON down|up", file, lineno)
		}
		tick, err := strconv.Atoi(f[0])
		if err != nil || tick < 0 {
			return nil, fmt.Errorf("%s: events:%d: bad tick %q", file, lineno, f[0])
		}
		if len(events) > 0 && tick < events[len(events)-1].Tick {
			return nil, fmt.Errorf("%s: events:%d: tick %d out of order", file, lineno, tick)
		}
		btn, err := parseButton(f[1])
		if err != nil {
			return nil, fmt.Errorf("%s: events:%d: %v", file, lineno, err)
		}
		var down bool
		switch f[2] {
		case "down":
			down = true
		case "up":
		default:
			return nil, fmt.Errorf("%s: events:%d: bad level %q", file, lineno, f[2])
		}
		events = append(events, Event{tick, btn, down})
	}
	return events, nil
}

// Replay runs s on a manually stepped CPU, writing board output to w.
// It returns once Ticks ticks have passed, or earlier if the CPU traps.
func (s *Scenario) Replay(w io.Writer, log *logrus.Entry) error {
	cpu := simcpu.New(0)
	b, err := Boot(s.Config, cpu, s.App, w, log)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- b.K.Start() }()
	cpu.Settle()

	events := s.Events
	for t := 0; t <= s.Ticks; t++ {
		if t > 0 {
			cpu.Step(1)
		}
		for len(events) > 0 && events[0].Tick == t {
			if err := b.Set(events[0].Button, events[0].Down); err != nil {
				cpu.Stop()
				<-errc
				return err
			}
			cpu.Settle()
			events = events[1:]
		}
	}

	cpu.Stop()
	if err := <-errc; err != simcpu.ErrStopped {
		return err
	}
	return nil
}
