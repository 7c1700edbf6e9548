// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rsc.io/rtos/demo"
	"rsc.io/rtos/simcpu"
)

var (
	runOpts = struct {
		app        string
		ticks      uint32
		period     time.Duration
		cpuprofile string
	}{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run an application in real time",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
)

func init() {
	runCmd.Flags().StringVar(&runOpts.app, "app", "pulse", "application to run: "+appNames())
	runCmd.Flags().Uint32Var(&runOpts.ticks, "ticks", 0, "stop after `n` ticks (0 runs until q)")
	runCmd.Flags().DurationVar(&runOpts.period, "period", time.Millisecond, "tick period")
	runCmd.Flags().StringVar(&runOpts.cpuprofile, "cpuprofile", "", "write cpuprofile to `file`")
}

func run(cmd *cobra.Command, args []string) error {
	if _, ok := demo.Apps[runOpts.app]; !ok {
		return fmt.Errorf("unknown app %q (have %s)", runOpts.app, appNames())
	}
	if runOpts.period <= 0 {
		return fmt.Errorf("--period must be positive")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runOpts.ticks > 0 {
		cfg.UseTickHook = true
	}

	if runOpts.cpuprofile != "" {
		f, err := os.Create(runOpts.cpuprofile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	newline := "\n"
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, oldState)
		newline = "\r\n"
		logrus.SetFormatter(&rawFormatter{logrus.TextFormatter{DisableTimestamp: true}})
	}

	cpu := simcpu.New(runOpts.period)
	b, err := demo.Boot(cfg, cpu, runOpts.app, os.Stdout, logrus.NewEntry(logrus.StandardLogger()))
	if err != nil {
		return err
	}
	b.Newline = newline
	if runOpts.ticks > 0 {
		b.K.TickHook = func() {
			if uint32(b.K.TickCount()) >= runOpts.ticks {
				cpu.Stop()
			}
		}
	}

	go readKeys(b, os.Stdin)

	err = b.K.Start()
	if err == simcpu.ErrStopped {
		err = nil
	}
	return err
}

// readKeys turns keystrokes into button changes until q, Ctrl-C or EOF.
func readKeys(b *demo.Board, r io.Reader) {
	buf := make([]byte, 100)
	for {
		n, err := r.Read(buf)
		for _, c := range buf[:n] {
			switch c {
			case '1':
				b.ToggleButton(demo.TEC1)
			case '2':
				b.ToggleButton(demo.TEC2)
			case 'q', 'Q', 0x03:
				b.CPU.Stop()
				return
			}
		}
		if err == io.EOF {
			return
		} else if err != nil {
			logrus.Errorf("reading stdin: %v", err)
			b.CPU.Stop()
			return
		}
	}
}

// rawFormatter ends log lines with CR LF for a terminal in raw mode.
type rawFormatter struct {
	logrus.TextFormatter
}

func (f *rawFormatter) Format(e *logrus.Entry) ([]byte, error) {
	out, err := f.TextFormatter.Format(e)
	if err != nil {
		return nil, err
	}
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = append(out[:n-1], '\r', '\n')
	}
	return out, nil
}
