// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package demo runs small applications on the kernel over a simulated
// evaluation board: six LEDs, two push buttons wired to interrupt lines
// and a UART.
package demo

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"rsc.io/rtos/rtos"
	"rsc.io/rtos/simcpu"
)

// An LED is one of the board LEDs.
type LED int

const (
	LEDR LED = iota // red channel of the RGB LED
	LEDG            // green channel
	LEDB            // blue channel
	LED1
	LED2
	LED3
	numLED
)

var ledNames = [numLED]string{"red", "green", "blue", "led1", "led2", "led3"}

func (l LED) String() string {
	if 0 <= l && l < numLED {
		return ledNames[l]
	}
	return fmt.Sprintf("LED(%d)", int(l))
}

// A Button is one of the board push buttons.
// Button i raises interrupt line i on every edge.
type Button int

const (
	TEC1 Button = iota
	TEC2
	numButton
)

func (b Button) String() string {
	switch b {
	case TEC1:
		return "tec1"
	case TEC2:
		return "tec2"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

func parseButton(s string) (Button, error) {
	for b := Button(0); b < numButton; b++ {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

// An Edge is a level change on a button input.
// The inputs are active low: a press is a falling edge.
type Edge uint8

const (
	Rising Edge = iota
	Falling
)

// A Board is the simulated board around one CPU.
type Board struct {
	K   *rtos.Kernel
	CPU *simcpu.CPU
	Log *logrus.Entry

	// Newline replaces "\n" in UART output.
	Newline string

	out  io.Writer
	leds [numLED]bool

	mu    sync.Mutex
	down  [numButton]bool
	edges [numButton][]Edge // latched, not yet read by the handler
}

// NewBoard returns a board writing LED changes and UART output to out.
func NewBoard(k *rtos.Kernel, cpu *simcpu.CPU, out io.Writer) *Board {
	return &Board{
		K:       k,
		CPU:     cpu,
		Log:     k.Log,
		Newline: "\n",
		out:     out,
	}
}

// SetLED turns l on or off. Only code running on the CPU may call it.
func (b *Board) SetLED(l LED, on bool) {
	b.leds[l] = on
	state := "off"
	if on {
		state = "on"
	}
	fmt.Fprintf(b.out, "tick %d: led %v %s%s", b.K.TickCount(), l, state, b.Newline)
}

// Toggle flips l.
func (b *Board) Toggle(l LED) {
	b.SetLED(l, !b.leds[l])
}

// Set moves btn down (pressed) or up and raises its interrupt line.
// Setting a button to the level it already has does nothing.
// It may be called from any goroutine.
func (b *Board) Set(btn Button, down bool) error {
	if btn < 0 || btn >= numButton {
		return fmt.Errorf("demo: invalid button %d", int(btn))
	}
	b.mu.Lock()
	if b.down[btn] == down {
		b.mu.Unlock()
		return nil
	}
	b.down[btn] = down
	e := Rising
	if down {
		e = Falling
	}
	b.edges[btn] = append(b.edges[btn], e)
	b.mu.Unlock()
	return b.CPU.Raise(int(btn))
}

// ToggleButton presses btn if it is up and releases it if it is down.
func (b *Board) ToggleButton(btn Button) error {
	b.mu.Lock()
	down := b.down[btn]
	b.mu.Unlock()
	return b.Set(btn, !down)
}

// nextEdge returns the oldest edge latched on btn.
func (b *Board) nextEdge(btn Button) (Edge, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.edges[btn]) == 0 {
		return 0, false
	}
	e := b.edges[btn][0]
	b.edges[btn] = b.edges[btn][1:]
	return e, true
}

// UART returns the board serial port.
func (b *Board) UART() io.Writer {
	return uart{b}
}

type uart struct {
	b *Board
}

func (u uart) Write(p []byte) (int, error) {
	if u.b.Newline == "\n" || !bytes.Contains(p, []byte("\n")) {
		return u.b.out.Write(p)
	}
	s := strings.ReplaceAll(string(p), "\n", u.b.Newline)
	if _, err := io.WriteString(u.b.out, s); err != nil {
		return 0, err
	}
	return len(p), nil
}
