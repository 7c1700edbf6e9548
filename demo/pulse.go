// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package demo

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"

	"rsc.io/rtos/rtos"
)

const (
	reboundDelay = 10 // ticks a release may follow its own press and still be a bounce
	queueLen     = 5
)

// A buttonEvent is one edge seen by a button interrupt handler.
type buttonEvent struct {
	tick rtos.Tick
	btn  Button
	edge Edge
}

const buttonEventSize = 6

func (e buttonEvent) encode(p []byte) {
	binary.LittleEndian.PutUint32(p, uint32(e.tick))
	p[4] = byte(e.btn)
	p[5] = byte(e.edge)
}

func decodeButtonEvent(p []byte) buttonEvent {
	return buttonEvent{
		tick: rtos.Tick(binary.LittleEndian.Uint32(p)),
		btn:  Button(p[4]),
		edge: Edge(p[5]),
	}
}

// A pulse is a pair of overlapping presses, measured.
type pulse struct {
	led     LED
	falling rtos.Tick // between the two presses
	rising  rtos.Tick // between the two releases
}

const pulseSize = 9

func (p pulse) total() rtos.Tick { return p.falling + p.rising }

func (p pulse) encode(b []byte) {
	b[0] = byte(p.led)
	binary.LittleEndian.PutUint32(b[1:], uint32(p.falling))
	binary.LittleEndian.PutUint32(b[5:], uint32(p.rising))
}

func decodePulse(b []byte) pulse {
	return pulse{
		led:     LED(b[0]),
		falling: rtos.Tick(binary.LittleEndian.Uint32(b[1:])),
		rising:  rtos.Tick(binary.LittleEndian.Uint32(b[5:])),
	}
}

var pulseColors = map[LED]string{
	LEDG: "green",
	LED2: "yellow",
	LEDR: "red",
	LEDB: "blue",
}

type detectState int

const (
	waitPress detectState = iota // neither button down
	waitPress1                   // tec2 down, waiting for tec1
	waitPress2                   // tec1 down, waiting for tec2
	waitRelease                  // both down
	waitRelease1                 // tec2 released, waiting for tec1
	waitRelease2                 // tec1 released, waiting for tec2
)

// A detector follows two buttons and reports a pulse each time both
// are pressed and then both released.
//
// Which button goes down first and which comes up last picks the LED:
//
//	tec1 down, tec2 down, tec1 up, tec2 up: green
//	tec2 down, tec1 down, tec1 up, tec2 up: yellow
//	tec1 down, tec2 down, tec2 up, tec1 up: red
//	tec2 down, tec1 down, tec2 up, tec1 up: blue
type detector struct {
	state   detectState
	fall    [numButton]rtos.Tick
	rise    [numButton]rtos.Tick
	falling rtos.Tick
}

// event feeds e to the detector and reports a completed pulse.
func (d *detector) event(e buttonEvent) (pulse, bool) {
	switch d.state {
	case waitPress:
		if e.edge == Falling {
			d.fall[e.btn] = e.tick
			if e.btn == TEC1 {
				d.state = waitPress2
			} else {
				d.state = waitPress1
			}
		}

	case waitPress1, waitPress2:
		first, second := TEC1, TEC2
		if d.state == waitPress1 {
			first, second = TEC2, TEC1
		}
		switch {
		case e.btn == second && e.edge == Falling:
			d.fall[second] = e.tick
			d.falling = d.fall[second] - d.fall[first]
			d.state = waitRelease
		case e.btn == first && e.edge == Rising && e.tick-d.fall[first] > reboundDelay:
			// Pressed and released alone.
			d.state = waitPress
		}

	case waitRelease:
		if e.edge == Rising {
			d.rise[e.btn] = e.tick
			if e.btn == TEC1 {
				d.state = waitRelease2
			} else {
				d.state = waitRelease1
			}
		}

	case waitRelease1, waitRelease2:
		first, last := TEC2, TEC1
		if d.state == waitRelease2 {
			first, last = TEC1, TEC2
		}
		d.state = waitPress
		if e.btn != last || e.edge != Rising {
			break
		}
		d.rise[last] = e.tick
		p := pulse{
			falling: d.falling,
			rising:  d.rise[last] - d.rise[first],
		}
		tec1First := d.fall[TEC2] >= d.fall[TEC1]
		switch {
		case last == TEC2 && tec1First:
			p.led = LEDG
		case last == TEC2:
			p.led = LED2
		case tec1First:
			p.led = LEDR
		default:
			p.led = LEDB
		}
		return p, true
	}
	return pulse{}, false
}

// PulseDetector measures overlapping presses of the two buttons.
//
// The button interrupt handlers queue each edge with its tick.
// A detector task turns edges into pulses and queues each pulse twice:
// to an LED task, which lights the pulse LED for the length of the
// overlap, and to a log task, which reports it on the UART.
func PulseDetector(b *Board) error {
	var buttons, leds, logs rtos.Queue
	for _, q := range []struct {
		q    *rtos.Queue
		size int
	}{
		{&buttons, buttonEventSize},
		{&leds, pulseSize},
		{&logs, pulseSize},
	} {
		if err := q.q.Init(b.K, queueLen, make([]byte, queueLen*q.size), q.size); err != nil {
			return err
		}
	}

	for btn := Button(0); btn < numButton; btn++ {
		btn := btn
		handler := func() {
			var buf [buttonEventSize]byte
			for {
				edge, ok := b.nextEdge(btn)
				if !ok {
					break
				}
				buttonEvent{b.K.TickCount(), btn, edge}.encode(buf[:])
				if err := buttons.PushFromISR(buf[:]); err != nil {
					b.Log.WithFields(logrus.Fields{"button": btn, "tick": b.K.TickCount()}).Warnf("edge dropped: %v", err)
				}
			}
		}
		if err := b.CPU.Attach(int(btn), handler); err != nil {
			return err
		}
	}

	detect := func(any) {
		var d detector
		var in [buttonEventSize]byte
		var out [pulseSize]byte
		for {
			if buttons.Pull(in[:], rtos.MaxDelay) != nil {
				continue
			}
			p, ok := d.event(decodeButtonEvent(in[:]))
			if !ok {
				continue
			}
			p.encode(out[:])
			leds.Push(out[:], rtos.MaxDelay)
			logs.Push(out[:], rtos.MaxDelay)
		}
	}
	light := func(any) {
		var in [pulseSize]byte
		for {
			if leds.Pull(in[:], rtos.MaxDelay) != nil {
				continue
			}
			p := decodePulse(in[:])
			b.SetLED(p.led, true)
			b.K.Delay(p.total())
			b.SetLED(p.led, false)
		}
	}
	report := func(any) {
		var in [pulseSize]byte
		uart := b.UART()
		for {
			if logs.Pull(in[:], rtos.MaxDelay) != nil {
				continue
			}
			p := decodePulse(in[:])
			fmt.Fprintf(uart, "%s LED on for %d ms (falling edges %d ms apart, rising edges %d ms apart)\n",
				pulseColors[p.led], p.total(), p.falling, p.rising)
		}
	}

	tasks := []struct {
		entry rtos.TaskFunc
		prio  uint8
		name  string
	}{
		{detect, 1, "plsDetTask"},
		{light, 2, "ledTask"},
		{report, 3, "logTask"},
	}
	for _, t := range tasks {
		if _, err := b.K.CreateTask(t.entry, t.prio, stack(b), t.name, nil); err != nil {
			return err
		}
	}
	return nil
}
