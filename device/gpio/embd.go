/*
DESCRIPTION
  embd.go provides an implementation of GPIO using the embd library's
  digital pins on a Raspberry Pi.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package gpio

import (
	"context"
	"sync"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/rpi"
	"github.com/pkg/errors"
)

// Embd is an implementation of GPIO using embd digital pins.
type Embd struct {
	log   logging.Logger
	mu    sync.Mutex
	pins  map[int]embd.DigitalPin
	edges map[int]chan struct{}
}

// NewEmbd initialises the host's GPIO driver and returns a new Embd.
func NewEmbd(l logging.Logger) (*Embd, error) {
	err := embd.InitGPIO()
	if err != nil {
		return nil, errors.Wrap(err, "could not initialise GPIO")
	}
	return &Embd{
		log:   l,
		pins:  make(map[int]embd.DigitalPin),
		edges: make(map[int]chan struct{}),
	}, nil
}

func (g *Embd) pin(n int, dir embd.Direction) (embd.DigitalPin, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pins[n]
	if !ok {
		var err error
		p, err = embd.NewDigitalPin(n)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open pin %d", n)
		}
		g.pins[n] = p
	}

	err := p.SetDirection(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not set direction of pin %d", n)
	}
	return p, nil
}

// ConfigureOutput implements GPIO.
func (g *Embd) ConfigureOutput(pin int) error {
	_, err := g.pin(pin, embd.Out)
	if err != nil {
		return &HardwareFault{Pin: pin, Op: "configure output", Err: err}
	}
	g.log.Debug("configured output pin", "pin", pin)
	return nil
}

// ConfigureInput implements GPIO. Rising edges are watched from this point;
// at most one pending edge is kept.
func (g *Embd) ConfigureInput(pin int) error {
	p, err := g.pin(pin, embd.In)
	if err != nil {
		return &HardwareFault{Pin: pin, Op: "configure input", Err: err}
	}

	ch := make(chan struct{}, 1)
	err = p.Watch(embd.EdgeRising, func(embd.DigitalPin) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return &HardwareFault{Pin: pin, Op: "watch", Err: errors.Wrap(err, "could not watch rising edge")}
	}

	g.mu.Lock()
	g.edges[pin] = ch
	g.mu.Unlock()
	g.log.Debug("configured input pin", "pin", pin)
	return nil
}

// Write implements GPIO.
func (g *Embd) Write(pin int, l Level) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return &HardwareFault{Pin: pin, Op: "write", Err: errNotConfigured}
	}

	v := embd.Low
	if l == High {
		v = embd.High
	}
	err := p.Write(v)
	if err != nil {
		return &HardwareFault{Pin: pin, Op: "write", Err: errors.Wrap(err, "could not write level")}
	}
	return nil
}

// WaitForRisingEdge implements GPIO.
func (g *Embd) WaitForRisingEdge(ctx context.Context, pin int, timeout time.Duration) (bool, error) {
	g.mu.Lock()
	ch, ok := g.edges[pin]
	g.mu.Unlock()
	if !ok {
		return false, &HardwareFault{Pin: pin, Op: "wait for edge", Err: errNotConfigured}
	}

	// Drop any edge that arrived while nobody was waiting.
	select {
	case <-ch:
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-ch:
		return true, nil
	case <-t.C:
		return false, nil
	}
}

// Close stops edge watches, closes all pins and shuts down the GPIO driver.
func (g *Embd) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for n := range g.edges {
		err := g.pins[n].StopWatching()
		if err != nil {
			g.log.Warning("could not stop watching pin", "pin", n, "error", err)
		}
	}
	for n, p := range g.pins {
		err := p.Close()
		if err != nil {
			g.log.Warning("could not close pin", "pin", n, "error", err)
		}
	}
	g.pins = make(map[int]embd.DigitalPin)
	g.edges = make(map[int]chan struct{})

	return errors.Wrap(embd.CloseGPIO(), "could not close GPIO")
}
