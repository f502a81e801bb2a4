/*
DESCRIPTION
  fake.go provides Fake, an in-memory GPIO that records writes and replays
  scripted button edges, for exercising the controller without hardware.

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
)

// Write records one call to Fake.Write.
type Write struct {
	Pin   int
	Level Level
}

// Fake is an in-memory GPIO. Its exported fields must be set before use.
type Fake struct {
	// WriteErr, if not nil, is consulted on each write; a non-nil return
	// fails the write without changing the level.
	WriteErr func(pin int, l Level) error

	// Edges holds the results of successive WaitForRisingEdge calls. Once
	// exhausted, waits time out.
	Edges []bool

	// WaitErr, if not nil, is returned by every WaitForRisingEdge call.
	WaitErr error

	// OnWait, if not nil, is called with the timeout of each wait that does
	// not see an edge, e.g. to advance a simulated clock.
	OnWait func(timeout time.Duration)

	mu      sync.Mutex
	outputs map[int]bool
	inputs  map[int]bool
	levels  map[int]Level
	writes  []Write
	closed  bool
}

// NewFake returns a new Fake.
func NewFake() *Fake {
	return &Fake{
		outputs: make(map[int]bool),
		inputs:  make(map[int]bool),
		levels:  make(map[int]Level),
	}
}

// ConfigureOutput implements GPIO.
func (f *Fake) ConfigureOutput(pin int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[pin] = true
	return nil
}

// ConfigureInput implements GPIO.
func (f *Fake) ConfigureInput(pin int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs[pin] = true
	return nil
}

// Write implements GPIO.
func (f *Fake) Write(pin int, l Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.outputs[pin] {
		return &HardwareFault{Pin: pin, Op: "write", Err: errNotConfigured}
	}
	if f.WriteErr != nil {
		if err := f.WriteErr(pin, l); err != nil {
			return &HardwareFault{Pin: pin, Op: "write", Err: err}
		}
	}
	f.levels[pin] = l
	f.writes = append(f.writes, Write{Pin: pin, Level: l})
	return nil
}

// WaitForRisingEdge implements GPIO.
func (f *Fake) WaitForRisingEdge(ctx context.Context, pin int, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f.mu.Lock()
	if !f.inputs[pin] {
		f.mu.Unlock()
		return false, &HardwareFault{Pin: pin, Op: "wait for edge", Err: errNotConfigured}
	}
	if f.WaitErr != nil {
		f.mu.Unlock()
		return false, &HardwareFault{Pin: pin, Op: "wait for edge", Err: f.WaitErr}
	}
	var edge bool
	if len(f.Edges) != 0 {
		edge, f.Edges = f.Edges[0], f.Edges[1:]
	}
	onWait := f.OnWait
	f.mu.Unlock()

	if !edge && onWait != nil {
		onWait(timeout)
	}
	return edge, nil
}

// Close implements GPIO.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Level returns the last level written to pin.
func (f *Fake) Level(pin int) Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[pin]
}

// Writes returns all successful writes in order.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Closed returns true if Close has been called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
