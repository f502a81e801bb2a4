/*
DESCRIPTION
  gpio.go provides GPIO, the digital line capability used to drive the light
  and watch the capture button, and HardwareFault, the error reported when a
  line cannot be driven or watched.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gpio provides digital line access for the capture controller.
package gpio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Level is a digital line level.
type Level bool

// Line levels.
const (
	Low  Level = false
	High Level = true
)

// GPIO describes digital line access. Pins are BCM numbered.
type GPIO interface {
	// ConfigureOutput sets pin as an output.
	ConfigureOutput(pin int) error

	// ConfigureInput sets pin as an input whose rising edges can be waited on.
	ConfigureInput(pin int) error

	// Write sets the level of an output pin.
	Write(pin int, l Level) error

	// WaitForRisingEdge blocks until a rising edge occurs on pin, the timeout
	// passes, or ctx is done. It returns true only if an edge occurred. Edges
	// that occurred before the call are ignored.
	WaitForRisingEdge(ctx context.Context, pin int, timeout time.Duration) (bool, error)

	// Close releases all pins.
	Close() error
}

var errNotConfigured = errors.New("pin not configured")

// HardwareFault is returned when a line cannot be driven or watched. There is
// no safe retry, so a HardwareFault aborts the current command.
type HardwareFault struct {
	Pin int
	Op  string
	Err error
}

func (f *HardwareFault) Error() string {
	return fmt.Sprintf("hardware fault: %s pin %d: %v", f.Op, f.Pin, f.Err)
}

func (f *HardwareFault) Unwrap() error { return f.Err }

// IsHardwareFault returns true if err is, or wraps, a HardwareFault.
func IsHardwareFault(err error) bool {
	var hf *HardwareFault
	return errors.As(err, &hf)
}
