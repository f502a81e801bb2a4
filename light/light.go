/*
DESCRIPTION
  light.go provides Controller, which owns the on/off state of the auxiliary
  light through a single digital output line.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package light provides control of the auxiliary light.
package light

import (
	"github.com/ausocean/blobcam/device/gpio"
	"github.com/ausocean/utils/logging"
)

// DefaultPin is the BCM pin the light is wired to.
const DefaultPin = 17

// Controller drives the light. Set is idempotent and may be called after any
// earlier failure.
type Controller struct {
	gpio gpio.GPIO
	pin  int
	log  logging.Logger
}

// New configures pin as an output and returns a Controller for it. The light
// level is not changed.
func New(g gpio.GPIO, pin int, l logging.Logger) (*Controller, error) {
	err := g.ConfigureOutput(pin)
	if err != nil {
		return nil, asFault(pin, "configure output", err)
	}
	return &Controller{gpio: g, pin: pin, log: l}, nil
}

// Set turns the light on or off. A failed write is returned as a
// *gpio.HardwareFault.
func (c *Controller) Set(on bool) error {
	if on {
		c.log.Debug("turning light on", "pin", c.pin)
	} else {
		c.log.Debug("turning light off", "pin", c.pin)
	}
	err := c.gpio.Write(c.pin, gpio.Level(on))
	if err != nil {
		return asFault(c.pin, "write", err)
	}
	return nil
}

// On turns the light on.
func (c *Controller) On() error { return c.Set(true) }

// Off turns the light off.
func (c *Controller) Off() error { return c.Set(false) }

func asFault(pin int, op string, err error) error {
	if gpio.IsHardwareFault(err) {
		return err
	}
	return &gpio.HardwareFault{Pin: pin, Op: op, Err: err}
}
