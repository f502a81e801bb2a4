/*
DESCRIPTION
  device.go provides Camera, an interface that describes a still image camera
  that can be opened, configured for a manual exposure, triggered to capture to
  a file and closed, along with the exposure settings such a camera accepts.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides interfaces and shared types for the peripherals
// driven by the capture controller.
package device

import (
	"context"
	"fmt"

	"github.com/ausocean/utils/sliceutils"
)

// Camera describes a still image camera. Every method may fail with a driver
// error.
type Camera interface {
	// Name returns the name of the Camera.
	Name() string

	// Open acquires the camera. Settings from a previous Open do not carry
	// over.
	Open() error

	// SetResolution sets the width and height of captured images in pixels.
	SetResolution(width, height int) error

	// SetManualExposure locks the sensor's timing and applies a fixed shutter
	// speed, ISO and white balance. Implementations must apply the exposure
	// lock before the shutter speed so the sensor does not renegotiate timing
	// after the shutter speed has been set.
	SetManualExposure(e Exposure) error

	// Capture takes an image and writes it to path. Capture returns early with
	// an error if ctx is done.
	Capture(ctx context.Context, path string) error

	// Close releases the camera. Close is safe to call after a failed Open.
	Close() error
}

// AWB is a white balance mode.
type AWB string

// White balance modes.
const (
	AWBAuto         AWB = "auto"
	AWBSunlight     AWB = "sunlight"
	AWBCloudy       AWB = "cloudy"
	AWBShade        AWB = "shade"
	AWBTungsten     AWB = "tungsten"
	AWBFluorescent  AWB = "fluorescent"
	AWBIncandescent AWB = "incandescent"
)

// AWBModes holds the valid white balance modes.
var AWBModes = []string{
	string(AWBAuto),
	string(AWBSunlight),
	string(AWBCloudy),
	string(AWBShade),
	string(AWBTungsten),
	string(AWBFluorescent),
	string(AWBIncandescent),
}

// Valid returns true if a is one of AWBModes.
func (a AWB) Valid() bool { return sliceutils.ContainsString(AWBModes, string(a)) }

// Exposure holds manual exposure settings.
type Exposure struct {
	SensorMode   int // Sensor mode used to lock frame timing.
	FrameRate    int // Locked frame rate in frames per second.
	ShutterSpeed int // Microseconds.
	ISO          int
	AWB          AWB
}

// MultiError implements the built in error interface. MultiError is used to
// collect multiple errors during validation of parameters.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// Unwrap returns the collected errors so errors.Is and errors.As see them.
func (me MultiError) Unwrap() []error { return me }
