/*
DESCRIPTION
  params.go provides Parameters, the immutable description of one exposure,
  and the parameter sets used by the controller's modes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/ausocean/blobcam/device"
)

// Manual exposure lock settings. Sensor mode 3 allows exposures of several
// seconds; one frame per second keeps the sensor from shortening them.
const (
	lockSensorMode = 3
	lockFrameRate  = 1
)

// Defaults for a single capture.
const (
	DefaultWidth        = 2592
	DefaultHeight       = 1944
	DefaultISO          = 200
	DefaultShutterSpeed = 1000000 // us
	DefaultPreview      = 2 * time.Second
	DefaultAWB          = device.AWBSunlight
)

// Parameter errors.
var (
	errBadResolution = errors.New("resolution must be positive")
	errBadShutter    = errors.New("shutter speed must be positive for manual exposure")
	errBadPreview    = errors.New("preview must not be negative")
	errBadAWB        = errors.New("unknown white balance mode")
)

// Parameters describes one exposure. Parameters is passed by value and never
// modified after construction.
type Parameters struct {
	Width, Height int
	ISO           int
	ShutterSpeed  int // Microseconds.
	Manual        bool
	AWB           device.AWB
	Preview       time.Duration // Settle time between light on and capture.
	Sound         bool          // Play the audio cue before capture.
}

// DefaultParameters returns the parameters used for a plain photo.
func DefaultParameters() Parameters {
	return Parameters{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		ISO:          DefaultISO,
		ShutterSpeed: DefaultShutterSpeed,
		Manual:       true,
		AWB:          DefaultAWB,
		Preview:      DefaultPreview,
	}
}

// Validate checks the parameters, returning all problems found.
func (p Parameters) Validate() error {
	var errs device.MultiError
	if p.Width <= 0 || p.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: %dx%d", errBadResolution, p.Width, p.Height))
	}
	if p.Manual && p.ShutterSpeed <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", errBadShutter, p.ShutterSpeed))
	}
	if p.Preview < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", errBadPreview, p.Preview))
	}
	if p.Manual && !p.AWB.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", errBadAWB, p.AWB))
	}
	if len(errs) != 0 {
		return errs
	}
	return nil
}

// exposure returns the manual exposure settings for p.
func (p Parameters) exposure() device.Exposure {
	return device.Exposure{
		SensorMode:   lockSensorMode,
		FrameRate:    lockFrameRate,
		ShutterSpeed: p.ShutterSpeed,
		ISO:          p.ISO,
		AWB:          p.AWB,
	}
}
