/*
DESCRIPTION
  raspistill.go provides an implementation of the Camera interface for the
  raspistill raspberry pi camera interfacing utility. Each capture runs one
  raspistill process with the resolution and manual exposure settings applied
  since Open, writing a single JPEG image to the requested path.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package raspistill provides an implementation of the Camera interface for
// the raspistill raspberry pi camera interfacing utility.
package raspistill

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/ausocean/blobcam/codec/jpeg"
	"github.com/ausocean/blobcam/device"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "raspistill: "

// Command is the name of the raspistill utility.
const Command = "raspistill"

// Validation bounds.
const (
	maxWidth        = 4056
	maxHeight       = 3040
	minISO          = 100
	maxISO          = 800
	minShutterSpeed = 1        // us
	maxShutterSpeed = 10000000 // us = 10 s
	maxSensorMode   = 7
)

// Raspistill defaults.
const (
	// settleTimeout is the time in milliseconds raspistill runs the sensor
	// before releasing the shutter; this is needed for the exposure settings to
	// be applied by the firmware.
	settleTimeout = 1000
	defaultWidth  = 2592
	defaultHeight = 1944
)

// Errors.
var (
	errNotOpen       = errors.New("camera not open")
	errAlreadyOpen   = errors.New("camera already open")
	errBadResolution = errors.New("resolution out of range")
	errBadISO        = errors.New("iso out of range")
	errBadShutter    = errors.New("shutter speed out of range")
	errBadSensorMode = errors.New("sensor mode out of range")
	errBadAWB        = errors.New("unknown white balance mode")
)

// awbArgs maps white balance modes to raspistill --awb values.
var awbArgs = map[device.AWB]string{
	device.AWBAuto:         "auto",
	device.AWBSunlight:     "sun",
	device.AWBCloudy:       "cloud",
	device.AWBShade:        "shade",
	device.AWBTungsten:     "tungsten",
	device.AWBFluorescent:  "fluorescent",
	device.AWBIncandescent: "incandescent",
}

// Raspistill is an implementation of Camera that provides control over the
// raspistill utility for using the raspberry pi camera for the capture of
// singular images.
type Raspistill struct {
	log      logging.Logger
	bin      string // Path or name of the raspistill executable.
	mu       sync.Mutex
	open     bool
	width    int
	height   int
	exposure *device.Exposure
}

// New returns a new Raspistill that runs the raspistill utility found in PATH.
func New(l logging.Logger) *Raspistill { return NewWithCommand(l, Command) }

// NewWithCommand returns a new Raspistill that runs the executable bin, which
// must accept raspistill's arguments.
func NewWithCommand(l logging.Logger, bin string) *Raspistill {
	return &Raspistill{log: l, bin: bin}
}

// Name returns the name of the device.
func (r *Raspistill) Name() string { return "Raspistill" }

// Open checks that the raspistill executable can be found and resets the
// capture settings to their defaults.
func (r *Raspistill) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.open {
		return errAlreadyOpen
	}

	path, err := exec.LookPath(r.bin)
	if err != nil {
		return fmt.Errorf("could not find %s: %w", r.bin, err)
	}
	r.log.Debug(pkg+"found executable", "path", path)

	r.open = true
	r.width, r.height = defaultWidth, defaultHeight
	r.exposure = nil
	return nil
}

// SetResolution implements device.Camera.
func (r *Raspistill) SetResolution(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errNotOpen
	}
	if width <= 0 || width > maxWidth || height <= 0 || height > maxHeight {
		return fmt.Errorf("%w: %dx%d", errBadResolution, width, height)
	}
	r.width, r.height = width, height
	return nil
}

// SetManualExposure implements device.Camera. All values are checked before
// any are applied.
func (r *Raspistill) SetManualExposure(e device.Exposure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errNotOpen
	}

	var errs device.MultiError
	if e.SensorMode < 0 || e.SensorMode > maxSensorMode {
		errs = append(errs, fmt.Errorf("%w: %d", errBadSensorMode, e.SensorMode))
	}
	if e.ShutterSpeed < minShutterSpeed || e.ShutterSpeed > maxShutterSpeed {
		errs = append(errs, fmt.Errorf("%w: %d", errBadShutter, e.ShutterSpeed))
	}
	if e.ISO < minISO || e.ISO > maxISO {
		errs = append(errs, fmt.Errorf("%w: %d", errBadISO, e.ISO))
	}
	if _, ok := awbArgs[e.AWB]; !ok {
		errs = append(errs, fmt.Errorf("%w: %q", errBadAWB, e.AWB))
	}
	if len(errs) != 0 {
		return errs
	}

	r.exposure = &e
	return nil
}

// Capture runs raspistill to write a single image to path and then checks
// that a complete JPEG image was written. The process is killed if ctx is
// done before it exits.
func (r *Raspistill) Capture(ctx context.Context, path string) error {
	r.mu.Lock()
	if !r.open {
		r.mu.Unlock()
		return errNotOpen
	}
	args := r.args(path)
	r.mu.Unlock()

	r.log.Info(pkg+"raspistill args", "args", strings.Join(args, " "))
	out, err := exec.CommandContext(ctx, r.bin, args...).CombinedOutput()
	if len(out) != 0 {
		r.log.Debug(pkg+"raspistill output", "output", string(out))
	}
	if ctx.Err() != nil {
		return fmt.Errorf("raspistill interrupted: %w", ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("raspistill failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	err = jpeg.CheckFile(path)
	if err != nil {
		return fmt.Errorf("bad image written to %s: %w", path, err)
	}
	return nil
}

// Close releases the camera. Calling Close on a camera that is not open does
// nothing.
func (r *Raspistill) Close() error {
	r.mu.Lock()
	r.open = false
	r.mu.Unlock()
	return nil
}

// args returns the raspistill arguments for a capture to path. The exposure
// lock (sensor mode, frame rate, exposure off) precedes the shutter speed.
func (r *Raspistill) args(path string) []string {
	args := []string{
		"--output", path,
		"--nopreview",
		"--timeout", fmt.Sprint(settleTimeout),
		"--width", fmt.Sprint(r.width),
		"--height", fmt.Sprint(r.height),
	}

	if r.exposure == nil {
		return args
	}
	e := r.exposure
	if e.SensorMode != 0 {
		args = append(args, "--mode", fmt.Sprint(e.SensorMode))
	}
	if e.FrameRate != 0 {
		args = append(args, "--framerate", fmt.Sprint(e.FrameRate))
	}
	return append(args,
		"--exposure", "off",
		"--shutter", fmt.Sprint(e.ShutterSpeed),
		"--ISO", fmt.Sprint(e.ISO),
		"--awb", awbArgs[e.AWB],
	)
}
