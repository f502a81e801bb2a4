/*
DESCRIPTION
  capture.go provides Executor, which drives the light and the camera through
  one complete capture and contains every capture-local failure in a Result.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package capture provides execution of single light-synchronised captures.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/device"
	"github.com/ausocean/blobcam/device/gpio"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "capture: "

// EventHeader is the header row of the event log.
var EventHeader = []string{"Timestamp", "Event", "Path", "Success", "Detail"}

// Event log values.
const (
	eventPicture    = "picture"
	timestampLayout = "2006-01-02 15:04:05"
)

// Light turns the auxiliary light on and off.
type Light interface {
	Set(on bool) error
}

// Cue plays an audio cue.
type Cue interface {
	Play(path string) error
}

// Appender appends rows to a log.
type Appender interface {
	Append(row ...string) error
}

// Result is the outcome of one capture attempt.
type Result struct {
	Path    string
	Success bool
	Err     error // Why the capture failed; nil on success.
}

// Detail returns the failure detail, or "" on success.
func (r Result) Detail() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Fatal returns true if the failure was a hardware fault, after which no
// further captures should be attempted.
func (r Result) Fatal() bool { return gpio.IsHardwareFault(r.Err) }

// Executor performs captures. Only one capture runs at a time; concurrent
// calls to Capture are serialised so light and camera transitions of one
// capture never interleave with another's.
type Executor struct {
	cam     device.Camera
	light   Light
	log     logging.Logger
	clock   clock.Clock
	cue     Cue
	cuePath string
	events  Appender
	timeout time.Duration
	mu      sync.Mutex
}

// NewExecutor returns an Executor for cam and light. Options may be provided
// to set the clock, sound cue, event log and capture timeout.
func NewExecutor(cam device.Camera, light Light, l logging.Logger, options ...func(*Executor) error) (*Executor, error) {
	e := &Executor{cam: cam, light: light, log: l, clock: clock.Real{}}
	for i, opt := range options {
		err := opt(e)
		if err != nil {
			return nil, fmt.Errorf("option %d failed: %w", i, err)
		}
	}
	return e, nil
}

// WithClock sets the clock used for the preview delay.
func WithClock(c clock.Clock) func(*Executor) error {
	return func(e *Executor) error {
		if c == nil {
			return errors.New("nil clock")
		}
		e.clock = c
		return nil
	}
}

// WithCue sets the player and file used for the sound cue.
func WithCue(c Cue, path string) func(*Executor) error {
	return func(e *Executor) error {
		e.cue, e.cuePath = c, path
		return nil
	}
}

// WithEvents sets a log to which every capture result is appended.
func WithEvents(a Appender) func(*Executor) error {
	return func(e *Executor) error {
		e.events = a
		return nil
	}
}

// WithTimeout bounds the camera's capture call. Zero means no bound.
func WithTimeout(d time.Duration) func(*Executor) error {
	return func(e *Executor) error {
		if d < 0 {
			return fmt.Errorf("negative timeout: %v", d)
		}
		e.timeout = d
		return nil
	}
}

// Capture takes one image to path using p. Failures are never returned as
// errors; the light is always left off, the camera is always closed exactly
// once, and the outcome is reported in the Result.
func (e *Executor) Capture(ctx context.Context, path string, p Parameters) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.clock.Now()
	err := e.capture(ctx, path, p)
	r := Result{Path: path, Success: err == nil, Err: err}
	if err != nil {
		e.log.Error(pkg+"capture failed", "path", path, "error", err)
	} else {
		e.log.Info(pkg+"captured", "path", path)
	}

	if e.events != nil {
		err = e.events.Append(start.Format(timestampLayout), eventPicture, path, strconv.FormatBool(r.Success), r.Detail())
		if err != nil {
			e.log.Warning(pkg+"could not log capture event", "error", err)
		}
	}
	return r
}

func (e *Executor) capture(ctx context.Context, path string, p Parameters) error {
	err := p.Validate()
	if err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}

	err = e.cam.Open()
	if err == nil {
		err = e.expose(ctx, path, p)
	} else {
		err = fmt.Errorf("could not open camera: %w", err)
	}

	// A hardware fault means the light line cannot be trusted; writing it
	// again is not attempted.
	if err != nil && !gpio.IsHardwareFault(err) {
		lerr := e.light.Set(false)
		if lerr != nil {
			err = errors.Join(err, lerr)
		}
	}

	cerr := e.cam.Close()
	if cerr != nil {
		err = errors.Join(err, fmt.Errorf("could not close camera: %w", cerr))
	} else {
		e.log.Debug(pkg + "camera closed")
	}
	return err
}

// expose applies the settings, runs the light around the exposure and
// captures to path.
func (e *Executor) expose(ctx context.Context, path string, p Parameters) error {
	err := e.cam.SetResolution(p.Width, p.Height)
	if err != nil {
		return fmt.Errorf("could not set resolution: %w", err)
	}

	if p.Manual {
		err = e.cam.SetManualExposure(p.exposure())
		if err != nil {
			return fmt.Errorf("could not set manual exposure: %w", err)
		}
	}

	err = e.light.Set(true)
	if err != nil {
		return err
	}

	if p.Preview > 0 {
		e.log.Info(pkg+"waiting before taking picture", "preview", p.Preview)
		err = e.clock.Sleep(ctx, p.Preview)
		if err != nil {
			return fmt.Errorf("preview interrupted: %w", err)
		}
	}

	if p.Sound && e.cue != nil {
		err = e.cue.Play(e.cuePath)
		if err != nil {
			e.log.Warning(pkg+"could not play cue", "error", err)
		}
	}

	cctx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.log.Info(pkg+"camera capture", "path", path, "camera", e.cam.Name())
	err = e.cam.Capture(cctx, path)
	if err != nil {
		return fmt.Errorf("could not capture: %w", err)
	}

	return e.light.Set(false)
}
