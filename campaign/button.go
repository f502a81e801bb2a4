/*
DESCRIPTION
  button.go provides ButtonWatcher, which takes a capture each time a push
  button produces a rising edge, for a bounded session.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/device/gpio"
	"github.com/ausocean/utils/logging"
)

// Button watcher defaults.
const (
	DefaultButtonDelay = 30 * time.Second
	DefaultButtonPoll  = time.Second
	DefaultButtonPath  = "pictures/button.jpg"
	NoPin              = -1
)

// ButtonWatcher waits for presses of a button wired to an input pin and
// captures an image for each. Presses during a capture are not seen, since
// the capture runs synchronously between edge waits.
type ButtonWatcher struct {
	GPIO     gpio.GPIO
	Capturer Capturer
	Clock    clock.Clock
	Log      logging.Logger

	Pin      int           // Input pin the button pulls high.
	PowerPin int           // Output pin supplying the button, or NoPin.
	Delay    time.Duration // Length of the session.
	Poll     time.Duration // Edge wait timeout; bounds how late the session ends.
	Path     string
	Params   capture.Parameters
}

// Run watches the button until the session delay has passed or ctx is done.
// Edge wait failures are hardware faults and end the session with an error.
func (b *ButtonWatcher) Run(ctx context.Context) (Summary, error) {
	poll := b.Poll
	if poll <= 0 {
		poll = DefaultButtonPoll
	}

	if b.PowerPin != NoPin {
		err := b.GPIO.ConfigureOutput(b.PowerPin)
		if err == nil {
			err = b.GPIO.Write(b.PowerPin, gpio.High)
		}
		if err != nil {
			return Summary{State: StateFailed}, fmt.Errorf("could not power button: %w", err)
		}
		defer b.unpower()
	}
	err := b.GPIO.ConfigureInput(b.Pin)
	if err != nil {
		return Summary{State: StateFailed}, fmt.Errorf("could not configure button: %w", err)
	}

	end := b.Clock.Now().Add(b.Delay)
	b.Log.Info(pkg+"press button to take a picture", "pin", b.Pin, "session", b.Delay)

	sum := Summary{State: StateRunning}
	for b.Clock.Now().Before(end) {
		edge, err := b.GPIO.WaitForRisingEdge(ctx, b.Pin, poll)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			sum.State = StateCancelled
			b.Log.Info(pkg+"button session cancelled", "captures", sum.Captures)
			return sum, nil
		case err != nil:
			sum.State = StateFailed
			return sum, fmt.Errorf("could not wait for button: %w", err)
		case !edge:
			continue
		}

		b.Log.Debug(pkg+"button pressed", "pin", b.Pin)
		r := b.Capturer.Capture(ctx, b.Path, b.Params)
		sum.add(r)
		if r.Fatal() {
			sum.State = StateFailed
			return sum, r.Err
		}
	}

	sum.State = StateCompleted
	b.Log.Info(pkg+"button session over", "captures", sum.Captures, "failures", sum.Failures)
	return sum, nil
}

// unpower drops the button supply so the rig is left quiescent.
func (b *ButtonWatcher) unpower() {
	err := b.GPIO.Write(b.PowerPin, gpio.Low)
	if err != nil {
		b.Log.Warning(pkg+"could not unpower button", "pin", b.PowerPin, "error", err)
	}
}
