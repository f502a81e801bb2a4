/*
DESCRIPTION
  timelapse.go provides Scheduler, which runs a bounded-duration sequence of
  captures at a fixed interval.

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
	"sync"
	"time"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/utils/logging"
)

// Timelapse defaults.
const (
	DefaultDuration = 24 * time.Hour
	DefaultInterval = 10 * time.Minute
)

// Config errors.
var (
	errBadDuration = errors.New("duration must be positive")
	errBadInterval = errors.New("interval must be longer than the preview time")
	errNoBaseName  = errors.New("base name must be set")
)

// Config describes a timelapse campaign.
type Config struct {
	Duration time.Duration
	Interval time.Duration
	BaseName string // Image i is written to BaseName + i + ".jpg".
	Params   capture.Parameters
}

// Validate checks that c describes a campaign that can run.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: %v", errBadDuration, c.Duration)
	}
	if c.Interval <= c.Params.Preview {
		return fmt.Errorf("%w: interval %v, preview %v", errBadInterval, c.Interval, c.Params.Preview)
	}
	if c.BaseName == "" {
		return errNoBaseName
	}
	return c.Params.Validate()
}

// Scheduler runs a timelapse. Ticks fall on fixed wall clock deadlines,
// start + k*Interval, so neither the preview time nor the time a capture
// takes accumulates as drift. A capture that overruns one or more deadlines
// causes those ticks to be skipped rather than taken late in a burst.
type Scheduler struct {
	cfg      Config
	capturer Capturer
	clock    clock.Clock
	log      logging.Logger
	notifier Notifier

	mu    sync.Mutex
	state State
}

// NewScheduler returns a Scheduler that will run cfg using c.
func NewScheduler(cfg Config, c Capturer, clk clock.Clock, l logging.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, capturer: c, clock: clk, log: l}
}

// SetNotifier sets a Notifier to receive progress updates.
func (s *Scheduler) SetNotifier(n Notifier) { s.notifier = n }

// State returns the current state of the Scheduler.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run runs the campaign until its duration has passed or ctx is done. Capture
// failures are counted but do not stop the campaign; only a hardware fault
// does, in which case it is returned. Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context) (Summary, error) {
	err := s.cfg.Validate()
	if err != nil {
		return Summary{State: StateIdle}, fmt.Errorf("invalid campaign: %w", err)
	}

	start := s.clock.Now()
	end := start.Add(s.cfg.Duration)
	s.setState(StateRunning)
	s.log.Info(pkg+"starting timelapse", "duration", s.cfg.Duration, "interval", s.cfg.Interval, "base", s.cfg.BaseName)

	sum := Summary{State: StateRunning}
	var slot int64 // Index of the tick just taken.
	for i := 0; ; i++ {
		if ctx.Err() != nil {
			return s.finish(sum, StateCancelled), nil
		}
		if !s.clock.Now().Before(end) {
			return s.finish(sum, StateCompleted), nil
		}

		path := fmt.Sprintf("%s%d.jpg", s.cfg.BaseName, i)
		s.log.Info(pkg+"taking capture", "n", i)
		r := s.capturer.Capture(ctx, path, s.cfg.Params)
		sum.add(r)
		s.notify(fmt.Sprintf("capture %d: success=%t, %d failed", i, r.Success, sum.Failures))
		if r.Fatal() {
			return s.finish(sum, StateFailed), fmt.Errorf("capture %d: %w", i, r.Err)
		}

		now := s.clock.Now()
		if !now.Before(end) {
			return s.finish(sum, StateCompleted), nil
		}

		next := s.nextSlot(start, now, slot)
		if skipped := next - slot - 1; skipped > 0 {
			s.log.Warning(pkg+"capture overran interval, skipping ticks", "skipped", skipped)
			sum.Skipped += int(skipped)
		}
		slot = next
		deadline := start.Add(time.Duration(slot) * s.cfg.Interval)
		if !deadline.Before(end) {
			return s.finish(sum, StateCompleted), nil
		}

		err = s.clock.Sleep(ctx, deadline.Sub(now))
		if err != nil {
			return s.finish(sum, StateCancelled), nil
		}
	}
}

// nextSlot returns the index of the first tick due at or after now, and after
// the tick last taken.
func (s *Scheduler) nextSlot(start, now time.Time, last int64) int64 {
	elapsed := now.Sub(start)
	iv := s.cfg.Interval
	k := int64(elapsed / iv)
	if elapsed%iv != 0 {
		k++
	}
	if k <= last {
		k = last + 1
	}
	return k
}

func (s *Scheduler) finish(sum Summary, st State) Summary {
	sum.State = st
	s.setState(st)
	s.log.Info(pkg+"timelapse finished", "state", st.String(), "captures", sum.Captures, "failures", sum.Failures, "skipped", sum.Skipped)
	s.notify(fmt.Sprintf("timelapse %s: %d captures, %d failed", st, sum.Captures, sum.Failures))
	return sum
}

func (s *Scheduler) notify(msg string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Status(msg)
	if err != nil {
		s.log.Debug(pkg+"could not notify status", "error", err)
	}
}
