/*
DESCRIPTION
  clock.go provides the Clock interface used at every suspension point of the
  capture controller, a wall clock implementation and a simulated clock for
  exercising schedules without waiting them out.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package clock provides time sources with cancellable sleeps.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock provides the current time and a sleep that returns early if the
// context is done.
type Clock interface {
	Now() time.Time

	// Sleep suspends the caller for d, or until ctx is done in which case the
	// context's error is returned. A non-positive d only checks ctx.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is a Clock backed by the time package.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Sleep implements Clock.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Sim is a simulated Clock. Sleep advances the simulated time immediately,
// so a schedule spanning hours runs in microseconds.
type Sim struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

// NewSim returns a Sim whose current time is start.
func NewSim(start time.Time) *Sim { return &Sim{now: start} }

// Now returns the simulated time.
func (s *Sim) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Sleep advances the simulated time by d unless ctx is already done.
func (s *Sim) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	s.Advance(d)
	return nil
}

// Advance moves the simulated time forward by d. Negative values are ignored.
func (s *Sim) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
}

// Slept returns the durations passed to Sleep, in call order.
func (s *Sim) Slept() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}
