/*
DESCRIPTION
  retry.go provides Policy, a bounded retry with a fixed backoff for flaky
  blocking reads.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package retry provides bounded retries with a fixed backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ausocean/blobcam/clock"
	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted is returned, wrapping the last attempt's error, when every
// attempt failed.
var ErrExhausted = errors.New("attempts exhausted")

// Policy describes a bounded retry.
type Policy struct {
	Attempts int           // Maximum number of attempts; below 1 nothing is attempted.
	Backoff  time.Duration // Wait between a failed attempt and the next.
	Clock    clock.Clock   // Time source for the backoff; nil means clock.Real.
}

// Do calls fn until it returns nil or the attempts are used up. fn is passed
// the attempt number starting at 1. There is no wait after the final attempt.
// If ctx is done during a backoff, the context's error is returned. A Policy
// allowing no attempts returns ErrExhausted without calling fn.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	if p.Attempts < 1 {
		return fmt.Errorf("%w: no attempts allowed", ErrExhausted)
	}
	c := p.Clock
	if c == nil {
		c = clock.Real{}
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Backoff), uint64(p.Attempts-1)),
		ctx,
	)
	var n int
	err := backoff.RetryNotifyWithTimer(
		func() error {
			n++
			return fn(n)
		},
		b,
		nil,
		&clockTimer{ctx: ctx, clock: c, c: make(chan time.Time, 1)},
	)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w after %d: %w", ErrExhausted, n, err)
	}
}

// clockTimer is a backoff.Timer driven by a clock.Clock. Start blocks for the
// duration, or until ctx is done, and then fires.
type clockTimer struct {
	ctx   context.Context
	clock clock.Clock
	c     chan time.Time
}

func (t *clockTimer) Start(d time.Duration) {
	if t.clock.Sleep(t.ctx, d) != nil {
		return
	}
	select {
	case t.c <- t.clock.Now():
	default:
	}
}

func (t *clockTimer) Stop() {}

func (t *clockTimer) C() <-chan time.Time { return t.c }
