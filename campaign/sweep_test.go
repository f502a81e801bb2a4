/*
DESCRIPTION
  sweep_test.go tests the shutter speed calibration Sweep.

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
	"testing"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/device"
	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

func newSweep(t *testing.T, c Capturer) *Sweep {
	p := capture.DefaultParameters()
	p.AWB = device.AWBCloudy
	p.Preview = 0
	p.ISO = 800
	return &Sweep{
		Capturer: c,
		Log:      (*logging.TestLogger)(t),
		Dir:      "pictures",
		From:     SweepFrom,
		To:       SweepTo,
		Step:     SweepStep,
		Params:   p,
	}
}

func TestSweep(t *testing.T) {
	sim := clock.NewSim(epoch)
	c := &fakeCapturer{clock: sim, fail: map[int]bool{3: true}}
	s := newSweep(t, c)

	got, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := Summary{State: StateCompleted, Captures: 10, Failures: 1}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected summary\nwant: %+v\ngot: %+v", want, got)
	}
	if !cmp.Equal(c.paths, s.Paths()) {
		t.Errorf("unexpected paths\nwant: %v\ngot: %v", s.Paths(), c.paths)
	}
	if c.paths[0] != "pictures/test_500000.jpg" || c.paths[9] != "pictures/test_950000.jpg" {
		t.Errorf("unexpected range: %s to %s", c.paths[0], c.paths[9])
	}

	for i, p := range c.params {
		wantSS := SweepFrom + i*SweepStep
		if p.ShutterSpeed != wantSS || p.ISO != SweepISO || !p.Manual || !p.Sound || p.AWB != device.AWBCloudy {
			t.Errorf("unexpected parameters for step %d: %+v", i, p)
		}
	}
}

func TestSweepCancel(t *testing.T) {
	sim := clock.NewSim(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := &fakeCapturer{clock: sim, onCapture: func(n int) {
		if n == 4 {
			cancel()
		}
	}}

	got, err := newSweep(t, c).Run(ctx)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := Summary{State: StateCancelled, Captures: 5}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected summary\nwant: %+v\ngot: %+v", want, got)
	}
}

func TestSweepBadRange(t *testing.T) {
	s := newSweep(t, &fakeCapturer{clock: clock.NewSim(epoch)})
	s.Step = 0
	_, err := s.Run(context.Background())
	if !errors.Is(err, errBadSweep) {
		t.Errorf("did not get expected error, got: %v", err)
	}
}

func TestSweepFault(t *testing.T) {
	sim := clock.NewSim(epoch)
	c := &fakeCapturer{clock: sim, fatal: map[int]bool{0: true}}
	got, err := newSweep(t, c).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got.State != StateFailed || got.Captures != 1 {
		t.Errorf("unexpected summary: %+v", got)
	}
}
