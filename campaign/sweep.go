/*
DESCRIPTION
  sweep.go provides Sweep, the calibration loop that captures one image per
  shutter speed over a range.

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
	"path/filepath"
	"strconv"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/utils/logging"
)

// Default shutter speed range, in microseconds.
const (
	SweepFrom = 500000
	SweepTo   = 1000000
	SweepStep = 50000
	SweepISO  = 200
)

var errBadSweep = errors.New("invalid shutter speed range")

// Sweep captures Dir/test_<ss>.jpg for each shutter speed ss in [From, To)
// stepping by Step, with manual exposure and the sound cue.
type Sweep struct {
	Capturer Capturer
	Log      logging.Logger

	Dir            string
	From, To, Step int
	Params         capture.Parameters // AWB and Preview are taken from here.
}

// Paths returns the image path of each step of the sweep.
func (s *Sweep) Paths() []string {
	var paths []string
	for ss := s.From; ss < s.To; ss += s.Step {
		paths = append(paths, s.path(ss))
	}
	return paths
}

func (s *Sweep) path(ss int) string {
	return filepath.Join(s.Dir, "test_"+strconv.Itoa(ss)+".jpg")
}

// Run performs the sweep. Failed captures are counted and the sweep goes on;
// a hardware fault stops it.
func (s *Sweep) Run(ctx context.Context) (Summary, error) {
	if s.Step <= 0 || s.From <= 0 || s.To <= s.From {
		return Summary{State: StateIdle}, fmt.Errorf("%w: [%d, %d) step %d", errBadSweep, s.From, s.To, s.Step)
	}

	p := s.Params
	p.Manual = true
	p.ISO = SweepISO
	p.Sound = true

	sum := Summary{State: StateRunning}
	for ss := s.From; ss < s.To; ss += s.Step {
		if ctx.Err() != nil {
			sum.State = StateCancelled
			return sum, nil
		}
		s.Log.Info(pkg+"sweep step", "shutter", ss)
		p.ShutterSpeed = ss
		r := s.Capturer.Capture(ctx, s.path(ss), p)
		sum.add(r)
		if r.Fatal() {
			sum.State = StateFailed
			return sum, r.Err
		}
	}
	sum.State = StateCompleted
	s.Log.Info(pkg+"sweep done", "captures", sum.Captures, "failures", sum.Failures)
	return sum, nil
}
