/*
DESCRIPTION
  campaign.go provides the types shared by the controller's capture loops:
  the Capturer they drive, their lifecycle State and the Summary they return.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package campaign provides the scheduling loops that drive captures: the
// timelapse Scheduler, the manual ButtonWatcher, the calibration Sweep and
// the periodic Cron capture.
package campaign

import (
	"context"

	"github.com/ausocean/blobcam/capture"
)

// To indicate package when logging.
const pkg = "campaign: "

// Capturer performs one capture. *capture.Executor is a Capturer.
type Capturer interface {
	Capture(ctx context.Context, path string, p capture.Parameters) capture.Result
}

// Notifier receives human readable status updates, e.g. for a service
// manager.
type Notifier interface {
	Status(msg string) error
}

// State is the lifecycle state of a capture loop.
type State int

// Loop states.
const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Summary describes how a capture loop ended.
type Summary struct {
	State    State
	Captures int // Capture attempts.
	Failures int // Attempts that did not succeed.
	Skipped  int // Timelapse ticks missed because a capture overran.
}

// add accounts for one capture result.
func (s *Summary) add(r capture.Result) {
	s.Captures++
	if !r.Success {
		s.Failures++
	}
}
