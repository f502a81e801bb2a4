/*
DESCRIPTION
  campaign_test.go provides the fakes shared by the campaign tests.

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
	"sync"
	"time"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/device/gpio"
)

var (
	epoch       = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	errShot     = errors.New("capture failed")
	errWireLoss = errors.New("line write failed")
)

// fakeCapturer records captures against a simulated clock. Each capture
// costs its preview time plus any extra cost configured for it.
type fakeCapturer struct {
	clock *clock.Sim
	cost  map[int]time.Duration
	fail  map[int]bool
	fatal map[int]bool

	// onCapture is called after capture n completes.
	onCapture func(n int)

	mu     sync.Mutex
	times  []time.Duration // Offsets from epoch at which captures started.
	paths  []string
	params []capture.Parameters
}

func (c *fakeCapturer) Capture(ctx context.Context, path string, p capture.Parameters) capture.Result {
	c.mu.Lock()
	n := len(c.times)
	c.times = append(c.times, c.clock.Now().Sub(epoch))
	c.paths = append(c.paths, path)
	c.params = append(c.params, p)
	c.mu.Unlock()

	c.clock.Advance(p.Preview + c.cost[n])
	if c.onCapture != nil {
		c.onCapture(n)
	}

	switch {
	case c.fatal[n]:
		return capture.Result{Path: path, Err: &gpio.HardwareFault{Pin: 17, Op: "write", Err: errWireLoss}}
	case c.fail[n]:
		return capture.Result{Path: path, Err: errShot}
	default:
		return capture.Result{Path: path, Success: true}
	}
}
