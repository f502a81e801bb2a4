/*
DESCRIPTION
  cron.go provides Cron, a single timestamped capture followed by one
  temperature reading, for periodic unattended invocation.

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
	"path/filepath"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/sensor"
	"github.com/ausocean/utils/logging"
)

// Cron settings.
const (
	CronTimestamp    = "01-02-2006_15-04-05"
	CronISO          = 800
	CronShutterSpeed = 1000000 // us
	CronLogName      = "temperature.csv"
)

// Sensor reads the temperature and logs it. *sensor.Reader is a Sensor.
type Sensor interface {
	ReadOnce(ctx context.Context, label, logPath string, maxAttempts int) (sensor.Reading, bool)
}

// Cron takes one capture named after the current time and then logs one
// sensor reading labelled with the same time.
type Cron struct {
	Capturer Capturer
	Sensor   Sensor
	Clock    clock.Clock
	Log      logging.Logger

	Dir      string
	BaseName string
	LogPath  string // Temperature log; Dir/temperature.csv if empty.
	Attempts int    // Sensor read attempts; sensor.DefaultAttempts if zero.
	Params   capture.Parameters
}

// CronRun reports what a Cron run did.
type CronRun struct {
	Timestamp string
	Capture   capture.Result
	Reading   sensor.Reading
	HasRead   bool
}

// Run performs the capture and the reading. The reading is attempted even
// if the capture failed; only a hardware fault is returned as an error.
func (c *Cron) Run(ctx context.Context) (CronRun, error) {
	ts := c.Clock.Now().Format(CronTimestamp)
	path := filepath.Join(c.Dir, c.BaseName+"_"+ts+".jpg")

	p := c.Params
	p.Manual = true
	p.ISO = CronISO
	p.ShutterSpeed = CronShutterSpeed
	p.Sound = true

	run := CronRun{Timestamp: ts}
	run.Capture = c.Capturer.Capture(ctx, path, p)
	if run.Capture.Fatal() {
		return run, run.Capture.Err
	}

	logPath := c.LogPath
	if logPath == "" {
		logPath = filepath.Join(c.Dir, CronLogName)
	}
	attempts := c.Attempts
	if attempts == 0 {
		attempts = sensor.DefaultAttempts
	}
	run.Reading, run.HasRead = c.Sensor.ReadOnce(ctx, ts, logPath, attempts)
	c.Log.Info(pkg+"cron run done", "path", path, "success", run.Capture.Success, "reading", run.HasRead)
	return run, nil
}
