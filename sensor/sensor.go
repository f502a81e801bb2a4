/*
DESCRIPTION
  sensor.go provides Reader, which acquires one temperature and humidity
  sample with bounded retry and appends it to a delimited log.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sensor provides acquisition and logging of ambient temperature and
// humidity readings.
package sensor

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/csvlog"
	"github.com/ausocean/blobcam/retry"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "sensor: "

// Defaults.
const (
	DefaultAttempts = 10
	DefaultBackoff  = time.Second
)

// Header is the header row of the temperature log.
var Header = []string{"Timestamp", "Temperature", "Humidity"}

var errNoData = errors.New("sensor returned no data")

// Source performs one blocking read of a temperature and humidity sensor.
// An error means the read produced no data.
type Source interface {
	Read() (temperature, humidity float64, err error)
}

// Reading is one temperature (degrees Celsius) and relative humidity
// (percent) sample.
type Reading struct {
	Label       string
	Temperature float64
	Humidity    float64
}

// Row returns r as a temperature log row.
func (r Reading) Row() []string {
	return []string{
		r.Label,
		strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		strconv.FormatFloat(r.Humidity, 'f', -1, 64),
	}
}

// Reader acquires readings from a Source.
type Reader struct {
	src     Source
	log     logging.Logger
	clock   clock.Clock
	backoff time.Duration
}

// NewReader returns a new Reader for src. Options may be used to set the
// clock and backoff.
func NewReader(src Source, l logging.Logger, options ...func(*Reader)) *Reader {
	r := &Reader{src: src, log: l, clock: clock.Real{}, backoff: DefaultBackoff}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// WithClock sets the clock used for the backoff between attempts.
func WithClock(c clock.Clock) func(*Reader) {
	return func(r *Reader) { r.clock = c }
}

// WithBackoff sets the wait between failed attempts.
func WithBackoff(d time.Duration) func(*Reader) {
	return func(r *Reader) { r.backoff = d }
}

// ReadOnce tries up to maxAttempts reads and returns the first valid reading.
// On success the reading is appended to the log at logPath, unless logPath is
// empty. If every attempt fails, false is returned and nothing is written;
// this is not treated as an error since ambient sensors are known to be noisy.
// A maxAttempts below 1 reads nothing.
func (r *Reader) ReadOnce(ctx context.Context, label, logPath string, maxAttempts int) (Reading, bool) {
	r.log.Debug(pkg+"reading temperature", "attempts", maxAttempts)

	var reading Reading
	p := retry.Policy{Attempts: maxAttempts, Backoff: r.backoff, Clock: r.clock}
	err := p.Do(ctx, func(attempt int) error {
		t, h, err := r.src.Read()
		if err == nil && h == 0 {
			err = errNoData
		}
		if err != nil {
			r.log.Debug(pkg+"doing another loop", "attempt", attempt, "error", err)
			return err
		}
		reading = Reading{Label: label, Temperature: t, Humidity: h}
		return nil
	})
	if err != nil {
		r.log.Warning(pkg+"no reading obtained", "error", err)
		return Reading{}, false
	}
	r.log.Info(pkg+"got reading", "temperature", reading.Temperature, "humidity", reading.Humidity)

	if logPath == "" {
		return reading, true
	}
	r.log.Debug(pkg+"writing row", "path", logPath, "row", reading.Row())
	err = csvlog.New(logPath, Header...).Append(reading.Row()...)
	if err != nil {
		r.log.Error(pkg+"could not log reading", "path", logPath, "error", err)
	}
	return reading, true
}
