/*
DESCRIPTION
  blobcam is the capture controller of an unattended camera rig. It takes
  single photos, timelapses, shutter speed calibration sweeps and button
  triggered photos with the light synchronised to each exposure, and logs
  ambient temperature and humidity.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package blobcam is the command line capture controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/blobcam/campaign"
	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/config"
	"github.com/ausocean/blobcam/csvlog"
	"github.com/ausocean/blobcam/device"
	"github.com/ausocean/blobcam/device/cue"
	"github.com/ausocean/blobcam/device/dht"
	"github.com/ausocean/blobcam/device/gpio"
	"github.com/ausocean/blobcam/device/raspistill"
	"github.com/ausocean/blobcam/light"
	"github.com/ausocean/blobcam/sensor"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.3.0"

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Misc constants.
const (
	pkg              = "blobcam: "
	ledDuration      = 30 * time.Second
	temperatureLabel = "test"
	dirPerm          = 0o755
)

func main() {
	vars, showVersion, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Problems found while reading the config are reported to stderr, since
	// the log file location is part of the config.
	cfg := config.Defaults(logging.New(logging.Info, os.Stderr, logSuppress))
	cfg.Update(vars)
	cfgErr := cfg.Validate()

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}

	// Create logger that we call methods on to log, which in turn writes to the
	// lumberjack logger and stderr.
	log := logging.New(cfg.LogLevel, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	cfg.Logger = log

	if cfgErr != nil {
		log.Fatal(pkg+"invalid configuration", "error", cfgErr)
	}
	log.Info("starting blobcam", "version", version, "mode", cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, &cfg, log)
	if err != nil {
		log.Fatal(pkg+"aborted", "mode", cfg.Mode, "error", err)
	}
	log.Info("blobcam finished", "mode", cfg.Mode)
}

// rig holds the peripherals a mode runs against.
type rig struct {
	gpio   gpio.GPIO
	camera device.Camera
	cue    capture.Cue
	sensor sensor.Source
	clock  clock.Clock
}

// newRig initialises the rig's hardware.
func newRig(cfg *config.Config, log logging.Logger) (*rig, error) {
	log.Debug("initialising GPIO")
	g, err := gpio.NewEmbd(log)
	if err != nil {
		return nil, fmt.Errorf("could not initialise GPIO: %w", err)
	}
	return &rig{
		gpio:   g,
		camera: raspistill.New(log),
		cue:    cue.New(log),
		sensor: dht.New(cfg.IIODevice),
		clock:  clock.Real{},
	}, nil
}

func (r *rig) close(log logging.Logger) {
	err := r.gpio.Close()
	if err != nil {
		log.Warning(pkg+"could not close GPIO", "error", err)
	}
}

// run sets up the hardware and performs the configured mode.
func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	r, err := newRig(cfg, log)
	if err != nil {
		return err
	}
	defer r.close(log)
	return dispatch(ctx, cfg, log, r)
}

// dispatch performs the configured mode on r. Only faults that must stop the
// process are returned; failed captures and readings are logged and
// otherwise ignored.
func dispatch(ctx context.Context, cfg *config.Config, log logging.Logger, r *rig) error {
	lc, err := light.New(r.gpio, cfg.LEDPin, log)
	if err != nil {
		return err
	}

	if cfg.Mode == config.ModeLED {
		return holdLight(ctx, lc, r.clock, log)
	}

	err = lc.Off()
	if err != nil {
		return err
	}

	reader := sensor.NewReader(r.sensor, log, sensor.WithClock(r.clock))
	if cfg.Mode == config.ModeTemperature {
		reader.ReadOnce(ctx, temperatureLabel, cfg.TemperatureLog, sensor.DefaultAttempts)
		return nil
	}

	err = os.MkdirAll(cfg.Directory, dirPerm)
	if err != nil {
		log.Error(pkg+"could not create image directory", "dir", cfg.Directory, "error", err)
	}

	exec, err := capture.NewExecutor(
		r.camera,
		lc,
		log,
		capture.WithClock(r.clock),
		capture.WithCue(r.cue, cfg.CuePath),
		capture.WithEvents(csvlog.New(cfg.EventLog(), capture.EventHeader...)),
		capture.WithTimeout(cfg.CaptureTimeout),
	)
	if err != nil {
		return fmt.Errorf("could not create capture executor: %w", err)
	}

	n := newNotifier(log)
	defer n.stopping()

	switch cfg.Mode {
	case config.ModePhoto:
		res := exec.Capture(ctx, cfg.PhotoPath(), cfg.Parameters())
		if res.Fatal() {
			return res.Err
		}
		return nil

	case config.ModeTimelapse:
		s := campaign.NewScheduler(campaign.Config{
			Duration: cfg.Duration,
			Interval: cfg.Interval,
			BaseName: cfg.TimelapseBase(),
			Params:   cfg.Parameters(),
		}, exec, r.clock, log)
		s.SetNotifier(n)
		n.ready()
		sum, err := s.Run(ctx)
		logSummary(log, sum)
		return err

	case config.ModeTest:
		s := &campaign.Sweep{
			Capturer: exec,
			Log:      log,
			Dir:      cfg.Directory,
			From:     campaign.SweepFrom,
			To:       campaign.SweepTo,
			Step:     campaign.SweepStep,
			Params:   cfg.Parameters(),
		}
		sum, err := s.Run(ctx)
		logSummary(log, sum)
		return err

	case config.ModeCron:
		c := &campaign.Cron{
			Capturer: exec,
			Sensor:   reader,
			Clock:    r.clock,
			Log:      log,
			Dir:      cfg.Directory,
			BaseName: cfg.FileName,
			Params:   cfg.Parameters(),
		}
		_, err := c.Run(ctx)
		return err

	case config.ModeButton:
		b := &campaign.ButtonWatcher{
			GPIO:     r.gpio,
			Capturer: exec,
			Clock:    r.clock,
			Log:      log,
			Pin:      cfg.ButtonPin,
			PowerPin: cfg.ButtonPowerPin,
			Delay:    campaign.DefaultButtonDelay,
			Poll:     campaign.DefaultButtonPoll,
			Path:     cfg.PhotoPath(),
			Params:   cfg.Parameters(),
		}
		if cfg.IsSet(config.KeyDuration) {
			b.Delay = cfg.Duration
		}
		n.ready()
		sum, err := b.Run(ctx)
		logSummary(log, sum)
		return err

	default:
		return fmt.Errorf("%w: %q", config.ErrBadMode, cfg.Mode)
	}
}

// holdLight turns the light on for ledDuration, or until ctx is done, for
// checking the wiring.
func holdLight(ctx context.Context, lc *light.Controller, c clock.Clock, log logging.Logger) error {
	log.Info(pkg+"holding light on", "duration", ledDuration)
	err := lc.On()
	if err != nil {
		return err
	}
	err = c.Sleep(ctx, ledDuration)
	if err != nil {
		log.Info(pkg+"light test interrupted", "error", err)
	}
	return lc.Off()
}

func logSummary(log logging.Logger, s campaign.Summary) {
	log.Info(pkg+"summary", "state", s.State.String(), "captures", s.Captures, "failures", s.Failures, "skipped", s.Skipped)
}
