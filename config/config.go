/*
DESCRIPTION
  config.go provides the configuration of a blobcam invocation: the mode to
  run, where to write images and logs, exposure overrides, campaign timing and
  pin assignments.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for blobcam.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/device"
	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/sliceutils"
)

// Modes of operation. Exactly one runs per invocation.
const (
	ModePhoto       = "photo"
	ModeTimelapse   = "timelapse"
	ModeTest        = "test"
	ModeLED         = "led"
	ModeCron        = "cron"
	ModeTemperature = "temperature"
	ModeButton      = "button"
)

// Modes holds the valid modes.
var Modes = []string{ModePhoto, ModeTimelapse, ModeTest, ModeLED, ModeCron, ModeTemperature, ModeButton}

// Config errors. These are not defaulted since guessing would run the wrong
// job unattended.
var (
	ErrBadMode     = errors.New("unknown mode")
	ErrBadInterval = errors.New("interval must be longer than the preview time")
)

// Config provides the settings of one invocation. Default values for unset
// or invalid fields are applied by Validate and are defined in variables.go.
type Config struct {
	// Mode selects what to do; one of Modes.
	Mode string

	Directory string // Directory images and the event log are written to.
	FileName  string // Base name of images.

	// AWB is the white balance mode. Photo, timelapse and button captures use
	// sunlight unless this is set explicitly; test and cron captures always
	// use it.
	AWB device.AWB

	Sound bool // Play the audio cue before each capture.

	// Preview is the settle time before the shutter is released. As with AWB,
	// photo, timelapse and button captures keep their default of two seconds
	// unless this is set explicitly.
	Preview time.Duration

	Duration time.Duration // Length of a timelapse campaign.
	Interval time.Duration // Time between timelapse captures.

	// LogLevel is the logging verbosity. Valid values are defined by enums
	// from the logging package: logging.Debug, logging.Info, logging.Warning,
	// logging.Error, logging.Fatal.
	LogLevel int8
	LogPath  string

	LEDPin         int // Output pin driving the light.
	ButtonPin      int // Input pin of the manual capture button.
	ButtonPowerPin int // Output pin powering the button, or -1 for none.

	// TemperatureLog is the log written by temperature mode. Cron mode logs
	// to temperature.csv in Directory.
	TemperatureLog string
	IIODevice      string // Sysfs directory of the DHT11 IIO device.

	CuePath        string        // WAV file played as the sound cue.
	CaptureTimeout time.Duration // Bound on a single camera capture; 0 for none.

	// Logger must be set for Update and Validate to report problems.
	Logger logging.Logger

	set map[string]bool // Keys given to Update.
}

// Validate checks the config fields, defaulting and logging any that are
// unset or invalid. An error is returned only for problems that cannot be
// defaulted.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}

	if !sliceutils.ContainsString(Modes, c.Mode) {
		return fmt.Errorf("%w: %q", ErrBadMode, c.Mode)
	}
	if c.Mode == ModeTimelapse && c.Interval <= c.Parameters().Preview {
		return fmt.Errorf("%w: interval %v", ErrBadInterval, c.Interval)
	}
	return nil
}

// Update takes a map of variable names to values, parses the values and sets
// the corresponding fields. Unknown names are logged and ignored.
func (c *Config) Update(vars map[string]string) {
	if c.set == nil {
		c.set = make(map[string]bool)
	}
	for name := range vars {
		if !isVariable(name) {
			c.Logger.Warning("unknown config variable", "name", name)
		}
	}
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
			c.set[value.Name] = true
		}
	}
}

// IsSet returns true if the named variable was given to Update.
func (c *Config) IsSet(name string) bool { return c.set[name] }

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// Parameters returns the capture parameters for the configured mode.
func (c *Config) Parameters() capture.Parameters {
	p := capture.DefaultParameters()
	p.Sound = c.Sound
	switch c.Mode {
	case ModeTest, ModeCron:
		p.AWB = c.AWB
		p.Preview = c.Preview
	default:
		if c.IsSet(KeyAWB) {
			p.AWB = c.AWB
		}
		if c.IsSet(KeyPreview) {
			p.Preview = c.Preview
		}
	}
	return p
}

// PhotoPath returns the path of a single photo.
func (c *Config) PhotoPath() string {
	return filepath.Join(c.Directory, c.FileName+".jpg")
}

// TimelapseBase returns the prefix of timelapse image paths.
func (c *Config) TimelapseBase() string {
	return filepath.Join(c.Directory, c.FileName+"_")
}

// EventLog returns the path of the capture event log.
func (c *Config) EventLog() string {
	return filepath.Join(c.Directory, EventLogName)
}
