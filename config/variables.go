/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ausocean/blobcam/campaign"
	"github.com/ausocean/blobcam/device"
	"github.com/ausocean/blobcam/device/cue"
	"github.com/ausocean/blobcam/device/dht"
	"github.com/ausocean/utils/logging"
)

// Config map keys. These are also the command line flag names.
const (
	KeyMode           = "mode"
	KeyDirectory      = "directory"
	KeyFileName       = "file_name"
	KeyAWB            = "awb-mode"
	KeySound          = "sound"
	KeyPreview        = "preview"
	KeyDuration       = "duration"
	KeyInterval       = "interval"
	KeyVerbosity      = "verbosity"
	KeyLogPath        = "log-path"
	KeyLEDPin         = "led-pin"
	KeyButtonPin      = "button-pin"
	KeyButtonPowerPin = "button-power-pin"
	KeyTemperatureLog = "temperature-log"
	KeyIIODevice      = "iio-device"
	KeyCue            = "cue"
	KeyCaptureTimeout = "capture-timeout"
)

// Config map parameter types.
const (
	typeString   = "string"
	typeInt      = "int"
	typeBool     = "bool"
	typeSeconds  = "seconds"
	typeDuration = "duration"
)

// Default variable values.
const (
	defaultMode           = ModePhoto
	defaultDirectory      = "pictures"
	defaultFileName       = "blob"
	defaultAWB            = device.AWBAuto
	defaultDuration       = campaign.DefaultDuration
	defaultInterval       = campaign.DefaultInterval
	defaultVerbosity      = logging.Info
	defaultLogPath        = "/var/log/blobcam/blobcam.log"
	defaultLEDPin         = 17
	defaultButtonPin      = 27
	defaultButtonPowerPin = -1
	defaultTemperatureLog = "/mnt/key/temperatures.csv"
	defaultIIODevice      = dht.DefaultDevice
	defaultCue            = cue.DefaultPath
	defaultCaptureTimeout = 2 * time.Minute

	// EventLogName is the name of the capture event log in the image directory.
	EventLogName = "evenements.csv"
)

// Pin numbers are BCM numbers on the Raspberry Pi header.
const maxPin = 27

// verbosities maps the numeric verbosity levels accepted on the command line
// to logging levels.
var verbosities = map[int]int8{
	10: logging.Debug,
	20: logging.Info,
	30: logging.Warning,
	40: logging.Error,
	50: logging.Fatal,
}

// Variables describes the variables that can be used to configure blobcam.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyMode,
		Type:   "enum:" + strings.Join(Modes, ","),
		Update: func(c *Config, v string) { c.Mode = strings.ToLower(v) },
		Validate: func(c *Config) {
			if c.Mode == "" {
				c.LogInvalidField(KeyMode, defaultMode)
				c.Mode = defaultMode
			}
		},
	},
	{
		Name:   KeyDirectory,
		Type:   typeString,
		Update: func(c *Config, v string) { c.Directory = v },
		Validate: func(c *Config) {
			if c.Directory == "" {
				c.LogInvalidField(KeyDirectory, defaultDirectory)
				c.Directory = defaultDirectory
			}
		},
	},
	{
		Name:   KeyFileName,
		Type:   typeString,
		Update: func(c *Config, v string) { c.FileName = v },
		Validate: func(c *Config) {
			if c.FileName == "" || strings.ContainsRune(c.FileName, '/') {
				c.LogInvalidField(KeyFileName, defaultFileName)
				c.FileName = defaultFileName
			}
		},
	},
	{
		Name:   KeyAWB,
		Type:   "enum:" + strings.Join(device.AWBModes, ","),
		Update: func(c *Config, v string) { c.AWB = device.AWB(strings.ToLower(v)) },
		Validate: func(c *Config) {
			if !c.AWB.Valid() {
				c.LogInvalidField(KeyAWB, defaultAWB)
				c.AWB = defaultAWB
			}
		},
	},
	{
		Name:   KeySound,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Sound = parseBool(KeySound, v, c) },
	},
	{
		Name:   KeyPreview,
		Type:   typeSeconds,
		Update: func(c *Config, v string) { c.Preview = parseSeconds(KeyPreview, v, c) },
		Validate: func(c *Config) {
			if c.Preview < 0 {
				c.LogInvalidField(KeyPreview, 0)
				c.Preview = 0
			}
		},
	},
	{
		Name:     KeyDuration,
		Type:     typeSeconds,
		Update:   func(c *Config, v string) { c.Duration = parseSeconds(KeyDuration, v, c) },
		Validate: func(c *Config) { c.Duration = notPositive(KeyDuration, c.Duration, c, defaultDuration) },
	},
	{
		Name:     KeyInterval,
		Type:     typeSeconds,
		Update:   func(c *Config, v string) { c.Interval = parseSeconds(KeyInterval, v, c) },
		Validate: func(c *Config) { c.Interval = notPositive(KeyInterval, c.Interval, c, defaultInterval) },
	},
	{
		Name: KeyVerbosity,
		Type: "enum:10,20,30,40,50",
		Update: func(c *Config, v string) {
			lvl, ok := verbosities[parseInt(KeyVerbosity, v, c)]
			if !ok {
				c.Logger.Warning("invalid verbosity, defaulting", "value", v, "default", defaultVerbosity)
				lvl = defaultVerbosity
			}
			c.LogLevel = lvl
		},
		Validate: func(c *Config) {
			if c.LogLevel < logging.Debug || c.LogLevel > logging.Fatal {
				c.LogInvalidField(KeyVerbosity, defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLogPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.LogPath = v },
		Validate: func(c *Config) {
			if c.LogPath == "" {
				c.LogInvalidField(KeyLogPath, defaultLogPath)
				c.LogPath = defaultLogPath
			}
		},
	},
	{
		Name:     KeyLEDPin,
		Type:     typeInt,
		Update:   func(c *Config, v string) { c.LEDPin = parseInt(KeyLEDPin, v, c) },
		Validate: func(c *Config) { c.LEDPin = badPin(KeyLEDPin, c.LEDPin, c, defaultLEDPin) },
	},
	{
		Name:     KeyButtonPin,
		Type:     typeInt,
		Update:   func(c *Config, v string) { c.ButtonPin = parseInt(KeyButtonPin, v, c) },
		Validate: func(c *Config) { c.ButtonPin = badPin(KeyButtonPin, c.ButtonPin, c, defaultButtonPin) },
	},
	{
		Name:   KeyButtonPowerPin,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.ButtonPowerPin = parseInt(KeyButtonPowerPin, v, c) },
		Validate: func(c *Config) {
			if c.ButtonPowerPin == defaultButtonPowerPin {
				return
			}
			c.ButtonPowerPin = badPin(KeyButtonPowerPin, c.ButtonPowerPin, c, defaultButtonPowerPin)
		},
	},
	{
		Name:   KeyTemperatureLog,
		Type:   typeString,
		Update: func(c *Config, v string) { c.TemperatureLog = v },
		Validate: func(c *Config) {
			if c.TemperatureLog == "" {
				c.LogInvalidField(KeyTemperatureLog, defaultTemperatureLog)
				c.TemperatureLog = defaultTemperatureLog
			}
		},
	},
	{
		Name:   KeyIIODevice,
		Type:   typeString,
		Update: func(c *Config, v string) { c.IIODevice = v },
		Validate: func(c *Config) {
			if c.IIODevice == "" {
				c.LogInvalidField(KeyIIODevice, defaultIIODevice)
				c.IIODevice = defaultIIODevice
			}
		},
	},
	{
		Name:   KeyCue,
		Type:   typeString,
		Update: func(c *Config, v string) { c.CuePath = v },
		Validate: func(c *Config) {
			if c.CuePath == "" {
				c.LogInvalidField(KeyCue, defaultCue)
				c.CuePath = defaultCue
			}
		},
	},
	{
		Name:   KeyCaptureTimeout,
		Type:   typeDuration,
		Update: func(c *Config, v string) { c.CaptureTimeout = parseDuration(KeyCaptureTimeout, v, c) },
		Validate: func(c *Config) {
			if c.CaptureTimeout < 0 {
				c.LogInvalidField(KeyCaptureTimeout, defaultCaptureTimeout)
				c.CaptureTimeout = defaultCaptureTimeout
			}
		},
	},
}

// Defaults returns a Config holding the default value of every variable,
// logging to l.
func Defaults(l logging.Logger) Config {
	return Config{
		Mode:           defaultMode,
		Directory:      defaultDirectory,
		FileName:       defaultFileName,
		AWB:            defaultAWB,
		Duration:       defaultDuration,
		Interval:       defaultInterval,
		LogLevel:       defaultVerbosity,
		LogPath:        defaultLogPath,
		LEDPin:         defaultLEDPin,
		ButtonPin:      defaultButtonPin,
		ButtonPowerPin: defaultButtonPowerPin,
		TemperatureLog: defaultTemperatureLog,
		IIODevice:      defaultIIODevice,
		CuePath:        defaultCue,
		CaptureTimeout: defaultCaptureTimeout,
		Logger:         l,
	}
}

func isVariable(name string) bool {
	for _, v := range Variables {
		if v.Name == name {
			return true
		}
	}
	return false
}

func parseInt(n, v string, c *Config) int {
	_v, err := strconv.Atoi(v)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected integer for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true", "1":
		b = true
	case "false", "0":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

// parseSeconds parses a whole number of seconds, as the original command
// line did, or a Go duration string.
func parseSeconds(n, v string, c *Config) time.Duration {
	if s, err := strconv.Atoi(v); err == nil {
		return time.Duration(s) * time.Second
	}
	return parseDuration(n, v, c)
}

func parseDuration(n, v string, c *Config) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected duration for param %s", n), "value", v)
		return -1
	}
	return d
}

func notPositive(n string, v time.Duration, c *Config, def time.Duration) time.Duration {
	if v <= 0 {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}

func badPin(n string, v int, c *Config, def int) int {
	if v < 0 || v > maxPin {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
