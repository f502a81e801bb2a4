/*
DESCRIPTION
  flags.go defines the blobcam command line and collects the flags given into
  a config variable map.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"flag"
	"strconv"
	"strings"

	"github.com/ausocean/blobcam/config"
	"github.com/ausocean/blobcam/device"
)

const versionFlag = "version"

// shorthands maps short flag names to config keys.
var shorthands = map[string]string{
	"m": config.KeyMode,
	"d": config.KeyDirectory,
	"f": config.KeyFileName,
	"p": config.KeyPreview,
	"v": config.KeyVerbosity,
}

// usage holds the help text of each config flag.
var usage = map[string]string{
	config.KeyMode:           "mode, one of " + strings.Join(config.Modes, ", "),
	config.KeyDirectory:      "directory for images and the event log",
	config.KeyFileName:       "base file name of images",
	config.KeyAWB:            "white balance mode, one of " + strings.Join(device.AWBModes, ", "),
	config.KeyPreview:        "seconds to wait with the light on before each capture",
	config.KeyDuration:       "timelapse duration in seconds (button session length in button mode)",
	config.KeyInterval:       "seconds between timelapse captures",
	config.KeyVerbosity:      "log verbosity: 10 debug, 20 info, 30 warning, 40 error, 50 fatal",
	config.KeyLogPath:        "log file path",
	config.KeyLEDPin:         "BCM pin driving the light",
	config.KeyButtonPin:      "BCM pin of the capture button",
	config.KeyButtonPowerPin: "BCM pin powering the capture button, -1 for none",
	config.KeyTemperatureLog: "temperature log written in temperature mode",
	config.KeyIIODevice:      "sysfs directory of the DHT11 IIO device",
	config.KeyCue:            "WAV file played as the sound cue",
	config.KeyCaptureTimeout: "maximum duration of one camera capture, e.g. 2m; 0 for none",
}

// parseFlags parses args and returns the config variables that were set
// explicitly, keyed by their long names.
func parseFlags(fs *flag.FlagSet, args []string) (vars map[string]string, showVersion bool, err error) {
	def := config.Defaults(nil)
	defaults := map[string]string{
		config.KeyMode:           def.Mode,
		config.KeyDirectory:      def.Directory,
		config.KeyFileName:       def.FileName,
		config.KeyAWB:            string(def.AWB),
		config.KeyPreview:        "0",
		config.KeyDuration:       def.Duration.String(),
		config.KeyInterval:       def.Interval.String(),
		config.KeyVerbosity:      "20",
		config.KeyLogPath:        def.LogPath,
		config.KeyLEDPin:         strconv.Itoa(def.LEDPin),
		config.KeyButtonPin:      strconv.Itoa(def.ButtonPin),
		config.KeyButtonPowerPin: strconv.Itoa(def.ButtonPowerPin),
		config.KeyTemperatureLog: def.TemperatureLog,
		config.KeyIIODevice:      def.IIODevice,
		config.KeyCue:            def.CuePath,
		config.KeyCaptureTimeout: def.CaptureTimeout.String(),
	}
	for name, u := range usage {
		fs.String(name, defaults[name], u)
	}
	for short, long := range shorthands {
		fs.String(short, defaults[long], "shorthand for -"+long)
	}
	fs.Bool(config.KeySound, false, "play the sound cue before each capture")
	version := fs.Bool(versionFlag, false, "show version")

	err = fs.Parse(args)
	if err != nil {
		return nil, false, err
	}

	vars = make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := shorthands[name]; ok {
			name = long
		}
		if name != versionFlag {
			vars[name] = f.Value.String()
		}
	})
	return vars, *version, nil
}
