/*
DESCRIPTION
  dht.go provides DHT, a Source of temperature and humidity readings from a
  DHT11/DHT22 sensor driven by the Linux dht11 IIO driver (enabled on a
  Raspberry Pi with the dht11 device tree overlay).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dht provides readings from a DHT temperature and humidity sensor.
package dht

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultDevice is the IIO device directory of the first sensor.
const DefaultDevice = "/sys/bus/iio/devices/iio:device0"

// IIO attribute files. Values are in thousandths of a degree Celsius and
// thousandths of a percent.
const (
	tempFile     = "in_temp_input"
	humidityFile = "in_humidityrelative_input"
	milli        = 1000
)

// DHT reads a DHT sensor through its IIO device directory. Each call to Read
// triggers one conversion; the driver reports a failed conversion as a read
// error.
type DHT struct {
	dir string
}

// New returns a DHT for the IIO device directory dir.
func New(dir string) *DHT { return &DHT{dir: dir} }

// Read returns the temperature in degrees Celsius and relative humidity in
// percent.
func (d *DHT) Read() (temperature, humidity float64, err error) {
	temperature, err = readMilli(filepath.Join(d.dir, tempFile))
	if err != nil {
		return 0, 0, errors.Wrap(err, "could not read temperature")
	}
	humidity, err = readMilli(filepath.Join(d.dir, humidityFile))
	if err != nil {
		return 0, 0, errors.Wrap(err, "could not read humidity")
	}
	return temperature, humidity, nil
}

func readMilli(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad value in %s", path)
	}
	return float64(v) / milli, nil
}
