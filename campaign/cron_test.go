/*
DESCRIPTION
  cron_test.go tests the Cron capture and temperature reading.

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
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/ausocean/blobcam/capture"
	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/blobcam/sensor"
	"github.com/ausocean/utils/logging"
)

// flakySensor fails a set number of reads before returning its values.
type flakySensor struct {
	failures int
	reads    int
	values   [][2]float64
}

func (s *flakySensor) Read() (float64, float64, error) {
	s.reads++
	if s.reads <= s.failures {
		return 0, 0, errors.New("checksum mismatch")
	}
	v := s.values[s.reads-s.failures-1]
	return v[0], v[1], nil
}

func newCron(t *testing.T, dir string, sim *clock.Sim, c Capturer, src sensor.Source) *Cron {
	log := (*logging.TestLogger)(t)
	p := capture.DefaultParameters()
	p.Preview = 0
	return &Cron{
		Capturer: c,
		Sensor:   sensor.NewReader(src, log, sensor.WithClock(sim)),
		Clock:    sim,
		Log:      log,
		Dir:      dir,
		BaseName: "blob",
		Params:   p,
	}
}

func TestCron(t *testing.T) {
	dir := t.TempDir()
	sim := clock.NewSim(epoch)
	c := &fakeCapturer{clock: sim}
	src := &flakySensor{failures: 2, values: [][2]float64{{21.5, 63}, {30, 10}}}

	run, err := newCron(t, dir, sim, c, src).Run(context.Background())
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if run.Timestamp != "05-01-2024_12-00-00" {
		t.Errorf("unexpected timestamp: %s", run.Timestamp)
	}

	pat := regexp.MustCompile(`^` + regexp.QuoteMeta(dir) + `/blob_\d{2}-\d{2}-\d{4}_\d{2}-\d{2}-\d{2}\.jpg$`)
	if len(c.paths) != 1 || !pat.MatchString(c.paths[0]) {
		t.Errorf("unexpected capture paths: %v", c.paths)
	}
	p := c.params[0]
	if p.ISO != CronISO || p.ShutterSpeed != CronShutterSpeed || !p.Sound || !p.Manual {
		t.Errorf("unexpected capture parameters: %+v", p)
	}

	if src.reads != 3 {
		t.Errorf("expected 3 sensor reads, got %d", src.reads)
	}
	got, err := os.ReadFile(filepath.Join(dir, CronLogName))
	if err != nil {
		t.Fatalf("could not read temperature log: %v", err)
	}
	want := "Timestamp;Temperature;Humidity\n05-01-2024_12-00-00;21.5;63\n"
	if string(got) != want {
		t.Errorf("unexpected temperature log\nwant: %q\ngot: %q", want, got)
	}
}

func TestCronCaptureFailure(t *testing.T) {
	dir := t.TempDir()
	sim := clock.NewSim(epoch)
	c := &fakeCapturer{clock: sim, fail: map[int]bool{0: true}}
	src := &flakySensor{values: [][2]float64{{18, 70}}}

	run, err := newCron(t, dir, sim, c, src).Run(context.Background())
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if run.Capture.Success {
		t.Error("expected failed capture")
	}
	if !run.HasRead || run.Reading.Temperature != 18 {
		t.Errorf("reading not taken after failed capture: %+v", run)
	}
}

func TestCronSensorExhausted(t *testing.T) {
	dir := t.TempDir()
	sim := clock.NewSim(epoch)
	src := &flakySensor{failures: 100}
	cr := newCron(t, dir, sim, &fakeCapturer{clock: sim}, src)
	cr.Attempts = 3

	run, err := cr.Run(context.Background())
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if run.HasRead {
		t.Error("did not expect reading")
	}
	if src.reads != 3 {
		t.Errorf("expected 3 reads, got %d", src.reads)
	}
	_, err = os.Stat(filepath.Join(dir, CronLogName))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temperature log written on exhaustion: %v", err)
	}
}

func TestCronFault(t *testing.T) {
	sim := clock.NewSim(epoch)
	src := &flakySensor{values: [][2]float64{{18, 70}}}
	cr := newCron(t, t.TempDir(), sim, &fakeCapturer{clock: sim, fatal: map[int]bool{0: true}}, src)

	_, err := cr.Run(context.Background())
	if err == nil {
		t.Fatal("expected hardware fault")
	}
	if src.reads != 0 {
		t.Error("sensor read after hardware fault")
	}
}
