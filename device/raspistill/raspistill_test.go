/*
DESCRIPTION
  raspistill_test.go tests the raspistill Camera.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package raspistill

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ausocean/blobcam/codec/jpeg"
	"github.com/ausocean/blobcam/device"
	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

// goodScript imitates raspistill by writing a minimal JPEG to --output.
const goodScript = `#!/bin/sh
while [ $# -gt 0 ]; do
	if [ "$1" = "--output" ]; then out="$2"; fi
	shift
done
printf '\377\330\000\377\331' > "$out"
`

// badScript imitates raspistill failing to negotiate with the sensor.
const badScript = `#!/bin/sh
echo "mmal: camera component couldn't be enabled" >&2
exit 70
`

// truncScript writes an image that was cut short.
const truncScript = `#!/bin/sh
while [ $# -gt 0 ]; do
	if [ "$1" = "--output" ]; then out="$2"; fi
	shift
done
printf '\377\330\000\001\002' > "$out"
`

func script(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "raspistill")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("could not write script: %v", err)
	}
	return path
}

func TestArgs(t *testing.T) {
	r := NewWithCommand((*logging.TestLogger)(t), "raspistill")
	r.width, r.height = 1280, 720

	want := []string{
		"--output", "a.jpg", "--nopreview", "--timeout", "1000",
		"--width", "1280", "--height", "720",
	}
	if got := r.args("a.jpg"); !cmp.Equal(got, want) {
		t.Errorf("unexpected auto args\nwant: %v\ngot: %v", want, got)
	}

	r.exposure = &device.Exposure{SensorMode: 3, FrameRate: 1, ShutterSpeed: 1000000, ISO: 200, AWB: device.AWBSunlight}
	want = append(want,
		"--mode", "3", "--framerate", "1", "--exposure", "off",
		"--shutter", "1000000", "--ISO", "200", "--awb", "sun",
	)
	if got := r.args("a.jpg"); !cmp.Equal(got, want) {
		t.Errorf("unexpected manual args\nwant: %v\ngot: %v", want, got)
	}
}

func TestSetManualExposure(t *testing.T) {
	tests := []struct {
		name string
		e    device.Exposure
		ok   bool
	}{
		{name: "good", e: device.Exposure{SensorMode: 3, FrameRate: 1, ShutterSpeed: 500000, ISO: 800, AWB: device.AWBCloudy}, ok: true},
		{name: "bad iso", e: device.Exposure{ShutterSpeed: 500000, ISO: 3200, AWB: device.AWBAuto}},
		{name: "bad shutter", e: device.Exposure{ShutterSpeed: 0, ISO: 200, AWB: device.AWBAuto}},
		{name: "bad awb", e: device.Exposure{ShutterSpeed: 10, ISO: 200, AWB: "horizon"}},
		{name: "bad mode", e: device.Exposure{SensorMode: 9, ShutterSpeed: 10, ISO: 200, AWB: device.AWBAuto}},
	}

	for _, test := range tests {
		r := NewWithCommand((*logging.TestLogger)(t), "raspistill")
		r.open = true
		err := r.SetManualExposure(test.e)
		if (err == nil) != test.ok {
			t.Errorf("%s: unexpected error result: %v", test.name, err)
		}
		if !test.ok && r.exposure != nil {
			t.Errorf("%s: invalid exposure was applied", test.name)
		}
	}
}

func TestNotOpen(t *testing.T) {
	r := NewWithCommand((*logging.TestLogger)(t), "raspistill")
	if err := r.SetResolution(640, 480); !errors.Is(err, errNotOpen) {
		t.Errorf("expected errNotOpen, got: %v", err)
	}
	if err := r.Capture(context.Background(), "x.jpg"); !errors.Is(err, errNotOpen) {
		t.Errorf("expected errNotOpen, got: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("close of unopened camera should not fail: %v", err)
	}
}

func TestCapture(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr error
		fail    bool
	}{
		{name: "good", script: goodScript},
		{name: "driver failure", script: badScript, fail: true},
		{name: "truncated", script: truncScript, wantErr: jpeg.ErrNoEOI, fail: true},
	}

	for _, test := range tests {
		r := NewWithCommand((*logging.TestLogger)(t), script(t, test.script))
		if err := r.Open(); err != nil {
			t.Fatalf("%s: could not open: %v", test.name, err)
		}
		if err := r.Open(); !errors.Is(err, errAlreadyOpen) {
			t.Errorf("%s: expected errAlreadyOpen, got: %v", test.name, err)
		}
		if err := r.SetResolution(640, 480); err != nil {
			t.Fatalf("%s: could not set resolution: %v", test.name, err)
		}

		out := filepath.Join(t.TempDir(), "out.jpg")
		err := r.Capture(context.Background(), out)
		if (err != nil) != test.fail {
			t.Errorf("%s: unexpected capture result: %v", test.name, err)
		}
		if test.wantErr != nil && !errors.Is(err, test.wantErr) {
			t.Errorf("%s: unexpected error\nwant: %v\ngot: %v", test.name, test.wantErr, err)
		}

		if err := r.Close(); err != nil {
			t.Errorf("%s: could not close: %v", test.name, err)
		}
	}
}
