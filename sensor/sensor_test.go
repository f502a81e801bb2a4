/*
DESCRIPTION
  sensor_test.go tests the bounded-retry sensor Reader.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sensor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ausocean/blobcam/clock"
	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

// sample is one scripted sensor result.
type sample struct {
	t, h float64
	err  error
}

// scripted is a Source that replays samples, then fails.
type scripted struct {
	samples []sample
	calls   int
}

func (s *scripted) Read() (float64, float64, error) {
	s.calls++
	if len(s.samples) == 0 {
		return 0, 0, errors.New("timeout")
	}
	v := s.samples[0]
	s.samples = s.samples[1:]
	return v.t, v.h, v.err
}

var errChecksum = errors.New("checksum mismatch")

func newReader(t *testing.T, src Source) (*Reader, *clock.Sim) {
	c := clock.NewSim(time.Unix(0, 0))
	return NewReader(src, (*logging.TestLogger)(t), WithClock(c)), c
}

func readLog(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

func TestReadOnceFirstSuccess(t *testing.T) {
	src := &scripted{samples: []sample{
		{err: errChecksum},
		{t: 0, h: 0}, // A zero humidity is a failed read.
		{t: 21, h: 45},
		{t: 30, h: 90},
	}}
	r, c := newReader(t, src)
	path := filepath.Join(t.TempDir(), "temperature.csv")

	got, ok := r.ReadOnce(context.Background(), "05-01-2024_12-00-00", path, 10)
	if !ok {
		t.Fatal("expected a reading")
	}

	want := Reading{Label: "05-01-2024_12-00-00", Temperature: 21, Humidity: 45}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected reading\nwant: %v\ngot: %v", want, got)
	}
	if src.calls != 3 {
		t.Errorf("expected 3 reads, got %d", src.calls)
	}
	if len(c.Slept()) != 2 {
		t.Errorf("expected 2 backoffs, got %v", c.Slept())
	}

	wantLog := []string{"Timestamp;Temperature;Humidity", "05-01-2024_12-00-00;21;45"}
	if got := readLog(t, path); !cmp.Equal(got, wantLog) {
		t.Errorf("unexpected log\nwant: %v\ngot: %v", wantLog, got)
	}
}

func TestReadOnceExhausted(t *testing.T) {
	src := &scripted{}
	r, c := newReader(t, src)
	path := filepath.Join(t.TempDir(), "temperature.csv")

	_, ok := r.ReadOnce(context.Background(), "test", path, 4)
	if ok {
		t.Fatal("did not expect a reading")
	}
	if src.calls != 4 {
		t.Errorf("expected 4 reads, got %d", src.calls)
	}
	if len(c.Slept()) != 3 {
		t.Errorf("expected 3 backoffs, got %v", c.Slept())
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("log should not exist, stat error: %v", err)
	}
}

func TestReadOnceHeaderOnce(t *testing.T) {
	src := &scripted{samples: []sample{{t: 19.5, h: 60}, {t: 20.25, h: 61}}}
	r, _ := newReader(t, src)
	path := filepath.Join(t.TempDir(), "temperature.csv")

	for _, label := range []string{"a", "b"} {
		if _, ok := r.ReadOnce(context.Background(), label, path, 3); !ok {
			t.Fatalf("expected a reading for %s", label)
		}
	}

	want := []string{"Timestamp;Temperature;Humidity", "a;19.5;60", "b;20.25;61"}
	if got := readLog(t, path); !cmp.Equal(got, want) {
		t.Errorf("unexpected log\nwant: %v\ngot: %v", want, got)
	}
}

func TestReadOnceNoLogPath(t *testing.T) {
	r, _ := newReader(t, &scripted{samples: []sample{{t: 1, h: 2}}})
	got, ok := r.ReadOnce(context.Background(), "x", "", 1)
	if !ok || got.Temperature != 1 || got.Humidity != 2 {
		t.Errorf("unexpected result: %v, %v", got, ok)
	}
}

func TestReadOnceNoAttempts(t *testing.T) {
	src := &scripted{samples: []sample{{t: 1, h: 2}}}
	r, _ := newReader(t, src)
	path := filepath.Join(t.TempDir(), "temperature.csv")

	if _, ok := r.ReadOnce(context.Background(), "x", path, 0); ok {
		t.Error("did not expect a reading")
	}
	if src.calls != 0 {
		t.Errorf("expected no reads, got %d", src.calls)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("log should not exist, stat error: %v", err)
	}
}
