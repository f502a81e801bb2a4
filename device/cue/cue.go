/*
DESCRIPTION
  cue.go provides Player, which plays a short sound cue through aplay
  before a capture so people near the rig know the light is about to flash.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package cue provides playback of audio cues.
package cue

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/ausocean/utils/logging"
	"github.com/go-audio/wav"
)

// Defaults.
const (
	DefaultCommand = "aplay"
	DefaultPath    = "camera.wav"
)

var errInvalidWAV = errors.New("not a valid WAV file")

// Player plays WAV files using an external command. Playback is not waited
// on.
type Player struct {
	log   logging.Logger
	bin   string
	mu    sync.Mutex
	cache map[string]string // FLAC cue paths to decoded WAV paths.
}

// New returns a Player using aplay.
func New(l logging.Logger) *Player { return NewWithCommand(l, DefaultCommand) }

// NewWithCommand returns a Player that runs bin with the file path as its only
// argument.
func NewWithCommand(l logging.Logger, bin string) *Player {
	return &Player{log: l, bin: bin, cache: make(map[string]string)}
}

// Play checks that path holds a valid WAV file and starts playing it. FLAC
// files are decoded to WAV on first use. The playback process is reaped in
// the background and its errors are logged.
func (p *Player) Play(path string) error {
	if isFLAC(path) {
		var err error
		path, err = p.decoded(path)
		if err != nil {
			return err
		}
	}

	err := Check(path)
	if err != nil {
		return err
	}

	cmd := exec.Command(p.bin, path)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %s: %w", p.bin, err)
	}
	p.log.Debug("playing cue", "path", path)

	go func() {
		err := cmd.Wait()
		if err != nil {
			p.log.Warning("cue playback failed", "error", err, "stderr", errBuf.String())
		}
	}()
	return nil
}

// Check returns nil if path holds a valid WAV file with a known duration.
func Check(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open cue: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return fmt.Errorf("%s: %w", path, errInvalidWAV)
	}
	_, err = d.Duration()
	if err != nil {
		return fmt.Errorf("could not get cue duration: %w", err)
	}
	return nil
}
