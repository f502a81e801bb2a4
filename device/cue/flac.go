/*
DESCRIPTION
  flac.go provides decoding of FLAC cues to WAV so they can be played by
  aplay.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package cue

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

const (
	flacExt   = ".flac"
	wavFormat = 1 // PCM.
)

var errNotFLAC = errors.New("could not parse FLAC")

func isFLAC(path string) bool {
	return strings.EqualFold(filepath.Ext(path), flacExt)
}

// Decode decodes the FLAC file at src and writes it to dst as WAV.
func Decode(src, dst string) error {
	stream, err := flac.ParseFile(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errNotFLAC, src, err)
	}
	defer stream.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("could not create WAV: %w", err)
	}
	defer f.Close()

	sr := int(stream.Info.SampleRate)
	bps := int(stream.Info.BitsPerSample)
	nc := int(stream.Info.NChannels)
	enc := wav.NewEncoder(f, sr, bps, nc, wavFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nc, SampleRate: sr},
		SourceBitDepth: bps,
	}

	// Samples are interleaved across subframes for each frame.
	var data []int
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("could not parse FLAC frame: %w", err)
		}

		data = data[:0]
		for i := 0; i < frame.Subframes[0].NSamples; i++ {
			for _, sub := range frame.Subframes {
				data = append(data, int(sub.Samples[i]))
			}
		}
		buf.Data = data
		err = enc.Write(buf)
		if err != nil {
			return fmt.Errorf("could not encode WAV: %w", err)
		}
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("could not finish WAV: %w", err)
	}
	return f.Close()
}

// decoded returns the path of a WAV rendition of the FLAC cue at path,
// decoding it on first use.
func (p *Player) decoded(path string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if wavPath, ok := p.cache[path]; ok {
		return wavPath, nil
	}

	dir, err := os.MkdirTemp("", "cue")
	if err != nil {
		return "", fmt.Errorf("could not create cue directory: %w", err)
	}
	wavPath := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".wav")
	err = Decode(path, wavPath)
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	p.log.Debug("decoded FLAC cue", "src", path, "dst", wavPath)
	p.cache[path] = wavPath
	return wavPath, nil
}
