/*
NAME
  check.go

DESCRIPTION
  check.go provides verification that a file holds one complete JPEG image,
  i.e. it starts with a start of image marker and ends with an end of image
  marker. A capture interrupted mid-write fails this check.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package jpeg provides integrity checks for captured JPEG images.
package jpeg

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// JPEG marker codes.
const (
	markerPrefix = 0xff
	codeSOI      = 0xd8 // Start of image.
	codeEOI      = 0xd9 // End of image.
)

// Check errors.
var (
	ErrTooShort = errors.New("too short to be a JPEG image")
	ErrNoSOI    = errors.New("missing start of image marker")
	ErrNoEOI    = errors.New("missing end of image marker")
)

// Check returns nil if the size bytes of r begin with an SOI marker and end
// with an EOI marker.
func Check(r io.ReaderAt, size int64) error {
	if size < 4 {
		return ErrTooShort
	}

	var b [2]byte
	if _, err := r.ReadAt(b[:], 0); err != nil {
		return fmt.Errorf("could not read start marker: %w", err)
	}
	if b[0] != markerPrefix || b[1] != codeSOI {
		return fmt.Errorf("%w: %#v", ErrNoSOI, b)
	}

	if _, err := r.ReadAt(b[:], size-2); err != nil {
		return fmt.Errorf("could not read end marker: %w", err)
	}
	if b[0] != markerPrefix || b[1] != codeEOI {
		return fmt.Errorf("%w: %#v", ErrNoEOI, b)
	}
	return nil
}

// CheckFile performs Check on the file at path.
func CheckFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", path, err)
	}
	return Check(f, fi.Size())
}
